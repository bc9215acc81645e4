package getconfig

import (
	"errors"
	"fmt"
)

// ErrConfig matches every *ConfigError with errors.Is.
var ErrConfig = errors.New("getconfig")

// ConfigError is the only error kind returned by the resolver.
// Key is the lookup key involved, if any. Err is the underlying cause,
// typically a parse error from one of the type parsers.
type ConfigError struct {
	Msg string
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	msg := e.Msg
	if e.Key != "" {
		msg = fmt.Sprintf("%s for %s", msg, e.Key)
	}
	if e.Err != nil {
		return fmt.Sprintf("getconfig: %s: %v", msg, e.Err)
	}
	return "getconfig: " + msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Is reports ErrConfig as a match so callers need not type-assert.
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

func configErr(msg, key string, err error) *ConfigError {
	return &ConfigError{Msg: msg, Key: key, Err: err}
}
