package getconfig

import (
	"fmt"
	"strings"
)

// Priority selects which source is tried first.
// The zero value defers to the resolver default.
type Priority int

const (
	PriorityConfig Priority = iota + 1 // structured source, then environment
	PriorityEnv                        // environment, then structured source
)

func (p Priority) String() string {
	switch p {
	case 0:
		return "default"
	case PriorityConfig:
		return "config"
	case PriorityEnv:
		return "env"
	default:
		return fmt.Sprintf("Priority(%d)", int(p))
	}
}

// Valid reports whether p is one of the two defined orderings.
func (p Priority) Valid() bool {
	return p == PriorityConfig || p == PriorityEnv
}

// invert returns the other ordering. Anything that is not PriorityConfig
// inverts to PriorityConfig.
func (p Priority) invert() Priority {
	if p == PriorityConfig {
		return PriorityEnv
	}
	return PriorityConfig
}

// UnmarshalText accepts "config" and "env" (also "process"), case-insensitively.
func (p *Priority) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "config", "file":
		*p = PriorityConfig
	case "env", "process":
		*p = PriorityEnv
	default:
		return fmt.Errorf("invalid priority %q: must be config|env", text)
	}
	return nil
}

func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Type tells the resolver how to parse an environment string.
// Values from the structured source are never converted.
// The zero value defers to the resolver default.
type Type string

const (
	TypeString  Type = "string"
	TypeArray   Type = "array"
	TypeBoolean Type = "boolean"
	TypeInteger Type = "integer"
	TypeFloat   Type = "float"
	TypeJSON    Type = "json"
	TypeNull    Type = "null"
	TypeDate    Type = "date"

	TypeDuration Type = "duration"
	TypeDecimal  Type = "decimal"
	TypeUUID     Type = "uuid"
	TypeQuantity Type = "quantity"
	TypeBigInt   Type = "bigint"
	TypeURL      Type = "url"
	TypeExpr     Type = "expr"
)

// UnmarshalText normalizes the tag to lower case. Unknown tags are kept
// so that types added with RegisterType can be named in configuration.
func (t *Type) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	if s == "" {
		return fmt.Errorf("empty type")
	}
	*t = Type(s)
	return nil
}
