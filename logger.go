package getconfig

import (
	"log/slog"

	"github.com/rs/zerolog"
)

// Logger receives the resolver's trace and failure messages.
type Logger interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

// SilentLogger discards everything. It is installed by Defaults.DisableLog.
type SilentLogger struct{}

func (SilentLogger) Info(string)  {}
func (SilentLogger) Warn(string)  {}
func (SilentLogger) Error(string) {}

// SlogLogger forwards messages to a *slog.Logger.
type SlogLogger struct {
	l *slog.Logger
}

// NewSlogLogger wraps l. A nil l uses slog.Default() at the time of each call,
// so a later slog.SetDefault is honoured.
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{l: l}
}

func (s *SlogLogger) logger() *slog.Logger {
	if s.l == nil {
		return slog.Default()
	}
	return s.l
}

func (s *SlogLogger) Info(msg string)  { s.logger().Info(msg) }
func (s *SlogLogger) Warn(msg string)  { s.logger().Warn(msg) }
func (s *SlogLogger) Error(msg string) { s.logger().Error(msg) }

// ZerologLogger forwards messages to a zerolog.Logger.
type ZerologLogger struct {
	l zerolog.Logger
}

// NewZerologLogger wraps l.
func NewZerologLogger(l zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{l: l}
}

func (z *ZerologLogger) Info(msg string)  { z.l.Info().Msg(msg) }
func (z *ZerologLogger) Warn(msg string)  { z.l.Warn().Msg(msg) }
func (z *ZerologLogger) Error(msg string) { z.l.Error().Msg(msg) }
