package getconfig

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	r := New(nil, MapEnvironment{"N": "x"}, Defaults{Logger: NewSlogLogger(slog.New(handler))})

	_, err := r.Lookup(Options{Name: "N", Type: TypeInteger})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "not a valid integer string")
}

func TestSlogLoggerUsesDefault(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(previous)

	NewSlogLogger(nil).Warn("through default")
	assert.Contains(t, buf.String(), "through default")
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	r := New(nil, nil, Defaults{Logger: NewZerologLogger(zerolog.New(&buf))})

	_, err := r.Lookup(Options{Name: "GETCONFIG_ZEROLOG_UNSET"})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], `"level":"info"`)
	assert.Contains(t, lines[1], `"level":"warn"`)
	assert.Contains(t, lines[1], "no value for GETCONFIG_ZEROLOG_UNSET")
}

func TestSilentLogger(t *testing.T) {
	var l Logger = SilentLogger{}
	assert.NotPanics(t, func() {
		l.Info("a")
		l.Warn("b")
		l.Error("c")
	})
}
