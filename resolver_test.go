package getconfig

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordLogger keeps every message with its level for assertions.
type recordLogger struct {
	lines []string
}

func (l *recordLogger) Info(msg string)  { l.lines = append(l.lines, "INFO "+msg) }
func (l *recordLogger) Warn(msg string)  { l.lines = append(l.lines, "WARN "+msg) }
func (l *recordLogger) Error(msg string) { l.lines = append(l.lines, "ERROR "+msg) }

func (l *recordLogger) count(prefix string) int {
	n := 0
	for _, line := range l.lines {
		if len(line) >= len(prefix) && line[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func newTestResolver(src map[string]any, env map[string]string) (*Resolver, *recordLogger) {
	log := &recordLogger{}
	r := New(NewMapSource(src), MapEnvironment(env), Defaults{Logger: log})
	return r, log
}

func TestLookupRejectsEmptyRequest(t *testing.T) {
	r, _ := newTestResolver(nil, nil)

	_, err := r.Lookup(Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "no options provided")
}

func TestLookupRejectsMissingName(t *testing.T) {
	r, _ := newTestResolver(nil, nil)

	cases := []Options{
		{Default: 5},
		{Type: TypeInteger},
		{Priority: PriorityEnv, Strict: Bool(true)},
	}
	for _, opt := range cases {
		_, err := r.Lookup(opt)
		var cerr *ConfigError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "no name provided", cerr.Msg)
	}
}

func TestLookupStructuredFirst(t *testing.T) {
	r, _ := newTestResolver(
		map[string]any{"port": 9000},
		map[string]string{"port": "42"},
	)

	v, err := r.Lookup(Options{Name: "port", Type: TypeInteger})
	require.NoError(t, err)
	assert.Equal(t, 9000, v, "structured value must be returned unconverted")
}

func TestLookupFallsBackToEnvironment(t *testing.T) {
	r, log := newTestResolver(nil, map[string]string{"PORT": "42"})

	v, err := r.Lookup(Options{Name: "PORT", Type: TypeInteger})
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
	assert.Equal(t, 1, log.count("WARN"), "the structured miss is logged once")
	assert.Equal(t, 3, log.count("INFO"), "two attempts and one parse")
}

func TestLookupEnvironmentFirstInverts(t *testing.T) {
	r, _ := newTestResolver(map[string]any{"db.host": "from-config"}, nil)

	v, err := r.Lookup(Options{Name: "db.host", Priority: PriorityEnv})
	require.NoError(t, err)
	assert.Equal(t, "from-config", v)
}

func TestLookupEnvironmentFirstWins(t *testing.T) {
	r, log := newTestResolver(
		map[string]any{"host": "from-config"},
		map[string]string{"HOST": "from-env"},
	)

	v, err := r.Lookup(Options{ConfigName: "host", EnvName: "HOST", Priority: PriorityEnv})
	require.NoError(t, err)
	assert.Equal(t, "from-env", v)
	assert.Equal(t, []string{
		"INFO Trying to retrieve config HOST through env",
		"INFO Going to parse env value of HOST",
	}, log.lines)
}

func TestLookupReturnsDefault(t *testing.T) {
	r, _ := newTestResolver(nil, nil)

	v, err := r.Lookup(Options{Name: "missing", Default: "fallback"})
	require.NoError(t, err)
	assert.Equal(t, "fallback", v)

	v, err = r.Lookup(Options{Name: "missing"})
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestLookupBooleanParsing(t *testing.T) {
	cases := []struct {
		raw     string
		want    any
		wantErr bool
	}{
		{raw: "true", want: true},
		{raw: "false", want: false},
		{raw: "yes", want: "default", wantErr: true},
		{raw: "TRUE", want: "default", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			r, log := newTestResolver(nil, map[string]string{"FLAG": tc.raw})

			v, err := r.Lookup(Options{Name: "FLAG", Type: TypeBoolean, Default: "default"})
			require.NoError(t, err)
			assert.Equal(t, tc.want, v)
			if tc.wantErr {
				assert.Equal(t, 1, log.count("ERROR"))
			}

			_, err = r.Lookup(Options{Name: "FLAG", Type: TypeBoolean, Priority: PriorityEnv, Strict: Bool(true)})
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLookupIntegerRejectsNonCanonical(t *testing.T) {
	r, _ := newTestResolver(nil, map[string]string{"N": "007"})

	v, err := r.Lookup(Options{Name: "N", Type: TypeInteger, Default: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestLookupJSON(t *testing.T) {
	r, _ := newTestResolver(nil, map[string]string{
		"GOOD": `{"a":1}`,
		"BAD":  `{bad`,
	})

	v, err := r.Lookup(Options{Name: "GOOD", Type: TypeJSON})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1)}, v)

	v, err = r.Lookup(Options{Name: "BAD", Type: TypeJSON, Default: "d"})
	require.NoError(t, err)
	assert.Equal(t, "d", v)

	_, err = r.Lookup(Options{Name: "BAD", Type: TypeJSON, Priority: PriorityEnv, Strict: Bool(true)})
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "BAD", cerr.Key)
	assert.Error(t, cerr.Unwrap())
}

func TestLookupStringNull(t *testing.T) {
	r, _ := newTestResolver(nil, map[string]string{"V": "null"})

	v, err := r.Lookup(Options{Name: "V", Type: TypeString, Default: "not used"})
	require.NoError(t, err)
	assert.Nil(t, v, "an explicit null stops the search and is returned")
}

func TestLookupStrictMissingStructured(t *testing.T) {
	r, log := newTestResolver(nil, map[string]string{"KEY": "v"})

	_, err := r.Lookup(Options{Name: "KEY", Strict: Bool(true)})
	require.Error(t, err)
	assert.Equal(t, "getconfig: no value for KEY", err.Error())
	assert.Zero(t, log.count("WARN"), "strict failures are not logged")
}

func TestLookupStrictDoesNotFailOnMissingEnv(t *testing.T) {
	r, log := newTestResolver(map[string]any{"KEY": "v"}, nil)

	v, err := r.Lookup(Options{Name: "KEY", Strict: Bool(true), Priority: PriorityEnv})
	require.NoError(t, err)
	assert.Equal(t, "v", v)
	assert.Equal(t, 1, log.count("WARN"))
}

func TestLookupSkipsSourceWithoutKey(t *testing.T) {
	r, log := newTestResolver(map[string]any{"": "never read"}, map[string]string{"PORT": "8080"})

	v, err := r.Lookup(Options{EnvName: "PORT", Type: TypeInteger, Strict: Bool(true)})
	require.NoError(t, err)
	assert.Equal(t, int64(8080), v)
	assert.Equal(t, []string{
		"INFO Trying to retrieve config PORT through env",
		"INFO Going to parse env value of PORT",
	}, log.lines)

	v, err = r.Lookup(Options{ConfigName: "absent", Default: "d", Priority: PriorityEnv})
	require.NoError(t, err)
	assert.Equal(t, "d", v)
	assert.Equal(t, 1, log.count("WARN"), "only the structured miss is reported")
}

func TestLookupEmptyEnvIsMissing(t *testing.T) {
	r, _ := newTestResolver(nil, map[string]string{"E": ""})

	v, err := r.Lookup(Options{Name: "E", Default: "d"})
	require.NoError(t, err)
	assert.Equal(t, "d", v)
}

func TestLookupInvalidPriority(t *testing.T) {
	r, log := newTestResolver(map[string]any{"k": "v"}, nil)

	v, err := r.Lookup(Options{Name: "k", Priority: Priority(7)})
	require.NoError(t, err)
	assert.Equal(t, "v", v, "the inverted attempt still reaches the structured source")
	assert.Equal(t, 1, log.count("ERROR invalid priority"))

	_, err = r.Lookup(Options{Name: "k", Priority: Priority(7), Strict: Bool(true)})
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "invalid priority", cerr.Msg)
	assert.Contains(t, err.Error(), "unknown priority value 7")
}

func TestLookupUnknownType(t *testing.T) {
	r, log := newTestResolver(nil, map[string]string{"X": "1"})

	v, err := r.Lookup(Options{Name: "X", Type: Type("color"), Default: "d"})
	require.NoError(t, err)
	assert.Equal(t, "d", v)
	assert.Equal(t, 1, log.count("ERROR"))

	_, err = r.Lookup(Options{Name: "X", Type: Type("color"), Strict: Bool(true), Priority: PriorityEnv})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errUnknownType))
}

func TestConfigureKeepsUnsetFields(t *testing.T) {
	r, log := newTestResolver(nil, map[string]string{"N": "12"})
	r.Configure(Defaults{Type: TypeInteger, Priority: PriorityEnv})

	v, err := r.Lookup(Options{Name: "N"})
	require.NoError(t, err)
	assert.Equal(t, int64(12), v)
	assert.NotEmpty(t, log.lines, "logger must survive a Configure without Logger")

	r.Configure(Defaults{Strict: Bool(true)})
	_, err = r.Lookup(Options{Name: "missing", Priority: PriorityConfig})
	assert.Error(t, err)

	r.Configure(Defaults{Strict: Bool(false)})
	_, err = r.Lookup(Options{Name: "missing"})
	assert.NoError(t, err)
}

func TestConfigureDisableLog(t *testing.T) {
	r, log := newTestResolver(nil, nil)
	r.Configure(Defaults{DisableLog: true, Logger: &recordLogger{}})

	_, err := r.Lookup(Options{Name: "missing"})
	require.NoError(t, err)
	assert.Empty(t, log.lines)
	assert.IsType(t, SilentLogger{}, r.log)
}

func TestGetShort(t *testing.T) {
	r, _ := newTestResolver(map[string]any{"app.name": "svc"}, map[string]string{"APP_WORKERS": "4"})

	v, err := r.Get(Short{C: "app.name"})
	require.NoError(t, err)
	assert.Equal(t, "svc", v)

	v, err = r.Get(Short{N: "workers", Pro: "APP_WORKERS", Ty: TypeInteger, Pri: PriorityEnv})
	require.NoError(t, err)
	assert.Equal(t, int64(4), v)

	v, err = r.Get(Short{N: "absent", D: 3, Th: Bool(false)})
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestResolveTyped(t *testing.T) {
	r, _ := newTestResolver(
		map[string]any{"name": "svc"},
		map[string]string{"PORT": "8080", "NIL": "null"},
	)

	port, err := Resolve[int64](r, Options{Name: "PORT", Type: TypeInteger})
	require.NoError(t, err)
	assert.Equal(t, int64(8080), port)

	name, err := Resolve[string](r, Options{Name: "name"})
	require.NoError(t, err)
	assert.Equal(t, "svc", name)

	s, err := Resolve[string](r, Options{Name: "NIL"})
	require.NoError(t, err)
	assert.Empty(t, s)

	_, err = Resolve[int](r, Options{Name: "PORT", Type: TypeInteger})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "value of type int64 is not int")
}

func TestResolveExampleMessages(t *testing.T) {
	r, log := newTestResolver(nil, nil)

	_, err := r.Lookup(Options{Name: "token"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"INFO Trying to retrieve config token through config",
		"WARN no value for token",
		"INFO Trying to retrieve config token through env",
		"WARN no env value for token",
	}, log.lines)
}

func ExampleResolve() {
	r := New(
		NewMapSource(map[string]any{"server": map[string]any{"port": 9090}}),
		MapEnvironment{"WORKERS": "8"},
		Defaults{DisableLog: true},
	)

	port, _ := Resolve[int](r, Options{ConfigName: "server.port"})
	workers, _ := Resolve[int64](r, Options{EnvName: "WORKERS", Type: TypeInteger})
	fmt.Println(port, workers)
	// Output: 9090 8
}
