// Package getconfig resolves individual configuration values from a
// structured source (a parsed TOML, YAML or JSON document, or any Source)
// and the process environment, behind a single call.
//
// # Resolution
//
// Each lookup names a setting, optionally with separate keys for the
// structured source and the environment:
//
//	r := getconfig.New(src, nil, getconfig.Defaults{})
//
//	port, err := getconfig.Resolve[int64](r, getconfig.Options{
//		ConfigName: "server.port",
//		EnvName:    "PORT",
//		Type:       getconfig.TypeInteger,
//		Default:    int64(8080),
//	})
//
// The source picked by the priority (PriorityConfig by default) is tried
// first, then the other one, then Default is returned. Values from the
// structured source are returned exactly as stored. Environment strings are
// parsed according to Type.
//
// # Value Types
//
//   - string: as is; the literal "null" becomes nil
//   - array: comma separated []string
//   - boolean: exactly "true" or "false"
//   - integer, float: canonical form only, so "007" and "1.0" are rejected
//   - json: any JSON document
//   - null: only the literal "null"
//   - date: RFC3339 or Unix seconds, as time.Time
//   - duration, decimal, uuid, quantity, bigint, url, expr: time.Duration,
//     decimal.Decimal, uuid.UUID, resource.Quantity, *big.Int, *url.URL and
//     *vm.Program respectively
//
// RegisterType adds more.
//
// # Strict Mode
//
// A lenient resolver logs a missing or unparsable value and moves on to the
// next source or the default. In strict mode the same failure returns a
// *ConfigError instead. An absent or empty environment variable is never an
// error.
//
// # Struct Binding
//
// Bind resolves every field of a tagged struct:
//
//	type Settings struct {
//		Port    int           `config:"server.port" env:"PORT" default:"8080"`
//		Timeout time.Duration `env:"TIMEOUT" default:"5s"`
//		DB      struct {
//			Host string `config:"host" env:"DB_HOST" required:"true"`
//		} `config:"db"`
//	}
//
// # Sources
//
//   - MapSource, built with NewMapSource, ParseTOML/YAML/JSON, LoadTOML/YAML/JSON or LoadFiles
//   - OSEnvironment, MapEnvironment, and DotenvEnvironment from LoadDotenv
//   - Loggers: NewSlogLogger, NewZerologLogger and SilentLogger
package getconfig
