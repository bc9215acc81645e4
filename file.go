package getconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ParseTOML decodes a TOML document into a MapSource.
func ParseTOML(data []byte) (*MapSource, error) {
	m := make(map[string]any)
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return NewMapSource(m), nil
}

// ParseYAML decodes a YAML document into a MapSource.
func ParseYAML(data []byte) (*MapSource, error) {
	m := make(map[string]any)
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return NewMapSource(m), nil
}

// ParseJSON decodes a JSON object into a MapSource.
func ParseJSON(data []byte) (*MapSource, error) {
	m := make(map[string]any)
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return NewMapSource(m), nil
}

// LoadTOML reads and decodes a TOML file.
func LoadTOML(path string) (*MapSource, error) {
	return loadFile(path, ParseTOML)
}

// LoadYAML reads and decodes a YAML file.
func LoadYAML(path string) (*MapSource, error) {
	return loadFile(path, ParseYAML)
}

// LoadJSON reads and decodes a JSON file.
func LoadJSON(path string) (*MapSource, error) {
	return loadFile(path, ParseJSON)
}

// LoadFiles reads each path, choosing the decoder from the file extension,
// and merges them in order so later files override earlier ones.
// Missing files are skipped.
func LoadFiles(paths ...string) (*MapSource, error) {
	merged := NewMapSource(nil)
	for _, path := range paths {
		var parse func([]byte) (*MapSource, error)
		switch strings.ToLower(filepath.Ext(path)) {
		case ".toml":
			parse = ParseTOML
		case ".yaml", ".yml":
			parse = ParseYAML
		case ".json":
			parse = ParseJSON
		default:
			return nil, fmt.Errorf("unsupported config file extension %q", path)
		}

		src, err := loadFile(path, parse)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		merged.Merge(src)
	}
	return merged, nil
}

func loadFile(path string, parse func([]byte) (*MapSource, error)) (*MapSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	src, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("config file '%s': %w", path, err)
	}
	return src, nil
}

// DotenvEnvironment serves variables read from .env files. The process
// environment is consulted first, the same precedence godotenv.Load uses.
type DotenvEnvironment struct {
	vars map[string]string
}

// LoadDotenv reads the given .env files, ".env" when none are given.
// Unlike godotenv.Load it does not modify the process environment.
func LoadDotenv(paths ...string) (*DotenvEnvironment, error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	vars := make(map[string]string)
	// godotenv gives the first file precedence, so read them one by one.
	for _, path := range paths {
		m, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read dotenv file '%s': %w", path, err)
		}
		for k, v := range m {
			if _, exists := vars[k]; !exists {
				vars[k] = v
			}
		}
	}
	return &DotenvEnvironment{vars: vars}, nil
}

func (d *DotenvEnvironment) Lookup(key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok {
		return v, true
	}
	v, ok := d.vars[key]
	return v, ok
}
