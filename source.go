package getconfig

import (
	"os"
	"strings"
)

// Source is a structured configuration store queried by key.
// Values are returned as stored; the resolver never converts them.
type Source interface {
	Has(key string) bool
	Get(key string) any
}

// Environment is a flat string lookup, normally the process environment.
type Environment interface {
	Lookup(key string) (string, bool)
}

// OSEnvironment reads the process environment.
type OSEnvironment struct{}

func (OSEnvironment) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapEnvironment is a fixed environment, handy in tests.
type MapEnvironment map[string]string

func (m MapEnvironment) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// MapSource serves values from a nested map. Keys are dot-separated paths:
// "server.port" finds m["server"]["port"]. An exact top-level key wins
// over path traversal, so flat maps with dotted keys also work.
type MapSource struct {
	data map[string]any
}

// NewMapSource wraps data. The map is not copied and must not be
// modified while the source is in use.
func NewMapSource(data map[string]any) *MapSource {
	if data == nil {
		data = map[string]any{}
	}
	return &MapSource{data: data}
}

func (s *MapSource) Has(key string) bool {
	_, ok := s.lookup(key)
	return ok
}

func (s *MapSource) Get(key string) any {
	v, _ := s.lookup(key)
	return v
}

// Merge deep-merges other on top of s and returns s.
// Maps are merged recursively; any other value in other replaces the one in s.
func (s *MapSource) Merge(other *MapSource) *MapSource {
	if other != nil {
		mergeMaps(s.data, other.data)
	}
	return s
}

// Map returns the underlying nested map.
func (s *MapSource) Map() map[string]any {
	return s.data
}

func (s *MapSource) lookup(key string) (any, bool) {
	if key == "" {
		return nil, false
	}
	if v, ok := s.data[key]; ok {
		return v, true
	}

	var current any = s.data
	for _, segment := range strings.Split(key, ".") {
		m, ok := asStringMap(current)
		if !ok {
			return nil, false
		}
		v, exists := m[segment]
		if !exists {
			return nil, false
		}
		current = v
	}
	return current, true
}

func mergeMaps(dst, src map[string]any) {
	for k, v := range src {
		srcMap, srcIsMap := asStringMap(v)
		dstMap, dstIsMap := asStringMap(dst[k])
		if srcIsMap && dstIsMap {
			mergeMaps(dstMap, srcMap)
			dst[k] = dstMap
			continue
		}
		dst[k] = v
	}
}

// asStringMap normalizes the map shapes produced by the file decoders.
// A map[any]any is copied into a new map keeping only its string keys.
func asStringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			if s, ok := k.(string); ok {
				out[s] = val
			}
		}
		return out, true
	}
	return nil, false
}
