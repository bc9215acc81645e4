package getconfig

import (
	"fmt"
	"reflect"
	"sync"
)

// Options describes one value to resolve. At least one of Name, ConfigName
// and EnvName must be set; Name fills whichever of the other two is empty.
// Zero-valued Type, Priority and Strict fall back to the resolver defaults.
type Options struct {
	Name       string
	ConfigName string // key in the structured source
	EnvName    string // environment variable
	Default    any    // returned when no source has a value; may be nil
	Type       Type
	Priority   Priority
	Strict     *bool
}

func (o Options) empty() bool {
	return o.Name == "" && o.ConfigName == "" && o.EnvName == "" &&
		o.Default == nil && o.Type == "" && o.Priority == 0 && o.Strict == nil
}

// Short is Options with abbreviated field names, for call sites that
// resolve many values inline.
type Short struct {
	C   string   // ConfigName
	D   any      // Default
	N   string   // Name
	Pro string   // EnvName
	Pri Priority // Priority
	Th  *bool    // Strict
	Ty  Type     // Type
}

// Defaults are the resolver-wide settings each call may override.
// Zero fields leave the current setting unchanged.
type Defaults struct {
	Logger     Logger
	DisableLog bool // installs SilentLogger, taking precedence over Logger
	Priority   Priority
	Strict     *bool
	Type       Type
}

// Bool returns a pointer to v, for Options.Strict and Defaults.Strict.
func Bool(v bool) *bool { return &v }

// Resolver looks values up in a structured source and the environment.
type Resolver struct {
	src Source
	env Environment

	mu       sync.RWMutex
	log      Logger
	priority Priority
	strict   bool
	typ      Type
}

// New creates a Resolver. A nil src behaves as an empty source and a nil
// env reads the process environment. Before d is applied the resolver logs
// through slog.Default(), tries the structured source first, is lenient and
// treats environment values as strings.
func New(src Source, env Environment, d Defaults) *Resolver {
	if src == nil {
		src = NewMapSource(nil)
	}
	if env == nil {
		env = OSEnvironment{}
	}
	r := &Resolver{
		src:      src,
		env:      env,
		log:      NewSlogLogger(nil),
		priority: PriorityConfig,
		typ:      TypeString,
	}
	r.Configure(d)
	return r
}

// Configure updates the defaults. Fields left zero keep their prior values.
func (r *Resolver) Configure(d Defaults) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d.DisableLog {
		r.log = SilentLogger{}
	} else if d.Logger != nil {
		r.log = d.Logger
	}
	if d.Priority != 0 {
		r.priority = d.Priority
	}
	if d.Strict != nil {
		r.strict = *d.Strict
	}
	if d.Type != "" {
		r.typ = d.Type
	}
}

// request is Options after normalization against the current defaults.
type request struct {
	configName string
	envName    string
	typ        Type
	strict     bool
	log        Logger
}

// failure is a source attempt that produced no value. soft failures are
// only ever logged, whatever the strictness.
type failure struct {
	msg  string
	key  string
	err  error
	warn bool
	soft bool
}

func (f *failure) text() string {
	msg := f.msg
	if f.key != "" {
		msg = fmt.Sprintf("%s for %s", msg, f.key)
	}
	if f.err != nil {
		msg = fmt.Sprintf("%s: %v", msg, f.err)
	}
	return msg
}

// Lookup resolves opt. It tries the source chosen by the effective priority,
// then the other one, then returns opt.Default. A value found in either
// source ends the search, including an explicit null parsed from the
// environment, which is returned as nil.
func (r *Resolver) Lookup(opt Options) (any, error) {
	if opt.empty() {
		return nil, configErr("no options provided", "", nil)
	}
	if opt.Name == "" && opt.ConfigName == "" && opt.EnvName == "" {
		return nil, configErr("no name provided", "", nil)
	}

	r.mu.RLock()
	req := request{
		configName: opt.ConfigName,
		envName:    opt.EnvName,
		typ:        r.typ,
		strict:     r.strict,
		log:        r.log,
	}
	priority := r.priority
	r.mu.RUnlock()

	if opt.Name != "" {
		if req.configName == "" {
			req.configName = opt.Name
		}
		if req.envName == "" {
			req.envName = opt.Name
		}
	}
	if opt.Type != "" {
		req.typ = opt.Type
	}
	if opt.Strict != nil {
		req.strict = *opt.Strict
	}
	if opt.Priority != 0 {
		priority = opt.Priority
	}

	if v, ok, err := r.attempt(req, priority); err != nil || ok {
		return v, err
	}
	if v, ok, err := r.attempt(req, priority.invert()); err != nil || ok {
		return v, err
	}
	return opt.Default, nil
}

// Get is Lookup for the abbreviated form.
func (r *Resolver) Get(o Short) (any, error) {
	return r.Lookup(Options{
		Name:       o.N,
		ConfigName: o.C,
		EnvName:    o.Pro,
		Default:    o.D,
		Type:       o.Ty,
		Priority:   o.Pri,
		Strict:     o.Th,
	})
}

// Resolve looks opt up and returns the value as T. A nil value gives the
// zero T. A value of any other type is reported as an error rather than
// converted.
func Resolve[T any](r *Resolver, opt Options) (T, error) {
	var zero T
	v, err := r.Lookup(opt)
	if err != nil || v == nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		key := opt.Name
		if key == "" {
			key = opt.EnvName
		}
		if key == "" {
			key = opt.ConfigName
		}
		msg := fmt.Sprintf("value of type %T is not %s", v, reflect.TypeOf((*T)(nil)).Elem())
		return zero, configErr(msg, key, nil)
	}
	return t, nil
}

// attempt tries one source and applies the strictness policy to the outcome.
func (r *Resolver) attempt(req request, p Priority) (any, bool, error) {
	var (
		v    any
		ok   bool
		fail *failure
	)
	switch p {
	case PriorityConfig:
		// A request naming only an environment variable has nothing to ask the
		// structured source, and the reverse holds for the environment.
		if req.configName == "" {
			return nil, false, nil
		}
		req.log.Info(fmt.Sprintf("Trying to retrieve config %s through config", req.configName))
		v, ok, fail = r.fromSource(req)
	case PriorityEnv:
		if req.envName == "" {
			return nil, false, nil
		}
		req.log.Info(fmt.Sprintf("Trying to retrieve config %s through env", req.envName))
		v, ok, fail = r.fromEnv(req)
	default:
		fail = &failure{msg: "invalid priority", err: fmt.Errorf("unknown priority value %d", int(p))}
	}
	if fail == nil {
		return v, ok, nil
	}

	if req.strict && !fail.soft {
		return nil, false, configErr(fail.msg, fail.key, fail.err)
	}
	if fail.warn {
		req.log.Warn(fail.text())
	} else {
		req.log.Error(fail.text())
	}
	return nil, false, nil
}

func (r *Resolver) fromSource(req request) (any, bool, *failure) {
	if !r.src.Has(req.configName) {
		return nil, false, &failure{msg: "no value", key: req.configName, warn: true}
	}
	return r.src.Get(req.configName), true, nil
}

func (r *Resolver) fromEnv(req request) (any, bool, *failure) {
	raw, ok := r.env.Lookup(req.envName)
	if !ok || raw == "" {
		return nil, false, &failure{msg: "no env value", key: req.envName, warn: true, soft: true}
	}
	req.log.Info(fmt.Sprintf("Going to parse env value of %s", req.envName))
	v, err := parseValue(req.typ, raw)
	if err != nil {
		return nil, false, &failure{msg: "unable to parse " + string(req.typ), key: req.envName, err: err}
	}
	return v, true, nil
}
