package getconfig

import (
	"fmt"
	"math"
	"math/big"
	"net/url"
	"reflect"
	"strconv"
	"time"

	"github.com/expr-lang/expr/vm"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"k8s.io/apimachinery/pkg/api/resource"
)

// Bind fills the struct pointed to by target by resolving every exported
// field through r. Nested structs (value or pointer) are processed
// recursively.
//
// Field tags:
//   - `config:"server.port"`: structured source key ("-" skips the field)
//   - `env:"PORT"`: environment variable
//   - `name:"port"`: shared name for both; the field name is used when
//     none of config, env and name is present
//   - `default:"8080"`: fallback, decoded into the field type
//   - `type:"integer"`: value type; inferred from the field type if absent
//   - `priority:"env"`, `strict:"true"`: per-field overrides
//   - `required:"true"`: fail if no source and no default gives a value
//
// A `config` tag on a nested struct prefixes the structured keys of its
// fields, so `config:"db"` turns a child `config:"host"` into "db.host".
//
// Example:
//
//	type Settings struct {
//	    Port    int           `config:"server.port" env:"PORT" default:"8080"`
//	    Timeout time.Duration `name:"TIMEOUT" default:"5s"`
//	    DB      struct {
//	        Host string `config:"host" env:"DB_HOST" required:"true"`
//	    } `config:"db"`
//	}
//
//	var s Settings
//	if err := getconfig.Bind(r, &s); err != nil {
//	    log.Fatal(err)
//	}
func Bind(r *Resolver, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return configErr(fmt.Sprintf("bind target must be a non-nil pointer to struct, got %T", target), "", nil)
	}
	return bindStruct(r, rv.Elem(), "")
}

// Decode resolves opt and decodes the result into target, which must be a
// pointer. Maps decode into structs by field name or `config` tag, and
// scalars are converted weakly ("42" into an int field). A nil result
// leaves target untouched.
func Decode(r *Resolver, opt Options, target any) error {
	v, err := r.Lookup(opt)
	if err != nil || v == nil {
		return err
	}
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return configErr(fmt.Sprintf("decode target must be a non-nil pointer, got %T", target), opt.Name, nil)
	}
	if err := assign(rv.Elem(), v); err != nil {
		key := opt.Name
		if key == "" {
			key = opt.ConfigName
		}
		return configErr("cannot decode value", key, err)
	}
	return nil
}

func bindStruct(r *Resolver, val reflect.Value, prefix string) error {
	typ := val.Type()

	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		fv := val.Field(i)

		// Skip unexported fields
		if !fv.CanSet() {
			continue
		}
		configTag, hasConfig := sf.Tag.Lookup("config")
		if configTag == "-" {
			continue
		}

		if isNestedStruct(sf) {
			childPrefix := prefix
			if configTag != "" {
				childPrefix = prefix + configTag + "."
			}
			if fv.Kind() == reflect.Pointer {
				if fv.IsNil() {
					fv.Set(reflect.New(fv.Type().Elem()))
				}
				fv = fv.Elem()
			}
			if err := bindStruct(r, fv, childPrefix); err != nil {
				return err
			}
			continue
		}

		opt, err := fieldOptions(sf, prefix, hasConfig)
		if err != nil {
			return err
		}
		v, err := r.Lookup(opt)
		if err != nil {
			return err
		}
		if v == nil {
			if sf.Tag.Get("required") == "true" {
				return configErr("required value missing", opt.EnvName, nil)
			}
			continue
		}
		if err := assign(fv, v); err != nil {
			return configErr("cannot set field "+sf.Name, opt.EnvName, err)
		}
	}

	return nil
}

func fieldOptions(sf reflect.StructField, prefix string, hasConfig bool) (Options, error) {
	name := sf.Tag.Get("name")
	envName, hasEnv := sf.Tag.Lookup("env")
	if name == "" && !hasConfig && !hasEnv {
		name = sf.Name
	}

	configName := sf.Tag.Get("config")
	if configName == "" {
		configName = name
	}
	if configName != "" {
		configName = prefix + configName
	}
	if envName == "" {
		envName = name
	}

	opt := Options{ConfigName: configName, EnvName: envName}

	if def, ok := sf.Tag.Lookup("default"); ok {
		opt.Default = def
	}

	if tag := sf.Tag.Get("type"); tag != "" {
		if err := opt.Type.UnmarshalText([]byte(tag)); err != nil {
			return opt, configErr("invalid type tag on field "+sf.Name, envName, err)
		}
	} else {
		opt.Type = inferType(sf.Type)
	}

	if tag := sf.Tag.Get("priority"); tag != "" {
		if err := opt.Priority.UnmarshalText([]byte(tag)); err != nil {
			return opt, configErr("invalid priority tag on field "+sf.Name, envName, err)
		}
	}

	if tag := sf.Tag.Get("strict"); tag != "" {
		strict, err := strconv.ParseBool(tag)
		if err != nil {
			return opt, configErr("invalid strict tag on field "+sf.Name, envName, err)
		}
		opt.Strict = &strict
	}

	return opt, nil
}

var (
	durationType = reflect.TypeOf(time.Duration(0))
	timeType     = reflect.TypeOf(time.Time{})
	decimalType  = reflect.TypeOf(decimal.Decimal{})
	uuidType     = reflect.TypeOf(uuid.UUID{})
	quantityType = reflect.TypeOf(resource.Quantity{})
	bigIntType   = reflect.TypeOf(big.Int{})
	urlType      = reflect.TypeOf(url.URL{})
	programType  = reflect.TypeOf(vm.Program{})
)

// inferType picks the value type for a field without a `type` tag.
// It returns "" when the resolver default should apply.
func inferType(t reflect.Type) Type {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t {
	case durationType:
		return TypeDuration
	case timeType:
		return TypeDate
	case decimalType:
		return TypeDecimal
	case uuidType:
		return TypeUUID
	case quantityType:
		return TypeQuantity
	case bigIntType:
		return TypeBigInt
	case urlType:
		return TypeURL
	case programType:
		return TypeExpr
	}

	switch t.Kind() {
	case reflect.Bool:
		return TypeBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return TypeInteger
	case reflect.Float32, reflect.Float64:
		return TypeFloat
	case reflect.String:
		return TypeString
	case reflect.Slice:
		if t.Elem().Kind() == reflect.String {
			return TypeArray
		}
		return TypeJSON
	case reflect.Map:
		return TypeJSON
	}
	return ""
}

// isNestedStruct reports whether the field is a plain struct to recurse into
// rather than a value resolved as a whole.
func isNestedStruct(sf reflect.StructField) bool {
	t := sf.Type
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || inferType(t) != "" {
		return false
	}
	_, hasEnv := sf.Tag.Lookup("env")
	_, hasType := sf.Tag.Lookup("type")
	_, hasName := sf.Tag.Lookup("name")
	return !hasEnv && !hasType && !hasName
}

// assign stores v into dst, directly when the types allow it and through a
// weakly typed mapstructure decode otherwise.
func assign(dst reflect.Value, v any) error {
	src := reflect.ValueOf(v)
	if src.Type().AssignableTo(dst.Type()) {
		dst.Set(src)
		return nil
	}
	if dst.Kind() == reflect.Pointer && src.Type().AssignableTo(dst.Type().Elem()) {
		p := reflect.New(dst.Type().Elem())
		p.Elem().Set(src)
		dst.Set(p)
		return nil
	}
	if src.Kind() == reflect.Pointer && !src.IsNil() && src.Elem().Type().AssignableTo(dst.Type()) {
		dst.Set(src.Elem())
		return nil
	}
	if err := checkNumeric(dst.Type(), src); err != nil {
		return err
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           dst.Addr().Interface(),
		TagName:          "config",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.TextUnmarshallerHookFunc(),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}
	return decoder.Decode(v)
}

// checkNumeric rejects numbers that would not survive the conversion to t:
// out of range values, negatives for unsigned kinds, and fractions for
// integer kinds. mapstructure itself wraps or truncates them silently.
// Strings are left to mapstructure, which parses them with the right bit size.
func checkNumeric(t reflect.Type, src reflect.Value) error {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	target := reflect.New(t).Elem()

	var (
		f       float64
		isInt   bool
		i       int64
		isUint  bool
		u       uint64
		isFloat bool
	)
	switch src.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, isInt = src.Int(), true
		f = float64(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u, isUint = src.Uint(), true
		f = float64(u)
	case reflect.Float32, reflect.Float64:
		f, isFloat = src.Float(), true
	default:
		return nil
	}

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch {
		case isUint:
			if u > math.MaxInt64 || target.OverflowInt(int64(u)) {
				return fmt.Errorf("value %d overflows %s", u, t)
			}
		case isFloat:
			if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 || target.OverflowInt(int64(f)) {
				return fmt.Errorf("value %v does not fit %s", f, t)
			}
		default:
			if target.OverflowInt(i) {
				return fmt.Errorf("value %d overflows %s", i, t)
			}
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		switch {
		case isInt:
			if i < 0 || target.OverflowUint(uint64(i)) {
				return fmt.Errorf("value %d does not fit %s", i, t)
			}
		case isFloat:
			if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 || target.OverflowUint(uint64(f)) {
				return fmt.Errorf("value %v does not fit %s", f, t)
			}
		default:
			if target.OverflowUint(u) {
				return fmt.Errorf("value %d overflows %s", u, t)
			}
		}
	case reflect.Float32, reflect.Float64:
		if target.OverflowFloat(f) {
			return fmt.Errorf("value %v overflows %s", f, t)
		}
	}
	return nil
}
