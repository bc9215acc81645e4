package getconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/expr-lang/expr"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"k8s.io/apimachinery/pkg/api/resource"
)

// ParseFunc turns a raw environment string into a typed value.
// Returning (nil, nil) means the string denotes an explicit null.
type ParseFunc func(raw string) (any, error)

var (
	errUnknownType = errors.New("unknown type")

	parsersMu sync.RWMutex
	parsers   = map[Type]ParseFunc{}
)

// RegisterType adds or replaces the parser used for t.
// Call it in init() or main() before resolving values of that type.
func RegisterType(t Type, fn ParseFunc) {
	parsersMu.Lock()
	defer parsersMu.Unlock()
	parsers[t] = fn
}

func parserFor(t Type) (ParseFunc, bool) {
	parsersMu.RLock()
	defer parsersMu.RUnlock()
	fn, ok := parsers[t]
	return fn, ok
}

// parseValue parses raw according to t. Unknown tags yield errUnknownType.
func parseValue(t Type, raw string) (any, error) {
	fn, ok := parserFor(t)
	if !ok {
		return nil, fmt.Errorf("%w %q", errUnknownType, string(t))
	}
	return fn(raw)
}

func parseString(raw string) (any, error) {
	if raw == "null" {
		return nil, nil
	}
	return raw, nil
}

func parseArray(raw string) (any, error) {
	return strings.Split(raw, ","), nil
}

func parseBoolean(raw string) (any, error) {
	switch raw {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return nil, fmt.Errorf("not a boolean value: %q", raw)
}

// parseInteger accepts only the canonical base-10 form, so "007", "+1"
// and "12abc" are all rejected.
func parseInteger(raw string) (any, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || strconv.FormatInt(n, 10) != raw {
		return nil, fmt.Errorf("not a valid integer string: %q", raw)
	}
	return n, nil
}

// parseFloat accepts only strings that formatNumber reproduces exactly.
func parseFloat(raw string) (any, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || formatNumber(f) != raw {
		return nil, fmt.Errorf("not a valid float string: %q", raw)
	}
	return f, nil
}

// formatNumber renders f in the shortest round-trip form: plain decimal
// notation for magnitudes in [1e-6, 1e21), exponent notation otherwise,
// with no zero padding in the exponent and no negative zero.
func formatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	return mant + "e" + sign + digits
}

func parseJSON(raw string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("unable to parse JSON: %w", err)
	}
	return v, nil
}

func parseNull(raw string) (any, error) {
	if raw == "null" {
		return nil, nil
	}
	return nil, fmt.Errorf("not a null value: %q", raw)
}

// parseDate accepts RFC3339 first, then Unix seconds.
func parseDate(raw string) (any, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if unix, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(unix, 0), nil
	}
	return nil, fmt.Errorf("invalid date %q: must be RFC3339 format or Unix seconds", raw)
}

func init() {
	RegisterType(TypeString, parseString)
	RegisterType(TypeArray, parseArray)
	RegisterType(TypeBoolean, parseBoolean)
	RegisterType(TypeInteger, parseInteger)
	RegisterType(TypeFloat, parseFloat)
	RegisterType(TypeJSON, parseJSON)
	RegisterType(TypeNull, parseNull)
	RegisterType(TypeDate, parseDate)

	RegisterType(TypeDuration, func(raw string) (any, error) {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", raw, err)
		}
		return d, nil
	})

	RegisterType(TypeDecimal, func(raw string) (any, error) {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid decimal %q: %w", raw, err)
		}
		return d, nil
	})

	RegisterType(TypeUUID, func(raw string) (any, error) {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid UUID %q: %w", raw, err)
		}
		return id, nil
	})

	// Kubernetes resource units such as 250m or 1.5Gi
	RegisterType(TypeQuantity, func(raw string) (any, error) {
		q, err := resource.ParseQuantity(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid k8s quantity %q: %w", raw, err)
		}
		return q, nil
	})

	RegisterType(TypeBigInt, func(raw string) (any, error) {
		bi, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			return nil, fmt.Errorf("invalid big.Int %q: must be base-10 integer", raw)
		}
		return bi, nil
	})

	RegisterType(TypeURL, func(raw string) (any, error) {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid URL %q: %w", raw, err)
		}
		if u.Scheme == "" {
			return nil, fmt.Errorf("invalid URL %q: missing scheme", raw)
		}
		return u, nil
	})

	RegisterType(TypeExpr, func(raw string) (any, error) {
		program, err := expr.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to compile expression %q: %w", raw, err)
		}
		return program, nil
	})
}
