package domain

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// CredentialArg is the per-call credential argument. It is never forwarded
// upstream.
const CredentialArg = "api_key"

// Args is the loosely typed argument bag received from a transport.
// Keys not declared by the operation are ignored unless the operation
// forwards an open body.
type Args map[string]any

// IsEmpty reports whether v counts as an absent value. false and 0 are
// concrete values and are not empty.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}

// Has reports whether name is present with a non-empty value.
func (a Args) Has(name string) bool {
	v, ok := a[name]
	return ok && !IsEmpty(v)
}

// String returns the named argument converted to a string, or "" when absent.
func (a Args) String(name string) (string, error) {
	if !a.Has(name) {
		return "", nil
	}
	switch a[name].(type) {
	case map[string]any, []any:
		return "", InvalidArgument(name, fmt.Errorf("expected a string"))
	}
	s, err := cast.ToStringE(a[name])
	if err != nil {
		return "", InvalidArgument(name, err)
	}
	return s, nil
}

// Int returns the named argument as an integer, or nil when absent. Strings
// are read in base 10 only, so "010" is ten. A fractional number is invalid.
func (a Args) Int(name string) (*int64, error) {
	if !a.Has(name) {
		return nil, nil
	}
	n, err := toInt64(a[name])
	if err != nil {
		return nil, InvalidArgument(name, err)
	}
	return &n, nil
}

func toInt64(v any) (int64, error) {
	switch t := v.(type) {
	case float64:
		return wholeNumber(t)
	case float32:
		return wholeNumber(float64(t))
	case map[string]any, []any:
		return 0, fmt.Errorf("expected an integer")
	}
	// Strings and json.Number alike.
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.String {
		s := strings.TrimSpace(rv.String())
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a base-10 integer", s)
		}
		return wholeNumber(f)
	}
	return cast.ToInt64E(v)
}

func wholeNumber(f float64) (int64, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%v is not a whole number", f)
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%v is out of range", f)
	}
	return int64(f), nil
}

// Bool returns the named argument as a boolean, or nil when absent.
func (a Args) Bool(name string) (*bool, error) {
	if !a.Has(name) {
		return nil, nil
	}
	v := a[name]
	if s, ok := v.(string); ok {
		v = strings.ToLower(strings.TrimSpace(s))
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return nil, InvalidArgument(name, err)
	}
	return &b, nil
}

// Object returns the named argument as a JSON object, or nil when absent.
func (a Args) Object(name string) (map[string]any, error) {
	if !a.Has(name) {
		return nil, nil
	}
	m, err := cast.ToStringMapE(a[name])
	if err != nil {
		return nil, InvalidArgument(name, err)
	}
	return m, nil
}

// Undeclared returns the non-empty arguments no param declares, minus the
// credential. It returns nil when there are none.
func (a Args) Undeclared(params []Param) map[string]any {
	declared := make(map[string]bool, len(params)+1)
	for _, p := range params {
		declared[p.Name] = true
	}
	declared[CredentialArg] = true
	var out map[string]any
	for k, v := range a {
		if declared[k] || IsEmpty(v) {
			continue
		}
		if out == nil {
			out = map[string]any{}
		}
		out[k] = v
	}
	return out
}

// Without returns a copy of the bag minus the given keys.
func (a Args) Without(keys ...string) Args {
	out := make(Args, len(a))
	for k, v := range a {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}
