package osrm

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Param is a single query-string entry.
type Param struct {
	Name  string
	Value string
}

// Params is an ordered option table. The order carries no meaning for the service but is
// stable for a given request.
type Params []Param

// Get returns the value of the named parameter.
func (p Params) Get(name string) (string, bool) {
	for _, param := range p {
		if param.Name == name {
			return param.Value, true
		}
	}
	return "", false
}

// Encode returns the URL-encoded query string in table order.
func (p Params) Encode() string {
	var b strings.Builder
	for i, param := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(param.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(param.Value))
	}
	return b.String()
}

// field describes how one configuration value maps to a query parameter: its name, and an
// encoder reporting the wire value and whether the parameter is present at all.
type field struct {
	name   string
	encode func() (string, bool)
}

// buildParams is the one encoding routine shared by every service.
func buildParams(fields ...[]field) Params {
	var params Params
	for _, group := range fields {
		for _, f := range group {
			if value, ok := f.encode(); ok {
				params = append(params, Param{Name: f.name, Value: value})
			}
		}
	}
	return params
}

// flag is always emitted.
func flag(name string, v bool) field {
	return field{name: name, encode: func() (string, bool) {
		return strconv.FormatBool(v), true
	}}
}

// flagOr is always emitted, falling back to def when v is unset.
func flagOr(name string, v *bool, def bool) field {
	return field{name: name, encode: func() (string, bool) {
		if v == nil {
			return strconv.FormatBool(def), true
		}
		return strconv.FormatBool(*v), true
	}}
}

// optionalFlag is emitted only when set.
func optionalFlag(name string, v *bool) field {
	return field{name: name, encode: func() (string, bool) {
		if v == nil {
			return "", false
		}
		return strconv.FormatBool(*v), true
	}}
}

// token is emitted only when the enum carries a value.
func token[T ~string](name string, v T) field {
	return field{name: name, encode: func() (string, bool) {
		return string(v), v != ""
	}}
}

type number interface {
	~int | ~uint64 | ~float32 | ~float64
}

// numeric is emitted only when set, in its shortest decimal form for its own width.
func numeric[T number](name string, v *T) field {
	return field{name: name, encode: func() (string, bool) {
		if v == nil {
			return "", false
		}
		return formatNumber(*v), true
	}}
}

// list is emitted when the slice is non-nil; an empty slice yields an empty value.
func list[T any](name string, vs []T, enc func(T) string) field {
	return field{name: name, encode: func() (string, bool) {
		if vs == nil {
			return "", false
		}
		parts := make([]string, len(vs))
		for i, v := range vs {
			parts[i] = enc(v)
		}
		return strings.Join(parts, ";"), true
	}}
}

func stringer[T fmt.Stringer](v T) string { return v.String() }

func formatNumber[T number](v T) string {
	switch n := any(v).(type) {
	case float32:
		return formatFloat32(n)
	case float64:
		return formatFloat64(n)
	case int:
		return strconv.Itoa(n)
	case uint64:
		return strconv.FormatUint(n, 10)
	default:
		return fmt.Sprint(v)
	}
}

// Bool returns a pointer to v, for optional and defaulted flags.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Float32 returns a pointer to v.
func Float32(v float32) *float32 { return &v }
