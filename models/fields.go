package models

import (
	"github.com/spf13/cast"
)

// Fields is the loosely typed input map callers pass to every operation.
type Fields map[string]interface{}

// String reports the value under key coerced to a string. A missing key, a
// nil value or a value that cannot be coerced is reported as absent.
func (f Fields) String(key string) (string, bool) {
	v, ok := f[key]
	if !ok || v == nil {
		return "", false
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", false
	}
	return s, true
}

// Has reports whether key is present with a non-nil value.
func (f Fields) Has(key string) bool {
	v, ok := f[key]
	return ok && v != nil
}

func (f Fields) Bool(key string) bool {
	v, ok := f[key]
	if !ok || v == nil {
		return false
	}
	return cast.ToBool(v)
}

// optional returns a pointer to the coerced value, or nil when absent.
func (f Fields) optional(key string) *string {
	s, ok := f.String(key)
	if !ok {
		return nil
	}
	return &s
}
