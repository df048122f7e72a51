package typed

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/zero-day-ai/propkit/constraint"
	"github.com/zero-day-ai/propkit/property"
)

// Source is anything that reads properties by name. *property.Container and
// every type embedding it satisfy Source.
type Source interface {
	Get(name string) (any, error)
}

// Get reads name from src and asserts it to T. An absent value yields the zero
// T and no error; a value of another type yields an *property.Error of kind
// property.KindValueNotValid.
func Get[T any](src Source, name string) (T, error) {
	var zero T

	val, err := src.Get(name)
	if err != nil {
		return zero, err
	}
	if val == nil {
		return zero, nil
	}

	v, ok := val.(T)
	if !ok {
		return zero, mismatch(name, reflect.TypeFor[T](), val)
	}
	return v, nil
}

// MustGet is like Get but panics on error.
func MustGet[T any](src Source, name string) T {
	v, err := Get[T](src, name)
	if err != nil {
		panic(err)
	}
	return v
}

func mismatch(name string, want reflect.Type, val any) *property.Error {
	kind, typeName := constraint.Classify(val)
	actual := kind.String()
	if kind == constraint.KindObject {
		actual = typeName
	}
	return &property.Error{
		Op:       "typed.Get",
		Kind:     property.KindValueNotValid,
		Property: name,
		Expected: []string{want.String()},
		Actual:   actual,
	}
}

// String reads a string value, returning fallback if the value is absent or
// not a string.
func String(src Source, name, fallback string) (string, error) {
	val, err := src.Get(name)
	if err != nil || val == nil {
		return fallback, err
	}

	str, ok := val.(string)
	if !ok {
		return fallback, nil
	}
	return str, nil
}

// Int reads an int value with coercion from other integer types, whole
// floats, json.Number and numeric strings.
func Int(src Source, name string, fallback int) (int, error) {
	val, err := src.Get(name)
	if err != nil || val == nil {
		return fallback, err
	}

	switch v := val.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case int32:
		return int(v), nil
	case uint:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return fallback, nil
		}
		return int(v), nil
	case json.Number:
		if parsed, err := v.Int64(); err == nil {
			return int(parsed), nil
		}
		return fallback, nil
	case string:
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed, nil
		}
		return fallback, nil
	default:
		return fallback, nil
	}
}

// Float64 reads a float64 value with coercion from integers, float32,
// json.Number and numeric strings.
func Float64(src Source, name string, fallback float64) (float64, error) {
	val, err := src.Get(name)
	if err != nil || val == nil {
		return fallback, err
	}

	switch v := val.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		if parsed, err := v.Float64(); err == nil {
			return parsed, nil
		}
		return fallback, nil
	case string:
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed, nil
		}
		return fallback, nil
	default:
		return fallback, nil
	}
}

// Bool reads a bool value, returning fallback if the value is absent or not a
// bool.
func Bool(src Source, name string, fallback bool) (bool, error) {
	val, err := src.Get(name)
	if err != nil || val == nil {
		return fallback, err
	}

	b, ok := val.(bool)
	if !ok {
		return fallback, nil
	}
	return b, nil
}

// StringSlice reads a list of strings. It handles []string, []any (each
// element formatted with %v, nil elements skipped) and a single string.
// Anything else yields nil.
func StringSlice(src Source, name string) ([]string, error) {
	val, err := src.Get(name)
	if err != nil || val == nil {
		return nil, err
	}

	switch v := val.(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out, nil
	case string:
		return []string{v}, nil
	default:
		return nil, nil
	}
}

// Map reads a nested map[string]any. Nested containers are rendered with
// NormalizeData.
func Map(src Source, name string) (map[string]any, error) {
	val, err := src.Get(name)
	if err != nil || val == nil {
		return nil, err
	}

	switch v := val.(type) {
	case map[string]any:
		return v, nil
	case property.Normalizer:
		return v.NormalizeData()
	default:
		return nil, nil
	}
}

// Time reads a date value. It handles time.Time, *time.Time, and strings in
// property.DateLayout or RFC 3339.
func Time(src Source, name string, fallback time.Time) (time.Time, error) {
	val, err := src.Get(name)
	if err != nil || val == nil {
		return fallback, err
	}

	switch v := val.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		if v == nil {
			return fallback, nil
		}
		return *v, nil
	case string:
		for _, layout := range []string{property.DateLayout, time.RFC3339Nano} {
			if parsed, err := time.Parse(layout, v); err == nil {
				return parsed, nil
			}
		}
		return fallback, nil
	default:
		return fallback, nil
	}
}

// Duration reads a duration. Integers and floats are seconds; strings are
// parsed with time.ParseDuration, then as integer seconds.
func Duration(src Source, name string, fallback time.Duration) (time.Duration, error) {
	val, err := src.Get(name)
	if err != nil || val == nil {
		return fallback, err
	}

	switch v := val.(type) {
	case time.Duration:
		return v, nil
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	case string:
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed, nil
		}
		if seconds, err := strconv.Atoi(v); err == nil {
			return time.Duration(seconds) * time.Second, nil
		}
		return fallback, nil
	default:
		return fallback, nil
	}
}
