package constraint

import (
	"encoding/json"
	"math"
	"reflect"
)

// Classify returns the category of value and, for objects, its fully-qualified
// type name. Non-object values report their kind name instead.
//
// Whole floats classify as integer because decoded JSON carries every number
// as float64. Slices, maps and unnamed arrays are arrays; named arrays such
// as uuid.UUID are objects.
func Classify(value any) (Kind, string) {
	if value == nil {
		return KindNull, KindNull.String()
	}

	if n, ok := value.(json.Number); ok {
		if _, err := n.Int64(); err == nil {
			return KindInteger, KindInteger.String()
		}
		return KindNumber, KindNumber.String()
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.String:
		return KindString, KindString.String()
	case reflect.Bool:
		return KindBoolean, KindBoolean.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return KindInteger, KindInteger.String()
	case reflect.Float32, reflect.Float64:
		if isWhole(v.Float()) {
			return KindInteger, KindInteger.String()
		}
		return KindNumber, KindNumber.String()
	case reflect.Slice, reflect.Map:
		return KindArray, KindArray.String()
	case reflect.Array:
		if v.Type().Name() == "" {
			return KindArray, KindArray.String()
		}
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return KindNull, KindNull.String()
		}
	}
	return KindObject, TypeName(value)
}

func isWhole(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f)
}

// TypeName returns the fully-qualified name of value's dynamic type, e.g.
// "time.Time" or "*github.com/acme/shop.Address".
func TypeName(value any) string {
	if value == nil {
		return KindNull.String()
	}
	return typeName(reflect.TypeOf(value))
}

func typeName(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		return "*" + typeName(t.Elem())
	}
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

// TypeOf returns an exact type tag for T.
//
//	constraint.TypeOf[*Address]()  // matches *Address values only
func TypeOf[T any]() Tag {
	return Tag{Kind: KindType, TypeName: typeName(reflect.TypeFor[T]())}
}

// Exact returns an exact type tag for the dynamic type of value.
func Exact(value any) Tag {
	return Tag{Kind: KindType, TypeName: TypeName(value)}
}
