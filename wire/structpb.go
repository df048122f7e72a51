package wire

import (
	"fmt"
	"math"
	"reflect"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/zero-day-ai/propkit/property"
)

// ToStruct converts plain data to a protobuf Struct. Typed lists and maps are
// widened, dates (time.Time and *timestamppb.Timestamp) become strings in
// property.DateLayout, and nested Normalizers are normalized first.
func ToStruct(data map[string]any) (*structpb.Struct, error) {
	plain, err := structValue(data)
	if err != nil {
		return nil, err
	}

	s, err := structpb.NewStruct(plain.(map[string]any))
	if err != nil {
		return nil, fmt.Errorf("wire: build struct: %w", err)
	}
	return s, nil
}

func structValue(v any) (any, error) {
	switch t := v.(type) {
	case nil, string, bool, int, int32, int64, uint, uint32, uint64, float32, float64:
		return t, nil
	case time.Time:
		return t.UTC().Format(property.DateLayout), nil
	case *time.Time:
		if t == nil {
			return nil, nil
		}
		return t.UTC().Format(property.DateLayout), nil
	case *timestamppb.Timestamp:
		if t == nil {
			return nil, nil
		}
		return t.AsTime().Format(property.DateLayout), nil
	case property.Normalizer:
		if rv := reflect.ValueOf(t); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return nil, nil
		}
		data, err := t.NormalizeData()
		if err != nil {
			return nil, err
		}
		return structValue(data)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range rv.Len() {
			e, err := structValue(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = e
		}
		return out, nil
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			e, err := structValue(iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(iter.Key().Interface())] = e
		}
		return out, nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	}
	return nil, fmt.Errorf("wire: cannot convert %T to a struct value", v)
}

// FromStruct converts a protobuf Struct to plain data. Struct numbers are
// doubles; whole ones are returned as int64.
func FromStruct(s *structpb.Struct) map[string]any {
	if s == nil {
		return map[string]any{}
	}
	return wholeNumbers(s.AsMap()).(map[string]any)
}

func wholeNumbers(v any) any {
	switch t := v.(type) {
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return int64(t)
		}
		return t
	case map[string]any:
		for k, e := range t {
			t[k] = wholeNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = wholeNumbers(e)
		}
		return t
	}
	return v
}

// MarshalStruct converts the normalized data of src to a protobuf Struct.
func MarshalStruct(src property.Normalizer) (*structpb.Struct, error) {
	data, err := src.NormalizeData()
	if err != nil {
		return nil, err
	}
	return ToStruct(data)
}

// UnmarshalStruct populates dst from a protobuf Struct.
func UnmarshalStruct(s *structpb.Struct, dst property.Populator, opts ...property.PopulateOption) error {
	return dst.FromArray(FromStruct(s), opts...)
}

// MarshalProtoJSON encodes the normalized data of src with protojson, the
// canonical JSON mapping of a protobuf Struct.
func MarshalProtoJSON(src property.Normalizer) ([]byte, error) {
	s, err := MarshalStruct(src)
	if err != nil {
		return nil, err
	}

	b, err := protojson.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("wire: encode protojson: %w", err)
	}
	return b, nil
}
