package wire

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/zero-day-ai/propkit/property"
)

// EncodeJSON encodes plain data.
func EncodeJSON(data map[string]any) ([]byte, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("wire: encode json: %w", err)
	}
	return b, nil
}

// DecodeJSON decodes a JSON object into plain data. Integers decode as int64
// and other numbers as float64.
func DecodeJSON(b []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("wire: decode json: %w", err)
	}
	return numbers(data).(map[string]any), nil
}

// numbers replaces every json.Number in v.
func numbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, e := range t {
			t[k] = numbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = numbers(e)
		}
		return t
	}
	return v
}

// MarshalJSON encodes the normalized data of src: defaults included, nested
// containers at full depth.
func MarshalJSON(src property.Normalizer) ([]byte, error) {
	data, err := src.NormalizeData()
	if err != nil {
		return nil, err
	}
	return EncodeJSON(data)
}

// SnapshotJSON encodes the current state of src, without defaults.
func SnapshotJSON(src property.Arrayer) ([]byte, error) {
	data, err := src.ToArray()
	if err != nil {
		return nil, err
	}
	return EncodeJSON(data)
}

// UnmarshalJSON decodes b and populates dst with it.
func UnmarshalJSON(b []byte, dst property.Populator, opts ...property.PopulateOption) error {
	data, err := DecodeJSON(b)
	if err != nil {
		return err
	}
	return dst.FromArray(data, opts...)
}
