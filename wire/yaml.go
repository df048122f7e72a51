package wire

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/zero-day-ai/propkit/property"
)

// MarshalYAML encodes the normalized data of src as YAML.
func MarshalYAML(src property.Normalizer) ([]byte, error) {
	data, err := src.NormalizeData()
	if err != nil {
		return nil, err
	}

	b, err := yaml.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("wire: encode yaml: %w", err)
	}
	return b, nil
}

// UnmarshalYAML decodes a YAML mapping and populates dst with it.
func UnmarshalYAML(b []byte, dst property.Populator, opts ...property.PopulateOption) error {
	var data map[string]any
	if err := yaml.Unmarshal(b, &data); err != nil {
		return fmt.Errorf("wire: decode yaml: %w", err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return dst.FromArray(data, opts...)
}
