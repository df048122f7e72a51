package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/zero-day-ai/propkit/constraint"
	"github.com/zero-day-ai/propkit/property"
)

// JSON is a JSON Schema node describing a container's plain-data rendering.
type JSON struct {
	Title       string          `json:"title,omitempty"`
	Type        string          `json:"type,omitempty"`
	Description string          `json:"description,omitempty"`
	Properties  map[string]JSON `json:"properties,omitempty"`
	Required    []string        `json:"required,omitempty"`
	Items       *JSON           `json:"items,omitempty"`
	AnyOf       []JSON          `json:"anyOf,omitempty"`
	Default     any             `json:"default,omitempty"`
	Format      string          `json:"format,omitempty"`

	// GoType names the exact Go type an object property holds.
	GoType string `json:"x-go-type,omitempty"`

	// AdditionalProperties is false for container objects, which reject
	// keys outside their schema.
	AdditionalProperties *bool `json:"additionalProperties,omitempty"`
}

// Export renders definitions as an object schema. No property is required
// since every property of a container may be left unset.
func Export(defs ...property.Definition) JSON {
	closed := false
	out := JSON{
		Type:                 "object",
		Properties:           make(map[string]JSON, len(defs)),
		AdditionalProperties: &closed,
	}
	for _, def := range defs {
		js := FromConstraint(def.Constraint)
		js.Default = def.Default
		out.Properties[def.Name] = js
	}
	return out
}

// JSONSchema exports the document with its name and descriptions.
func (d *Document) JSONSchema() (JSON, error) {
	defs, err := d.Definitions()
	if err != nil {
		return JSON{}, err
	}

	out := Export(defs...)
	out.Title = d.Name
	out.Description = d.Description
	for _, p := range d.Properties {
		if p.Description == "" {
			continue
		}
		js := out.Properties[p.Name]
		js.Description = p.Description
		out.Properties[p.Name] = js
	}
	return out, nil
}

// FromConstraint renders a constraint. A single tag renders directly, a
// union renders as anyOf and an empty constraint accepts anything. The array
// tag covers keyed lists too, so it renders as anyOf array or object.
func FromConstraint(c constraint.Constraint) JSON {
	switch len(c) {
	case 0:
		return JSON{}
	case 1:
		return fromTag(c[0])
	}

	out := JSON{AnyOf: make([]JSON, 0, len(c)+1)}
	for _, tag := range c {
		js := fromTag(tag)
		if len(js.AnyOf) > 0 {
			out.AnyOf = append(out.AnyOf, js.AnyOf...)
			continue
		}
		out.AnyOf = append(out.AnyOf, js)
	}
	return out
}

func fromTag(tag constraint.Tag) JSON {
	switch tag.Kind {
	case constraint.KindString:
		return JSON{Type: "string"}
	case constraint.KindInteger:
		return JSON{Type: "integer"}
	case constraint.KindNumber:
		return JSON{Type: "number"}
	case constraint.KindBoolean:
		return JSON{Type: "boolean"}
	case constraint.KindNull:
		return JSON{Type: "null"}
	case constraint.KindArray:
		return JSON{AnyOf: []JSON{{Type: "array"}, {Type: "object"}}}
	case constraint.KindObject:
		return JSON{Type: "object"}
	case constraint.KindType:
		name := strings.TrimPrefix(tag.TypeName, "*")
		if name == "time.Time" {
			return JSON{Type: "string", Format: "date-time"}
		}
		return JSON{Type: "object", GoType: tag.TypeName}
	}
	return JSON{}
}

// Validate checks plain data, such as the output of NormalizeData, against
// the schema.
func (s JSON) Validate(value any) error {
	if len(s.AnyOf) > 0 {
		var reasons []string
		for _, alt := range s.AnyOf {
			err := alt.Validate(value)
			if err == nil {
				return nil
			}
			reasons = append(reasons, err.Error())
		}
		return fmt.Errorf("no alternative matched: %s", strings.Join(reasons, "; "))
	}

	if s.Type == "" {
		return nil
	}

	if value == nil {
		if s.Type == "null" {
			return nil
		}
		return fmt.Errorf("expected %s, got null", s.Type)
	}

	if err := s.validateType(value); err != nil {
		return err
	}

	switch s.Type {
	case "array":
		return s.validateArray(value)
	case "object":
		if m, ok := value.(map[string]any); ok {
			return s.validateObject(m)
		}
	}
	return nil
}

func (s JSON) validateType(value any) error {
	v := reflect.ValueOf(value)

	switch s.Type {
	case "string":
		if v.Kind() != reflect.String {
			return fmt.Errorf("expected string, got %T", value)
		}
	case "integer":
		if kind, _ := constraint.Classify(value); kind != constraint.KindInteger {
			return fmt.Errorf("expected integer, got %T", value)
		}
	case "number":
		kind, _ := constraint.Classify(value)
		if kind != constraint.KindInteger && kind != constraint.KindNumber {
			return fmt.Errorf("expected number, got %T", value)
		}
	case "boolean":
		if v.Kind() != reflect.Bool {
			return fmt.Errorf("expected boolean, got %T", value)
		}
	case "null":
		return fmt.Errorf("expected null, got %T", value)
	case "array":
		if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
			return fmt.Errorf("expected array, got %T", value)
		}
	case "object":
		if v.Kind() != reflect.Map && v.Kind() != reflect.Struct && v.Kind() != reflect.Pointer {
			return fmt.Errorf("expected object, got %T", value)
		}
	}
	return nil
}

func (s JSON) validateArray(value any) error {
	if s.Items == nil {
		return nil
	}

	v := reflect.ValueOf(value)
	for i := range v.Len() {
		if err := s.Items.Validate(v.Index(i).Interface()); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

func (s JSON) validateObject(obj map[string]any) error {
	for _, req := range s.Required {
		if _, exists := obj[req]; !exists {
			return fmt.Errorf("required field %s is missing", req)
		}
	}

	for key, val := range obj {
		propSchema, exists := s.Properties[key]
		if !exists {
			if s.AdditionalProperties != nil && !*s.AdditionalProperties {
				return fmt.Errorf("property %s is not allowed", key)
			}
			continue
		}
		if err := propSchema.Validate(val); err != nil {
			return fmt.Errorf("property %s: %w", key, err)
		}
	}
	return nil
}

// Marshal encodes the schema as indented JSON.
func (s JSON) Marshal() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
