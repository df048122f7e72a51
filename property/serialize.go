package property

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sort"
	"time"

	"github.com/zero-day-ai/propkit/constraint"
)

// DateLayout is how date values appear in plain data: ISO-8601 with
// microseconds, always in UTC.
const DateLayout = "2006-01-02T15:04:05.000000Z"

// Arrayer is implemented by values that can render their current state as
// plain data. *Container implements it.
type Arrayer interface {
	ToArray() (map[string]any, error)
}

// Normalizer is implemented by values that can render themselves as plain
// data at full depth. *Container implements it.
type Normalizer interface {
	NormalizeData() (map[string]any, error)
}

// Populator is implemented by values that can be filled from plain data.
// *Container implements it.
type Populator interface {
	FromArray(data map[string]any, opts ...PopulateOption) error
}

// PopulateOption configures FromArray.
type PopulateOption func(*populateConfig)

type populateConfig struct {
	skipExtra   bool
	skipMissing bool
}

// SkipExtraProperties controls whether keys outside the schema are dropped
// (true, the default) or rejected with ErrPropertyNotValid.
func SkipExtraProperties(skip bool) PopulateOption {
	return func(c *populateConfig) {
		c.skipExtra = skip
	}
}

// SkipMissingProperties controls whether schema properties absent from the
// input are ignored (true, the default) or rejected with ErrPropertyMissing.
func SkipMissingProperties(skip bool) PopulateOption {
	return func(c *populateConfig) {
		c.skipMissing = skip
	}
}

// ToArray returns the current state as plain data. Unset properties are
// omitted and defaults are never substituted.
//
// Dates render with DateLayout, nested Arrayers render through ToArray, and
// lists are converted one level deep: their date and Arrayer elements are
// rendered, other elements (including sub-lists) pass through. Any other
// object fails with ErrPropertyValueNotValid.
func (c *Container) ToArray() (map[string]any, error) {
	out := make(map[string]any, len(c.values))
	for _, name := range c.propertyNames(c.values) {
		v, ok := c.values[name]
		if !ok {
			continue
		}
		plain, err := arrayValue("ToArray", name, v)
		if err != nil {
			return nil, err
		}
		out[name] = plain
	}
	return out, nil
}

// PropertyToArray renders the stored value of a single property, which must
// be a list or an Arrayer.
func (c *Container) PropertyToArray(name string) (any, error) {
	const op = "PropertyToArray"

	if !c.IsValidProperty(name) {
		return nil, NotValid(op, name)
	}

	v := c.values[name]
	kind, _ := constraint.Classify(v)
	switch kind {
	case constraint.KindArray:
		return arrayValue(op, name, v)
	case constraint.KindObject:
		if a, ok := v.(Arrayer); ok {
			return a.ToArray()
		}
	}
	return nil, notRenderable(op, name, v)
}

// NormalizeData returns the full state as plain data: unset properties with a
// default are included with the default, and lists are converted at every
// depth. Objects must be dates or Normalizers, otherwise ErrNormalization.
func (c *Container) NormalizeData() (map[string]any, error) {
	out := make(map[string]any, len(c.names))
	for _, name := range c.propertyNames(c.values) {
		v, ok := c.valueOrDefault(name)
		if !ok {
			continue
		}
		plain, err := normalizeValue("NormalizeData", name, v)
		if err != nil {
			return nil, err
		}
		out[name] = plain
	}
	return out, nil
}

// NormalizeProperty returns the normalized value of a single property, or nil
// when it has neither a value nor a default.
func (c *Container) NormalizeProperty(name string) (any, error) {
	const op = "NormalizeProperty"

	if !c.IsValidProperty(name) {
		return nil, NotValid(op, name)
	}
	v, ok := c.valueOrDefault(name)
	if !ok {
		return nil, nil
	}
	return normalizeValue(op, name, v)
}

// FromArray assigns every schema property present in data through Set, so
// custom setters and type checks apply. Keys outside the schema and absent
// properties are handled per the options; both checks run before anything is
// written. If any Set fails, the store is restored to its previous state.
//
// Strings assigned to a property that takes time.Time or *time.Time but not
// strings are parsed with DateLayout, then RFC 3339, so ToArray output reads
// back into the same dates.
//
// On an unconstrained container every key in data is assigned.
func (c *Container) FromArray(data map[string]any, opts ...PopulateOption) error {
	const op = "FromArray"

	cfg := populateConfig{skipExtra: true, skipMissing: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	names := c.propertyNames(data)

	if !cfg.skipMissing {
		var missing []string
		for _, name := range names {
			if _, ok := data[name]; !ok {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return Missing(op, missing...)
		}
	}

	var extra []string
	for key := range data {
		if !c.IsValidProperty(key) {
			extra = append(extra, key)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		if !cfg.skipExtra {
			return NotValid(op, extra...)
		}
		c.logger.Debug("dropping properties outside the schema",
			"properties", extra)
	}

	snapshot := maps.Clone(c.values)
	for _, name := range names {
		v, ok := data[name]
		if !ok {
			continue
		}
		if err := c.Set(name, c.dateValue(name, v)); err != nil {
			c.values = snapshot
			c.logger.Debug("population rolled back",
				"property", name,
				"error", err)
			return err
		}
	}
	return nil
}

func (c *Container) valueOrDefault(name string) (any, bool) {
	if v, ok := c.values[name]; ok {
		return v, true
	}
	if d, ok := c.defaults[name]; ok {
		return cloneValue(d), true
	}
	return nil, false
}

func arrayValue(op, name string, v any) (any, error) {
	if s, ok := dateString(v); ok {
		return s, nil
	}
	kind, _ := constraint.Classify(v)
	switch kind {
	case constraint.KindArray:
		return mapList(v, func(e any) (any, error) {
			return arrayElement(op, name, e)
		})
	case constraint.KindObject:
		return arrayObject(op, name, v)
	}
	return v, nil
}

// arrayElement converts one list element without descending into sub-lists.
func arrayElement(op, name string, e any) (any, error) {
	if s, ok := dateString(e); ok {
		return s, nil
	}
	if kind, _ := constraint.Classify(e); kind == constraint.KindObject {
		return arrayObject(op, name, e)
	}
	return e, nil
}

func arrayObject(op, name string, v any) (any, error) {
	if a, ok := v.(Arrayer); ok {
		return a.ToArray()
	}
	return nil, notRenderable(op, name, v)
}

func normalizeValue(op, name string, v any) (any, error) {
	if s, ok := dateString(v); ok {
		return s, nil
	}
	kind, typeName := constraint.Classify(v)
	switch kind {
	case constraint.KindArray:
		return mapList(v, func(e any) (any, error) {
			return normalizeValue(op, name, e)
		})
	case constraint.KindObject:
		if n, ok := v.(Normalizer); ok {
			return n.NormalizeData()
		}
		return nil, NormalizationFailed(op, name, typeName)
	}
	return v, nil
}

var errNotRenderable = errors.New("not a list and not renderable as plain data")

func notRenderable(op, name string, v any) *Error {
	kind, typeName := constraint.Classify(v)
	actual := kind.String()
	if kind == constraint.KindObject {
		actual = typeName
	}
	return &Error{
		Op:       op,
		Kind:     KindValueNotValid,
		Property: name,
		Actual:   actual,
		Err:      errNotRenderable,
	}
}

func dateString(v any) (string, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(DateLayout), true
	case *time.Time:
		if t != nil {
			return t.UTC().Format(DateLayout), true
		}
	}
	return "", false
}

func (c *Container) dateValue(name string, v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	cons := c.constraintFor(name)
	if cons.Has(constraint.KindString) {
		return v
	}

	var wantValue, wantPointer bool
	for _, tag := range cons {
		if tag.Kind != constraint.KindType {
			continue
		}
		switch tag.TypeName {
		case "time.Time":
			wantValue = true
		case "*time.Time":
			wantPointer = true
		}
	}
	if !wantValue && !wantPointer {
		return v
	}

	t, err := time.Parse(DateLayout, s)
	if err != nil {
		if t, err = time.Parse(time.RFC3339Nano, s); err != nil {
			return v
		}
	}
	if wantValue {
		return t
	}
	return &t
}

// mapList applies fn to every element of a slice, array or map. Lists of
// basic elements (strings, numbers, booleans) are copied with their type
// intact; everything else becomes []any or map[string]any.
func mapList(v any, fn func(any) (any, error)) (any, error) {
	rv := reflect.ValueOf(v)

	if rv.Kind() == reflect.Map {
		if isBasic(rv.Type().Elem()) {
			return cloneValue(v), nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			e, err := fn(iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(iter.Key().Interface())] = e
		}
		return out, nil
	}

	if isBasic(rv.Type().Elem()) {
		if rv.Kind() == reflect.Slice {
			return cloneValue(v), nil
		}
		return v, nil
	}

	out := make([]any, rv.Len())
	for i := range rv.Len() {
		e, err := fn(rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

var basicKinds = []reflect.Kind{
	reflect.Bool, reflect.String,
	reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
	reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
	reflect.Float32, reflect.Float64,
}

func isBasic(t reflect.Type) bool {
	return slices.Contains(basicKinds, t.Kind())
}
