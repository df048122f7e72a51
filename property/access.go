package property

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/zero-day-ai/propkit/constraint"
)

// Get returns the value of name: the custom getter's result if one is
// installed, else the stored value, else a copy of the default, else nil.
func (c *Container) Get(name string) (any, error) {
	v, _, err := c.Lookup(name)
	return v, err
}

// Lookup is Get with a flag that is false when name has neither a stored
// value nor a default (and no custom getter).
func (c *Container) Lookup(name string) (any, bool, error) {
	if !c.IsValidProperty(name) {
		return nil, false, NotValid("Get", name)
	}

	if g, ok := c.getters[name]; ok {
		v, err := g(c)
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	}

	if v, ok := c.values[name]; ok {
		return v, true, nil
	}

	// Defaults are copied so callers cannot mutate the shared default.
	if d, ok := c.defaults[name]; ok {
		return cloneValue(d), true, nil
	}

	return nil, false, nil
}

// Set writes value to name.
//
// With a custom setter installed, the setter stores the value itself; if it
// stores nothing, name is recorded as explicitly set to nil. Otherwise, when
// the constraint includes array and value is not itself a list, value is
// appended to the stored list instead of replacing it.
//
// The final stored value must pass CheckType and every validator. On failure
// the previous value is restored, so a rejected Set leaves no trace.
func (c *Container) Set(name string, value any) error {
	const op = "Set"

	if !c.IsValidProperty(name) {
		return NotValid(op, name)
	}

	if setter, ok := c.setters[name]; ok {
		return c.setWithHook(op, name, value, setter)
	}

	next := value
	if c.accumulates(name, value) {
		next = appendValue(c.values[name], value)
	}

	if err := c.validate(op, name, next); err != nil {
		return err
	}
	c.values[name] = next
	return nil
}

func (c *Container) setWithHook(op, name string, value any, setter Setter) error {
	prev, had := c.values[name]

	if err := setter(c, value); err != nil {
		c.restore(name, prev, had)
		return err
	}

	stored, ok := c.values[name]
	if !ok {
		c.values[name] = nil
	}

	if err := c.validate(op, name, stored); err != nil {
		c.restore(name, prev, had)
		c.logger.Debug("rejected value from custom setter",
			"property", name,
			"error", err)
		return err
	}
	return nil
}

// AddPropertyValue appends value to the list stored under name, creating the
// list if needed. The resulting list is validated like Set.
func (c *Container) AddPropertyValue(name string, value any) error {
	const op = "AddPropertyValue"

	if !c.IsValidProperty(name) {
		return NotValid(op, name)
	}

	next := appendValue(c.values[name], value)
	if err := c.validate(op, name, next); err != nil {
		return err
	}
	c.values[name] = next
	return nil
}

// Has reports whether name has a stored value. Defaults do not count.
func (c *Container) Has(name string) bool {
	_, ok := c.values[name]
	return ok
}

// Unset removes the stored value of name. The schema and default are kept.
func (c *Container) Unset(name string) {
	delete(c.values, name)
}

// Assign stores value under name without hooks or validation. It exists for
// custom setters; everyone else should call Set.
func (c *Container) Assign(name string, value any) {
	c.values[name] = value
}

// Raw returns the stored value of name without hooks or defaults.
func (c *Container) Raw(name string) (any, bool) {
	v, ok := c.values[name]
	return v, ok
}

// CheckType validates value against the constraint of name.
func (c *Container) CheckType(name string, value any) error {
	return c.checkType("CheckType", name, value)
}

func (c *Container) checkType(op, name string, value any) error {
	cons := c.constraintFor(name)
	if cons.Allows(value) {
		return nil
	}
	return typeMismatch(op, name, cons, value)
}

func typeMismatch(op, name string, cons constraint.Constraint, value any) *Error {
	kind, typeName := constraint.Classify(value)
	actual := kind.String()
	if kind == constraint.KindObject {
		actual = typeName
	}
	return &Error{
		Op:       op,
		Kind:     KindValueNotValid,
		Property: name,
		Expected: cons.Strings(),
		Actual:   actual,
	}
}

func (c *Container) validate(op, name string, value any) error {
	if err := c.checkType(op, name, value); err != nil {
		return err
	}
	for _, v := range c.validators[name] {
		if err := v.Validate(value); err != nil {
			return ValueNotValid(op, name, err)
		}
	}
	return nil
}

// accumulates reports whether a write of value to name appends rather than
// replaces. A nil write to a nullable list resets it instead of appending nil.
func (c *Container) accumulates(name string, value any) bool {
	cons := c.constraintFor(name)
	if !cons.Has(constraint.KindArray) {
		return false
	}
	if value == nil && cons.Has(constraint.KindNull) {
		return false
	}
	kind, _ := constraint.Classify(value)
	return kind != constraint.KindArray
}

func (c *Container) restore(name string, prev any, had bool) {
	if had {
		c.values[name] = prev
		return
	}
	delete(c.values, name)
}

// appendValue returns a new list holding the elements of existing followed by
// value. existing is never modified. Typed slices keep their type when value
// fits the element type; anything that is not a slice starts a fresh list.
func appendValue(existing, value any) any {
	if list, ok := existing.([]any); ok {
		out := make([]any, len(list), len(list)+1)
		copy(out, list)
		return append(out, value)
	}

	if existing == nil {
		return []any{value}
	}

	rv := reflect.ValueOf(existing)
	if rv.Kind() == reflect.Map {
		return appendKeyed(rv, value)
	}
	if rv.Kind() != reflect.Slice {
		return []any{value}
	}

	if value != nil {
		vv := reflect.ValueOf(value)
		if vv.Type().AssignableTo(rv.Type().Elem()) {
			out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len()+1)
			reflect.Copy(out, rv)
			return reflect.Append(out, vv).Interface()
		}
	}

	out := make([]any, 0, rv.Len()+1)
	for i := range rv.Len() {
		out = append(out, rv.Index(i).Interface())
	}
	return append(out, value)
}

// appendKeyed adds value to a keyed list under the next free integer key,
// one past the largest non-negative integer key (0 when there is none).
// The map keeps its type when both the key and value fit, otherwise the
// entries are copied into a map[string]any.
func appendKeyed(rv reflect.Value, value any) any {
	next := 0
	iter := rv.MapRange()
	for iter.Next() {
		if n, ok := integerKey(iter.Key()); ok && n >= next {
			next = n + 1
		}
	}

	keyType, elemType := rv.Type().Key(), rv.Type().Elem()
	vv := reflect.ValueOf(value)
	if value == nil {
		vv = zeroNilable(elemType)
	} else if !vv.Type().AssignableTo(elemType) {
		vv = reflect.Value{}
	}

	var kv reflect.Value
	key := reflect.New(keyType).Elem()
	switch keyType.Kind() {
	case reflect.String:
		key.SetString(strconv.Itoa(next))
		kv = key
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if !key.OverflowInt(int64(next)) {
			key.SetInt(int64(next))
			kv = key
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if !key.OverflowUint(uint64(next)) {
			key.SetUint(uint64(next))
			kv = key
		}
	}

	if vv.IsValid() && kv.IsValid() {
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len()+1)
		iter = rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), iter.Value())
		}
		out.SetMapIndex(kv, vv)
		return out.Interface()
	}

	out := make(map[string]any, rv.Len()+1)
	iter = rv.MapRange()
	for iter.Next() {
		out[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
	}
	out[strconv.Itoa(next)] = value
	return out
}

func integerKey(k reflect.Value) (int, bool) {
	switch k.Kind() {
	case reflect.String:
		n, err := strconv.Atoi(k.String())
		if err != nil || strconv.Itoa(n) != k.String() || n < 0 {
			return 0, false
		}
		return n, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if k.Int() < 0 {
			return 0, false
		}
		return int(k.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(k.Uint()), true
	}
	return 0, false
}

func zeroNilable(t reflect.Type) reflect.Value {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice:
		return reflect.Zero(t)
	}
	return reflect.Value{}
}
