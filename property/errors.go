package property

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel errors for the four failure kinds. Every *Error matches exactly one
// of them with errors.Is.
var (
	// ErrPropertyNotValid indicates a name outside the schema, or an invalid
	// schema declaration.
	ErrPropertyNotValid = errors.New("property not valid")

	// ErrPropertyMissing indicates population required a property that the
	// input did not carry.
	ErrPropertyMissing = errors.New("property missing")

	// ErrPropertyValueNotValid indicates a value failed its constraint or a
	// validator, or could not be rendered to plain data.
	ErrPropertyValueNotValid = errors.New("property value not valid")

	// ErrNormalization indicates NormalizeData met an object that is neither a
	// container nor normalization-capable.
	ErrNormalization = errors.New("property value normalization failed")
)

// Kind categorizes an Error.
type Kind string

const (
	KindNotValid      Kind = "property_not_valid"
	KindMissing       Kind = "property_missing"
	KindValueNotValid Kind = "property_value_not_valid"
	KindNormalization Kind = "property_value_normalization"
)

func (k Kind) sentinel() error {
	switch k {
	case KindNotValid:
		return ErrPropertyNotValid
	case KindMissing:
		return ErrPropertyMissing
	case KindValueNotValid:
		return ErrPropertyValueNotValid
	case KindNormalization:
		return ErrNormalization
	}
	return nil
}

// Error is the structured error returned by every container operation.
//
// It supports errors.Is against the package sentinels and against another
// *Error with the same Kind (and Op, when the target sets one):
//
//	if errors.Is(err, property.ErrPropertyValueNotValid) { ... }
type Error struct {
	// Op is the operation that failed (e.g. "Set", "FromArray").
	Op string

	// Kind categorizes the failure.
	Kind Kind

	// Property is the single property involved, if any.
	Property string

	// Properties lists every property involved when there is more than one,
	// such as all unexpected keys rejected by FromArray.
	Properties []string

	// Expected is the constraint in tag form.
	Expected []string

	// Actual is the observed category, or the type name for objects.
	Actual string

	// Err is the underlying cause (optional).
	Err error
}

// Error formats as "property: Op: kind "name" (expected a|b, got c): cause".
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("property: ")
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if s := e.Kind.sentinel(); s != nil {
		b.WriteString(s.Error())
	} else {
		b.WriteString(string(e.Kind))
	}

	switch {
	case e.Property != "":
		b.WriteString(" ")
		b.WriteString(strconv.Quote(e.Property))
	case len(e.Properties) > 0:
		quoted := make([]string, len(e.Properties))
		for i, p := range e.Properties {
			quoted[i] = strconv.Quote(p)
		}
		b.WriteString(" ")
		b.WriteString(strings.Join(quoted, ", "))
	}

	if len(e.Expected) > 0 || e.Actual != "" {
		fmt.Fprintf(&b, " (expected %s, got %s)", strings.Join(e.Expected, "|"), e.Actual)
	}

	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for e.Kind, or a target *Error with the same Kind.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if s := e.Kind.sentinel(); s != nil && target == s {
		return true
	}
	if t, ok := target.(*Error); ok && t.Kind != "" && t.Kind == e.Kind {
		return t.Op == "" || t.Op == e.Op
	}
	return false
}

// Names returns every property the error refers to.
func (e *Error) Names() []string {
	if e.Property != "" {
		return []string{e.Property}
	}
	return e.Properties
}

// NotValid reports names outside the schema.
func NotValid(op string, names ...string) *Error {
	return withNames(&Error{Op: op, Kind: KindNotValid}, names)
}

// Missing reports required properties absent from population input.
func Missing(op string, names ...string) *Error {
	return withNames(&Error{Op: op, Kind: KindMissing}, names)
}

// ValueNotValid reports a value rejected for property name. Custom setters
// return it to reject input they cannot coerce.
func ValueNotValid(op, name string, cause error) *Error {
	return &Error{Op: op, Kind: KindValueNotValid, Property: name, Err: cause}
}

// NormalizationFailed reports an object NormalizeData cannot convert.
func NormalizationFailed(op, name, typeName string) *Error {
	return &Error{Op: op, Kind: KindNormalization, Property: name, Actual: typeName}
}

func withNames(e *Error, names []string) *Error {
	if len(names) == 1 {
		e.Property = names[0]
	} else {
		e.Properties = names
	}
	return e
}
