package constraint

import (
	"errors"
	"fmt"
	"strings"
)

// Separator joins the tags of a union spec such as "integer|null".
const Separator = "|"

// ErrUnknownTag is returned when a spec names a tag that is neither a
// primitive kind nor an exact type name.
var ErrUnknownTag = errors.New("unknown constraint tag")

// Kind is the category a Tag accepts.
type Kind int

const (
	KindString Kind = iota + 1
	KindInteger
	KindNumber
	KindBoolean
	KindNull
	KindArray
	KindObject
	// KindType matches object values whose fully-qualified type name equals Tag.TypeName.
	KindType
)

var kindNames = map[Kind]string{
	KindString:  "string",
	KindInteger: "integer",
	KindNumber:  "number",
	KindBoolean: "boolean",
	KindNull:    "null",
	KindArray:   "array",
	KindObject:  "object",
	KindType:    "type",
}

// keywords maps every accepted spelling of a primitive tag to its kind.
var keywords = map[string]Kind{
	"string":  KindString,
	"integer": KindInteger,
	"int":     KindInteger,
	"number":  KindNumber,
	"boolean": KindBoolean,
	"bool":    KindBoolean,
	"null":    KindNull,
	"array":   KindArray,
	"object":  KindObject,
}

// String returns the canonical tag name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Tag is a single accepted type in a constraint.
type Tag struct {
	Kind Kind

	// TypeName is set only for KindType tags.
	TypeName string
}

// String renders the tag the way it is written in a spec.
func (t Tag) String() string {
	if t.Kind == KindType {
		return t.TypeName
	}
	return t.Kind.String()
}

func (t Tag) validate() error {
	if t.Kind == KindType {
		if t.TypeName == "" {
			return fmt.Errorf("%w: exact type tag without a type name", ErrUnknownTag)
		}
		return nil
	}
	if _, ok := kindNames[t.Kind]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTag, t.Kind)
	}
	return nil
}

// Constraint is an ordered union of tags. An empty constraint accepts any value.
type Constraint []Tag

// ParseTag parses one segment of a spec.
func ParseTag(s string) (Tag, error) {
	s = strings.TrimSpace(s)
	if kind, ok := keywords[s]; ok {
		return Tag{Kind: kind}, nil
	}
	if isTypeName(s) {
		return Tag{Kind: KindType, TypeName: s}, nil
	}
	return Tag{}, fmt.Errorf("%w: %q", ErrUnknownTag, s)
}

// isTypeName reports whether s looks like a package-qualified Go type name,
// optionally behind a pointer star.
func isTypeName(s string) bool {
	name := strings.TrimPrefix(s, "*")
	if name == "" || strings.ContainsAny(name, " \t") {
		return false
	}
	dot := strings.LastIndex(name, ".")
	return dot > 0 && dot < len(name)-1
}

// Parse normalizes a constraint spec. Accepted forms:
//
//	nil, ""                 unconstrained
//	"integer|null"          union string, split on Separator in order
//	[]string{"integer"}     one tag per element, order preserved
//	Tag, []Tag, Constraint  returned as-is after validation
//
// Every tag is checked here so a misspelled spec fails when the property is
// defined instead of silently rejecting every value later.
func Parse(spec any) (Constraint, error) {
	switch s := spec.(type) {
	case nil:
		return nil, nil
	case Constraint:
		return s, validateAll(s)
	case []Tag:
		return Constraint(s), validateAll(s)
	case Tag:
		return Constraint{s}, s.validate()
	case string:
		if s == "" {
			return nil, nil
		}
		return parseAll(strings.Split(s, Separator))
	case []string:
		return parseAll(s)
	default:
		return nil, fmt.Errorf("unsupported constraint spec %T", spec)
	}
}

// MustParse is like Parse but panics on error. It is meant for
// package-level schema declarations.
func MustParse(spec any) Constraint {
	c, err := Parse(spec)
	if err != nil {
		panic(err)
	}
	return c
}

func parseAll(segments []string) (Constraint, error) {
	if len(segments) == 0 {
		return nil, nil
	}
	out := make(Constraint, 0, len(segments))
	for _, seg := range segments {
		tag, err := ParseTag(seg)
		if err != nil {
			return nil, err
		}
		out = append(out, tag)
	}
	return out, nil
}

func validateAll(tags []Tag) error {
	for _, t := range tags {
		if err := t.validate(); err != nil {
			return err
		}
	}
	return nil
}

// Has reports whether the constraint contains a tag of the given kind.
func (c Constraint) Has(kind Kind) bool {
	for _, t := range c {
		if t.Kind == kind {
			return true
		}
	}
	return false
}

// Strings returns the tags in spec form.
func (c Constraint) Strings() []string {
	out := make([]string, len(c))
	for i, t := range c {
		out[i] = t.String()
	}
	return out
}

// String joins the tags with Separator.
func (c Constraint) String() string {
	return strings.Join(c.Strings(), Separator)
}

// Allows reports whether value satisfies at least one tag.
func (c Constraint) Allows(value any) bool {
	if len(c) == 0 {
		return true
	}
	kind, typeName := Classify(value)
	for _, t := range c {
		if t.matches(kind, typeName) {
			return true
		}
	}
	return false
}

// matches applies the per-tag rules. Object values match only an exact type
// tag; the generic object tag is accepted in specs but matches nothing.
func (t Tag) matches(kind Kind, typeName string) bool {
	switch t.Kind {
	case KindType:
		return kind == KindObject && typeName == t.TypeName
	case KindNumber:
		return kind == KindNumber || kind == KindInteger
	case KindObject:
		return false
	default:
		return t.Kind == kind
	}
}
