package schema

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zero-day-ai/propkit/constraint"
	"github.com/zero-day-ai/propkit/property"
	"github.com/zero-day-ai/propkit/rule"
)

// Document is a schema document, usually loaded from schema.yaml.
type Document struct {
	Name        string        `yaml:"name,omitempty" json:"name,omitempty"`
	Description string        `yaml:"description,omitempty" json:"description,omitempty"`
	Properties  []PropertyDoc `yaml:"properties" json:"properties"`
}

// PropertyDoc declares one property.
type PropertyDoc struct {
	Name        string   `yaml:"name" json:"name"`
	Type        TypeSpec `yaml:"type,omitempty" json:"type,omitempty"`
	Default     any      `yaml:"default,omitempty" json:"default,omitempty"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`

	// Rule is a CEL expression over the variable "value".
	Rule string `yaml:"rule,omitempty" json:"rule,omitempty"`
}

// TypeSpec is a constraint in tag form. In a document it is written either
// as a single string, with "|" separating alternatives, or as a list.
type TypeSpec []string

// UnmarshalYAML accepts a scalar ("integer|null") or a sequence.
func (t *TypeSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*t = nil
		for _, part := range strings.Split(s, constraint.Separator) {
			if part = strings.TrimSpace(part); part != "" {
				*t = append(*t, part)
			}
		}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*t = list
		return nil
	}
	return fmt.Errorf("line %d: type must be a string or a list of strings", node.Line)
}

// MarshalYAML writes the scalar form.
func (t TypeSpec) MarshalYAML() (any, error) {
	return t.String(), nil
}

// String returns the "|" separated form.
func (t TypeSpec) String() string {
	return strings.Join(t, constraint.Separator)
}

// Constraint parses the tags.
func (t TypeSpec) Constraint() (constraint.Constraint, error) {
	return constraint.Parse([]string(t))
}

// Load reads and validates a schema document from path. If path is a
// directory, it looks for schema.yaml, schema.yml or schema.json in it.
func Load(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	docPath := path
	if info.IsDir() {
		docPath = ""
		for _, name := range []string{"schema.yaml", "schema.yml", "schema.json"} {
			candidate := filepath.Join(path, name)
			if _, err := os.Stat(candidate); err == nil {
				docPath = candidate
				break
			}
		}
		if docPath == "" {
			return nil, fmt.Errorf("no schema.yaml, schema.yml or schema.json found in %s", path)
		}
	}

	data, err := os.ReadFile(docPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", docPath, err)
	}
	return doc, nil
}

// Parse decodes and validates a schema document. JSON is accepted as well,
// being a subset of YAML.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate reports every problem in the document: empty or duplicate names,
// unknown type tags, defaults that violate their type and rules that do not
// compile.
func (d *Document) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(d.Properties))

	for i, p := range d.Properties {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("properties[%d]: name is required", i))
			continue
		}
		if seen[p.Name] {
			errs = append(errs, fmt.Errorf("property %q: declared more than once", p.Name))
			continue
		}
		seen[p.Name] = true

		cons, err := p.Type.Constraint()
		if err != nil {
			errs = append(errs, fmt.Errorf("property %q: %w", p.Name, err))
			continue
		}
		if p.Default != nil && !cons.Allows(p.Default) {
			errs = append(errs, fmt.Errorf("property %q: default %v does not satisfy %s", p.Name, p.Default, cons))
		}
		if p.Rule != "" {
			if _, err := rule.Compile(p.Rule); err != nil {
				errs = append(errs, fmt.Errorf("property %q: %w", p.Name, err))
			}
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid schema %s: %w", d.label(), err)
	}
	return nil
}

func (d *Document) label() string {
	if d.Name == "" {
		return "document"
	}
	return fmt.Sprintf("%q", d.Name)
}

// Definitions converts the document to property definitions in declaration
// order.
func (d *Document) Definitions() ([]property.Definition, error) {
	defs := make([]property.Definition, 0, len(d.Properties))
	for _, p := range d.Properties {
		cons, err := p.Type.Constraint()
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", p.Name, err)
		}
		defs = append(defs, property.Definition{
			Name:       p.Name,
			Constraint: cons,
			Default:    p.Default,
		})
	}
	return defs, nil
}

// Apply declares every property of the document on c and attaches the
// compiled rules as validators.
func (d *Document) Apply(c *property.Container) error {
	defs, err := d.Definitions()
	if err != nil {
		return err
	}
	if err := c.Define(defs...); err != nil {
		return err
	}

	for _, p := range d.Properties {
		if p.Rule == "" {
			continue
		}
		r, err := rule.Compile(p.Rule)
		if err != nil {
			return fmt.Errorf("property %q: %w", p.Name, err)
		}
		c.AddValidator(p.Name, r)
	}
	return nil
}

// New creates a container with the document applied.
func (d *Document) New(opts ...property.Option) (*property.Container, error) {
	c := property.New(opts...)
	if err := d.Apply(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Describe builds a document from the properties declared on c. Rules are
// not recoverable from a container and are left empty.
func Describe(name string, c *property.Container) *Document {
	doc := &Document{Name: name}
	for _, def := range c.ListProperties() {
		doc.Properties = append(doc.Properties, PropertyDoc{
			Name:    def.Name,
			Type:    TypeSpec(def.Constraint.Strings()),
			Default: def.Default,
		})
	}
	return doc
}

// Marshal encodes the document as YAML.
func (d *Document) Marshal() ([]byte, error) {
	return yaml.Marshal(d)
}
