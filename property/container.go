package property

import (
	"log/slog"
	"maps"
	"slices"
	"sort"

	"github.com/zero-day-ai/propkit/constraint"
)

// Getter replaces the default read behavior for one property.
type Getter func(c *Container) (any, error)

// Setter replaces the default write behavior for one property. It is
// responsible for storing the value, usually through Assign; the container
// type-checks whatever ends up stored once the setter returns.
type Setter func(c *Container, value any) error

// Validator is an additional per-property check run after the type check.
type Validator interface {
	Validate(value any) error
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(value any) error

// Validate calls f(value).
func (f ValidatorFunc) Validate(value any) error {
	return f(value)
}

// Definition declares one property.
type Definition struct {
	Name       string
	Constraint constraint.Constraint

	// Default is returned by Get while the property is unset. Nil means none.
	Default any
}

// Container is a schema-validated property store.
//
// A Container has a single owner: it performs no locking, and concurrent use
// from several goroutines must be synchronized by the caller.
//
// Domain types become nested containers by embedding *Container:
//
//	type Address struct{ *property.Container }
type Container struct {
	names      []string
	schema     map[string]constraint.Constraint
	defaults   map[string]any
	values     map[string]any
	getters    map[string]Getter
	setters    map[string]Setter
	validators map[string][]Validator
	logger     *slog.Logger
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used for debug output. If not provided,
// slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDefinitions declares properties at construction time. It panics if a
// definition is invalid, which suits schemas fixed at compile time; use
// Define to handle the error instead.
func WithDefinitions(defs ...Definition) Option {
	return func(c *Container) {
		if err := c.Define(defs...); err != nil {
			panic(err)
		}
	}
}

// New creates an empty container. A container without any defined property
// is unconstrained and accepts every name and value.
func New(opts ...Option) *Container {
	c := &Container{
		schema:     make(map[string]constraint.Constraint),
		defaults:   make(map[string]any),
		values:     make(map[string]any),
		getters:    make(map[string]Getter),
		setters:    make(map[string]Setter),
		validators: make(map[string][]Validator),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefineOption configures a single DefineProperty call.
type DefineOption func(*Definition)

// WithDefault sets the default returned while the property is unset.
// A nil default is ignored.
func WithDefault(value any) DefineOption {
	return func(d *Definition) {
		d.Default = value
	}
}

// DefineProperty registers or overwrites the constraint for name. spec is
// anything constraint.Parse accepts. Unknown tags and a default that violates
// the constraint are rejected here. Redefining without a default keeps the
// previous default.
func (c *Container) DefineProperty(name string, spec any, opts ...DefineOption) error {
	const op = "DefineProperty"

	if name == "" {
		return NotValid(op, name)
	}

	cons, err := constraint.Parse(spec)
	if err != nil {
		return &Error{Op: op, Kind: KindNotValid, Property: name, Err: err}
	}

	def := Definition{Name: name, Constraint: cons}
	for _, opt := range opts {
		opt(&def)
	}

	if def.Default != nil && !cons.Allows(def.Default) {
		return typeMismatch(op, name, cons, def.Default)
	}

	if _, exists := c.schema[name]; !exists {
		c.names = append(c.names, name)
	}
	c.schema[name] = cons
	if def.Default != nil {
		c.defaults[name] = def.Default
	}
	return nil
}

// Define registers each definition in order, stopping at the first error.
func (c *Container) Define(defs ...Definition) error {
	for _, d := range defs {
		if err := c.DefineProperty(d.Name, d.Constraint, WithDefault(d.Default)); err != nil {
			return err
		}
	}
	return nil
}

// IsValidProperty reports whether name may be read or written: true for
// every name on an unconstrained container.
func (c *Container) IsValidProperty(name string) bool {
	if len(c.schema) == 0 {
		return true
	}
	_, ok := c.schema[name]
	return ok
}

// ListProperties returns the declared properties in declaration order.
func (c *Container) ListProperties() []Definition {
	out := make([]Definition, 0, len(c.names))
	for _, name := range c.names {
		def := Definition{Name: name, Constraint: slices.Clone(c.schema[name])}
		if d, ok := c.defaults[name]; ok {
			def.Default = cloneValue(d)
		}
		out = append(out, def)
	}
	return out
}

// ListPropertyNames returns the declared names in declaration order.
func (c *Container) ListPropertyNames() []string {
	return slices.Clone(c.names)
}

// SetGetter installs a custom getter for name, replacing any previous one.
// A nil getter removes it.
func (c *Container) SetGetter(name string, g Getter) {
	if g == nil {
		delete(c.getters, name)
		return
	}
	c.getters[name] = g
}

// SetSetter installs a custom setter for name, replacing any previous one.
// A nil setter removes it.
func (c *Container) SetSetter(name string, s Setter) {
	if s == nil {
		delete(c.setters, name)
		return
	}
	c.setters[name] = s
}

// AddValidator appends a validator run on every write to name.
func (c *Container) AddValidator(name string, v Validator) {
	c.validators[name] = append(c.validators[name], v)
}

// Clone returns a container with the same schema, defaults and hooks and a
// deep copy of the stored values. Nested containers are shared.
func (c *Container) Clone() *Container {
	out := &Container{
		names:      slices.Clone(c.names),
		schema:     maps.Clone(c.schema),
		defaults:   maps.Clone(c.defaults),
		values:     make(map[string]any, len(c.values)),
		getters:    maps.Clone(c.getters),
		setters:    maps.Clone(c.setters),
		validators: make(map[string][]Validator, len(c.validators)),
		logger:     c.logger,
	}
	for name, v := range c.values {
		out.values[name] = cloneValue(v)
	}
	for name, vs := range c.validators {
		out.validators[name] = slices.Clone(vs)
	}
	return out
}

func (c *Container) constraintFor(name string) constraint.Constraint {
	return c.schema[name]
}

// propertyNames lists every name an operation should visit: the schema order
// on a declared container, or the sorted keys of values on an unconstrained one.
func (c *Container) propertyNames(values map[string]any) []string {
	if len(c.schema) > 0 {
		return c.names
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
