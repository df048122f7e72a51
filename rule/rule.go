// Package rule compiles CEL expressions into property validators.
//
// A rule sees the candidate value as the variable "value" and must evaluate to
// a boolean; false rejects the value:
//
//	r, err := rule.Compile(`size(value) >= 3 && size(value) <= 64`)
//	if err != nil {
//		return err
//	}
//	c.AddValidator("name", r)
//
// Nested containers are rendered with NormalizeData before evaluation, so a
// rule can inspect their fields: `value.country == "NL"`.
package rule

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/zero-day-ai/propkit/constraint"
	"github.com/zero-day-ai/propkit/property"
)

// Variable is the name a rule uses to refer to the value under test.
const Variable = "value"

// ErrViolated is returned when a rule evaluates to false.
var ErrViolated = errors.New("rule violated")

var environment = sync.OnceValues(func() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable(Variable, cel.DynType),
		cel.CrossTypeNumericComparisons(true),
	)
})

// Rule is a compiled CEL expression. It implements property.Validator and is
// safe for concurrent use.
type Rule struct {
	expr    string
	program cel.Program
}

// Compile parses and checks expr. Expressions whose result type is known and
// is not bool are rejected.
func Compile(expr string) (*Rule, error) {
	env, err := environment()
	if err != nil {
		return nil, fmt.Errorf("rule: create environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("rule: compile %q: %w", expr, issues.Err())
	}

	out := ast.OutputType()
	if !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("rule: %q must evaluate to bool, not %s", expr, out)
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("rule: program %q: %w", expr, err)
	}

	return &Rule{expr: expr, program: program}, nil
}

// MustCompile is like Compile but panics if the expression is invalid.
func MustCompile(expr string) *Rule {
	r, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return r
}

// String returns the source expression.
func (r *Rule) String() string {
	return r.expr
}

// Validate evaluates the rule against value.
func (r *Rule) Validate(value any) error {
	if n, ok := value.(property.Normalizer); ok && !isNull(value) {
		data, err := n.NormalizeData()
		if err != nil {
			return err
		}
		value = data
	}

	out, _, err := r.program.Eval(map[string]any{Variable: value})
	if err != nil {
		return fmt.Errorf("rule: evaluate %q: %w", r.expr, err)
	}

	ok, isBool := out.Value().(bool)
	if !isBool {
		return fmt.Errorf("rule: %q evaluated to %s, not bool", r.expr, out.Type())
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrViolated, r.expr)
	}
	return nil
}

func isNull(value any) bool {
	kind, _ := constraint.Classify(value)
	return kind == constraint.KindNull
}
