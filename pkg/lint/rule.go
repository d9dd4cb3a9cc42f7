package lint

import (
	"reflect"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/leaplint/pkg/core"
)

// Rule is the interface all lint rules implement.
//
// Check must be a pure function of the model: it returns nil when the model
// passes and a violation otherwise. Failures inside a check are reported as
// violations, never as panics.
type Rule interface {
	// Summary returns a human-readable description of what the rule checks
	Summary() string

	// Check evaluates the rule against one model
	Check(m *core.Model) *Violation
}

// Namer is implemented by rules that choose their own name instead of
// deriving it from their type.
type Namer interface {
	Name() string
}

// Sourced is implemented by rules that know where they were defined.
type Sourced interface {
	Source() string
}

// CheckFunc evaluates a model. See Rule.Check.
type CheckFunc func(m *core.Model) *Violation

// RuleDef is a data-driven rule definition.
// Rules are stateless - all context comes via the model and is carried out
// in the returned violation.
type RuleDef struct {
	Name        string    // Rule name, e.g. "NoMissingOwner"; canonicalized on registration
	Description string    // Human-readable summary
	Source      string    // Where the rule was defined, e.g. a file path
	Check       CheckFunc // The check function
}

// definedRule wraps a RuleDef to implement Rule.
type definedRule struct {
	def RuleDef
}

// Define wraps a RuleDef as a Rule.
func Define(def RuleDef) Rule {
	return &definedRule{def: def}
}

func (r *definedRule) Name() string    { return r.def.Name }
func (r *definedRule) Summary() string { return r.def.Description }
func (r *definedRule) Source() string  { return r.def.Source }

func (r *definedRule) Check(m *core.Model) *Violation {
	if r.def.Check == nil {
		return nil
	}
	return r.def.Check(m)
}

// Unwrap returns the underlying RuleDef.
func (r *definedRule) Unwrap() RuleDef {
	return r.def
}

// CanonicalName returns the identity of a rule: its lowercased Name, or its
// lowercased type name when it has none.
func CanonicalName(r Rule) string {
	if n, ok := r.(Namer); ok {
		if name := Canonicalize(n.Name()); name != "" {
			return name
		}
	}
	t := reflect.TypeOf(r)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return Canonicalize(t.Name())
}

// Canonicalize normalizes a user-supplied rule name.
func Canonicalize(name string) string {
	// A Caser keeps state and is not safe for concurrent use.
	return cases.Lower(language.Und).String(strings.TrimSpace(name))
}

// SourceOf reports where a rule was defined, "builtin" unless it says otherwise.
func SourceOf(r Rule) string {
	if s, ok := r.(Sourced); ok && s.Source() != "" {
		return s.Source()
	}
	return SourceBuiltin
}

// SourceBuiltin marks rules shipped with leaplint.
const SourceBuiltin = "builtin"

// GetRuleInfo extracts metadata from a Rule for documentation/tooling.
func GetRuleInfo(r Rule, severity core.Severity) core.RuleInfo {
	return core.RuleInfo{
		Name:     CanonicalName(r),
		Summary:  r.Summary(),
		Source:   SourceOf(r),
		Severity: severity,
	}
}
