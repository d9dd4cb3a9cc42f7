package userrules

import (
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/leapstack-labs/leaplint/pkg/core"
	"github.com/leapstack-labs/leaplint/pkg/lint"
)

// CustomRule is a CEL rule declared in configuration.
type CustomRule struct {
	Name    string `koanf:"name" yaml:"name" json:"name"`
	Summary string `koanf:"summary" yaml:"summary" json:"summary"`
	Expr    string `koanf:"expr" yaml:"expr" json:"expr"`
}

// CompileError reports a CEL rule that cannot be used.
type CompileError struct {
	Rule string
	Err  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("custom rule %q: %v", e.Rule, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Is matches lint.ErrConfig.
func (e *CompileError) Is(target error) bool { return target == lint.ErrConfig }

// CompileCEL compiles configured CEL rules. Every expression must yield a
// bool or a string. All failing rules are reported together.
func CompileCEL(defs []CustomRule, source string) ([]lint.Rule, error) {
	if len(defs) == 0 {
		return nil, nil
	}

	env, err := cel.NewEnv(
		cel.Variable("model", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	rules := make([]lint.Rule, 0, len(defs))
	var errs []error
	for _, def := range defs {
		r, err := compileOne(env, def, source)
		if err != nil {
			errs = append(errs, &CompileError{Rule: def.Name, Err: err})
			continue
		}
		rules = append(rules, r)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return rules, nil
}

func compileOne(env *cel.Env, def CustomRule, source string) (*celRule, error) {
	if n := lint.Canonicalize(def.Name); n == "" || n == lint.AllSentinel {
		return nil, fmt.Errorf("invalid name %q", def.Name)
	}
	if def.Expr == "" {
		return nil, errors.New("expr is required")
	}

	ast, issues := env.Compile(def.Expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile: %w", issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.StringType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expr must yield bool or string, got %s", out)
	}

	prg, err := env.Program(ast,
		cel.InterruptCheckFrequency(100),
		cel.CostLimit(10000), // Hard limit on computational complexity
	)
	if err != nil {
		return nil, fmt.Errorf("program: %w", err)
	}

	return &celRule{def: def, source: source, prg: prg}, nil
}

// celRule evaluates a compiled CEL program. Programs are safe for
// concurrent evaluation.
type celRule struct {
	def    CustomRule
	source string
	prg    cel.Program
}

func (r *celRule) Name() string    { return r.def.Name }
func (r *celRule) Summary() string { return r.def.Summary }
func (r *celRule) Source() string  { return r.source }

// Check evaluates the expression. Evaluation errors become violations.
func (r *celRule) Check(m *core.Model) *lint.Violation {
	out, _, err := r.prg.Eval(map[string]any{"model": m.Attributes()})
	if err != nil {
		return lint.Violate(fmt.Sprintf("rule expression failed: %v", err))
	}
	switch val := out.Value().(type) {
	case bool:
		if !val {
			return nil
		}
		return &lint.Violation{}
	case string:
		if val == "" {
			return nil
		}
		return lint.Violate(val)
	default:
		return lint.Violate(fmt.Sprintf("rule expression returned %T, want bool or string", val))
	}
}
