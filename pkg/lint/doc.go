// Package lint provides the rule registry and lint-resolution engine.
//
// # Rules
//
// A Rule is a named, stateless check against a single model. Its canonical
// name is its lowercased Name, or its lowercased type name when the rule
// does not provide one:
//
//	type NoSelectStar struct{}                       // named "noselectstar"
//	var owner = lint.RuleDef{Name: "NoMissingOwner"} // named "nomissingowner"
//
// Names are the sole notion of identity. Registering a second rule under an
// existing name replaces the first.
//
// # Rule Sets
//
// A RuleSet is an ordered set of rules keyed by canonical name. Union,
// Intersection and Difference return new sets and never mutate their
// operands. For names present on both sides, the right-hand rule wins:
//
//	registry := builtin.Union(user) // user rules override built-ins
//
// # Linter
//
// A Linter resolves a Config against a registry into a fatal tier and a
// warning tier, rejecting unknown names and names configured in both tiers.
// It then checks models, honouring each model's IgnoredRules:
//
//	l, err := lint.New(registry, cfg, lint.WithDefaults(rules.DefaultWarn, rules.DefaultExclude))
//	if err != nil {
//		return err // errors.Is(err, lint.ErrConfig)
//	}
//	if err := l.Lint(model); err != nil {
//		return err // errors.Is(err, lint.ErrLint)
//	}
//
// Warnings are rendered into one message per model and handed to the
// configured Reporter. A Linter is immutable once built and safe for
// concurrent use.
package lint
