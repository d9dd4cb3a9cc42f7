package rules

import "github.com/leapstack-labs/leaplint/pkg/lint"

// Builtin returns a new set holding every built-in rule.
func Builtin() *lint.RuleSet {
	return lint.MustRuleSet(
		NoSelectStar{},
		InvalidSelectStarExpansion{},
		AmbiguousOrInvalidColumn{},
		NoMissingOwner{},
		NoMissingDescription{},
	)
}

// DefaultWarn lists built-ins that warn rather than fail when warn_rules is
// omitted. Both depend on schemas the project may not declare.
var DefaultWarn = []string{
	"invalidselectstarexpansion",
	"ambiguousorinvalidcolumn",
}

// DefaultExclude lists built-ins that are off when exclude_rules is omitted.
var DefaultExclude = []string{
	"nomissingdescription",
}

// Defaults is the option that applies DefaultWarn and DefaultExclude.
func Defaults() lint.Option {
	return lint.WithDefaults(DefaultWarn, DefaultExclude)
}
