package userrules

import (
	"log/slog"

	"github.com/leapstack-labs/leaplint/pkg/lint"
)

// Options locate the project's user rules.
type Options struct {
	// Dir holds .star rule files
	Dir string
	// Custom are CEL rules from configuration
	Custom []CustomRule
	// ConfigSource names where Custom came from, e.g. the config file
	ConfigSource string
	Logger       *slog.Logger
}

// Load returns the user rules as a set: Starlark rules first, then CEL
// rules, later definitions replacing earlier ones of the same name.
func Load(opts Options) (*lint.RuleSet, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	star, err := NewLoader(opts.Dir, logger).Load()
	if err != nil {
		return nil, err
	}
	source := opts.ConfigSource
	if source == "" {
		source = "config"
	}
	custom, err := CompileCEL(opts.Custom, source)
	if err != nil {
		return nil, err
	}

	return lint.NewRuleSet(append(star, custom...)...)
}

// Registry builds the process-wide registry: builtin rules overridden by
// user rules of the same name.
func Registry(builtin *lint.RuleSet, opts Options) (*lint.RuleSet, error) {
	user, err := Load(opts)
	if err != nil {
		return nil, err
	}
	return builtin.Union(user), nil
}
