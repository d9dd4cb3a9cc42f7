package lint

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leaplint/pkg/core"
)

// Linter checks models against resolved fatal and warning tiers.
// It is immutable after New and safe for concurrent use.
type Linter struct {
	registry *RuleSet
	rules    *RuleSet
	warn     *RuleSet
	excluded *RuleSet
	reporter Reporter
	logger   *slog.Logger
}

// Option configures a Linter.
type Option func(*options)

type options struct {
	defaultWarn    []string
	defaultExclude []string
	reporter       Reporter
	logger         *slog.Logger
}

// WithDefaults sets the rules that land on the warning tier when warn_rules
// is omitted, and the rules excluded when exclude_rules is omitted. Names are
// ignored when the registry does not hold them or the configuration lists
// them explicitly in rules or warn_rules.
func WithDefaults(warn, exclude []string) Option {
	return func(o *options) {
		o.defaultWarn = warn
		o.defaultExclude = exclude
	}
}

// WithReporter sets the sink for warning messages.
func WithReporter(r Reporter) Option {
	return func(o *options) {
		if r != nil {
			o.reporter = r
		}
	}
}

// WithLogger sets the logger for resolution details.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// New resolves cfg against registry.
//
// Resolution runs in this order:
//   - exclude is gathered from the registry (or the default exclusions)
//   - included is the registry minus exclude
//   - the warning tier is gathered from included (or the default warnings)
//   - the fatal tier is included minus warnings when rules is omitted or
//     ALL; otherwise it is gathered from included
//
// An explicit ALL for rules therefore never conflicts with warn_rules; only
// an explicit list of names can. Any unknown name or overlap between the
// tiers fails with an error matching ErrConfig, and no Linter is returned.
func New(registry *RuleSet, cfg Config, opts ...Option) (*Linter, error) {
	o := options{
		reporter: DiscardReporter,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if registry == nil {
		registry = &RuleSet{}
	}

	explicitRules := listed(cfg.Rules)
	explicitWarn := listed(cfg.WarnRules)

	var exclude *RuleSet
	if cfg.ExcludeRules.IsSet() {
		var err error
		if exclude, err = Gather(registry, cfg.ExcludeRules); err != nil {
			return nil, fmt.Errorf("exclude_rules: %w", err)
		}
	} else {
		exclude = pick(registry, o.defaultExclude, explicitRules, explicitWarn)
	}
	included := registry.Difference(exclude)

	var warn *RuleSet
	if cfg.WarnRules.IsSet() {
		var err error
		if warn, err = Gather(included, cfg.WarnRules); err != nil {
			return nil, fmt.Errorf("warn_rules: %w", err)
		}
	} else {
		warn = pick(included, o.defaultWarn, explicitRules)
	}

	var rules *RuleSet
	if !cfg.Rules.IsSet() || cfg.Rules.IsAll() {
		rules = included.Difference(warn)
	} else {
		var err error
		if rules, err = Gather(included, cfg.Rules); err != nil {
			return nil, fmt.Errorf("rules: %w", err)
		}
	}

	if overlap := rules.Intersection(warn); overlap.Len() > 0 {
		return nil, &ConflictError{Names: overlap.Names()}
	}

	o.logger.Debug("linter resolved",
		slog.Int("registry", registry.Len()),
		slog.Int("rules", rules.Len()),
		slog.Int("warn_rules", warn.Len()),
		slog.Int("excluded", exclude.Len()))

	return &Linter{
		registry: registry,
		rules:    rules,
		warn:     warn,
		excluded: exclude,
		reporter: o.reporter,
		logger:   o.logger,
	}, nil
}

// listed returns the names of an explicit list, nil for omitted or ALL.
func listed(l RuleList) map[string]bool {
	if !l.IsSet() || l.IsAll() {
		return nil
	}
	out := make(map[string]bool, len(l.names))
	for _, n := range l.names {
		out[n] = true
	}
	return out
}

// pick selects the named rules present in from, skipping any name in skip.
func pick(from *RuleSet, names []string, skip ...map[string]bool) *RuleSet {
	out := newSized(len(names))
outer:
	for _, n := range names {
		name := Canonicalize(n)
		for _, s := range skip {
			if s[name] {
				continue outer
			}
		}
		if r, ok := from.lookup(name); ok {
			out.put(name, r)
		}
	}
	return out
}

// Registry returns the rules the linter validates names against.
func (l *Linter) Registry() *RuleSet { return l.registry }

// Rules returns the fatal tier.
func (l *Linter) Rules() *RuleSet { return l.rules }

// WarnRules returns the warning tier.
func (l *Linter) WarnRules() *RuleSet { return l.warn }

// Excluded returns the rules removed before tiers were resolved.
func (l *Linter) Excluded() *RuleSet { return l.excluded }

// Severity returns the tier a rule resolved to.
func (l *Linter) Severity(name string) core.Severity {
	switch {
	case l.rules.Contains(name):
		return core.SeverityError
	case l.warn.Contains(name):
		return core.SeverityWarning
	default:
		return core.SeverityOff
	}
}

// ResolveOverrides gathers the rules a model opts out of. An unknown name
// fails with an error matching ErrConfig.
func (l *Linter) ResolveOverrides(m *core.Model) (*RuleSet, error) {
	ignored, err := Gather(l.registry, Names(m.IgnoredRules...))
	if err != nil {
		return nil, fmt.Errorf("ignored_rules for %s: %w", m.DisplayPath(), err)
	}
	return ignored, nil
}

// Result is the outcome of checking one model.
type Result struct {
	// Model identifies the checked model in messages
	Model string
	// Errors are violations of fatal-tier rules
	Errors []Violation
	// Warnings are violations of warning-tier rules
	Warnings []Violation
}

// HasErrors reports whether any fatal rule was violated.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// WarningMessage renders the warnings as one message, empty if there are none.
func (r *Result) WarningMessage() string {
	if len(r.Warnings) == 0 {
		return ""
	}
	return formatViolations("Linter warnings for "+r.Model, r.Warnings)
}

// Err returns a *LintError for the fatal violations, or nil.
func (r *Result) Err() error {
	if !r.HasErrors() {
		return nil
	}
	return &LintError{Model: r.Model, Violations: r.Errors}
}

// Check evaluates a model without reporting anything. The returned error is
// only set when the model's overrides cannot be resolved.
func (l *Linter) Check(m *core.Model) (*Result, error) {
	ignored, err := l.ResolveOverrides(m)
	if err != nil {
		return nil, err
	}
	if ignored.Len() > 0 {
		l.logger.Debug("ignoring rules",
			slog.String("model", m.DisplayPath()),
			slog.Any("rules", ignored.Names()))
	}

	return &Result{
		Model:    m.DisplayPath(),
		Errors:   l.rules.Difference(ignored).Check(m),
		Warnings: l.warn.Difference(ignored).Check(m),
	}, nil
}

// Report hands the warnings of a result to the reporter.
func (l *Linter) Report(r *Result) {
	if msg := r.WarningMessage(); msg != "" {
		l.reporter.Report(msg)
	}
}

// Lint checks a model, reports its warnings and returns a *LintError if any
// fatal rule was violated.
func (l *Linter) Lint(m *core.Model) error {
	r, err := l.Check(m)
	if err != nil {
		return err
	}
	l.Report(r)
	return r.Err()
}

// IsViolation reports whether err carries fatal violations rather than a
// configuration problem.
func IsViolation(err error) bool {
	var le *LintError
	return errors.As(err, &le)
}
