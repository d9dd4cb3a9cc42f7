package lint_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaplint/internal/testutil"
	"github.com/leapstack-labs/leaplint/pkg/core"
	"github.com/leapstack-labs/leaplint/pkg/lint"
	"github.com/leapstack-labs/leaplint/pkg/lint/rules"
)

// captureReporter records reported messages.
type captureReporter struct {
	mu       sync.Mutex
	messages []string
}

func (c *captureReporter) Report(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, message)
}

func (c *captureReporter) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.messages...)
}

func ownerStarRegistry(t *testing.T) *lint.RuleSet {
	t.Helper()
	return set(t, rules.NoMissingOwner{}, rules.NoSelectStar{})
}

// starModel has no owner and selects *.
func starModel() *core.Model {
	return &core.Model{
		Path:           "staging.orders",
		Name:           "orders",
		FilePath:       "models/staging/orders.sql",
		Kind:           core.ModelKindSQL,
		SQL:            "SELECT * FROM raw.orders",
		UsesSelectStar: true,
	}
}

func newLinter(t *testing.T, registry *lint.RuleSet, cfg lint.Config, opts ...lint.Option) *lint.Linter {
	t.Helper()
	opts = append([]lint.Option{lint.WithLogger(testutil.NewTestLogger(t))}, opts...)
	l, err := lint.New(registry, cfg, opts...)
	require.NoError(t, err)
	return l
}

func TestLinter_ExplicitRulesOnly(t *testing.T) {
	l := newLinter(t, ownerStarRegistry(t), lint.Config{Rules: lint.Names("noselectstar")})

	assert.Equal(t, []string{"noselectstar"}, l.Rules().Names())
	assert.Equal(t, 0, l.WarnRules().Len())

	err := l.Lint(starModel())
	require.Error(t, err)
	assert.True(t, errors.Is(err, lint.ErrLint))

	var lerr *lint.LintError
	require.ErrorAs(t, err, &lerr)
	require.Len(t, lerr.Violations, 1)
	assert.Equal(t, "noselectstar", lerr.Violations[0].Rule)
	assert.Equal(t,
		"Linter error for models/staging/orders.sql:\n"+
			" - noselectstar: Query should not contain SELECT * on its outer most projections, even if it can be expanded.",
		err.Error())
}

func TestLinter_WarnOnlyDoesNotFail(t *testing.T) {
	reporter := &captureReporter{}
	l := newLinter(t, ownerStarRegistry(t),
		lint.Config{WarnRules: lint.Names("nomissingowner")},
		lint.WithReporter(reporter))

	assert.Equal(t, []string{"noselectstar"}, l.Rules().Names())
	assert.Equal(t, []string{"nomissingowner"}, l.WarnRules().Names())

	m := starModel()
	m.UsesSelectStar = false
	require.NoError(t, l.Lint(m))

	assert.Equal(t, []string{
		"Linter warnings for models/staging/orders.sql:\n - nomissingowner: All models should have an owner.",
	}, reporter.all())
}

func TestLinter_ExcludedRuleNeverRuns(t *testing.T) {
	for _, cfg := range []lint.Config{
		{ExcludeRules: lint.Names("noselectstar")},
		{ExcludeRules: lint.Names("noselectstar"), WarnRules: lint.Names("nomissingowner")},
	} {
		reporter := &captureReporter{}
		l := newLinter(t, ownerStarRegistry(t), cfg, lint.WithReporter(reporter))

		m := starModel()
		m.Owner = "data-team"
		res, err := l.Check(m)
		require.NoError(t, err)
		assert.Empty(t, res.Errors)
		assert.Empty(t, res.Warnings)
		assert.Equal(t, core.SeverityOff, l.Severity("noselectstar"))
	}
}

func TestLinter_UnknownRule(t *testing.T) {
	tests := []struct {
		name  string
		cfg   lint.Config
		field string
	}{
		{name: "exclude", cfg: lint.Config{ExcludeRules: lint.Names("made_up_rule")}, field: "exclude_rules"},
		{name: "warn", cfg: lint.Config{WarnRules: lint.Names("made_up_rule")}, field: "warn_rules"},
		{name: "rules", cfg: lint.Config{Rules: lint.Names("noselectstar", "made_up_rule")}, field: "rules"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := lint.New(ownerStarRegistry(t), tt.cfg)
			require.Error(t, err)
			assert.Nil(t, l)
			assert.True(t, errors.Is(err, lint.ErrConfig))

			var uerr *lint.UnknownRuleError
			require.ErrorAs(t, err, &uerr)
			assert.Equal(t, []string{"made_up_rule"}, uerr.Names)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestLinter_ExcludedNameIsUnavailable(t *testing.T) {
	_, err := lint.New(ownerStarRegistry(t), lint.Config{
		ExcludeRules: lint.Names("noselectstar"),
		Rules:        lint.Names("noselectstar"),
	})
	var uerr *lint.UnknownRuleError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, []string{"noselectstar"}, uerr.Names)
}

func TestLinter_Conflict(t *testing.T) {
	registry := set(t,
		fixed("a", "", false), fixed("b", "", false), fixed("c", "", false), fixed("d", "", false))

	l, err := lint.New(registry, lint.Config{
		Rules:     lint.Names("a", "b", "c"),
		WarnRules: lint.Names("c", "d", "b"),
	})
	assert.Nil(t, l)
	var cerr *lint.ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, []string{"b", "c"}, cerr.Names)
	assert.True(t, errors.Is(err, lint.ErrConfig))
}

func TestLinter_AllSentinels(t *testing.T) {
	registry := ownerStarRegistry(t)

	t.Run("rules ALL minus warnings", func(t *testing.T) {
		l := newLinter(t, registry, lint.Config{Rules: lint.All(), WarnRules: lint.Names("nomissingowner")})
		assert.Equal(t, []string{"noselectstar"}, l.Rules().Names())
	})

	t.Run("rules ALL and warn ALL do not conflict", func(t *testing.T) {
		l := newLinter(t, registry, lint.Config{Rules: lint.All(), WarnRules: lint.All()})
		assert.Equal(t, 0, l.Rules().Len())
		assert.Equal(t, []string{"nomissingowner", "noselectstar"}, l.WarnRules().Names())
	})

	t.Run("warn ALL leaves no fatal rules", func(t *testing.T) {
		l := newLinter(t, registry, lint.Config{WarnRules: lint.All()})
		assert.Equal(t, 0, l.Rules().Len())
		assert.Equal(t, []string{"nomissingowner", "noselectstar"}, l.WarnRules().Names())
	})

	t.Run("exclude ALL", func(t *testing.T) {
		l := newLinter(t, registry, lint.Config{ExcludeRules: lint.All()})
		assert.Equal(t, 0, l.Rules().Len())
		assert.Equal(t, 0, l.WarnRules().Len())
	})

	t.Run("explicit empty rules", func(t *testing.T) {
		l := newLinter(t, registry, lint.Config{Rules: lint.Names()})
		assert.Equal(t, 0, l.Rules().Len())
	})
}

func TestLinter_BuiltinDefaults(t *testing.T) {
	registry := rules.Builtin()

	t.Run("empty config", func(t *testing.T) {
		l := newLinter(t, registry, lint.Config{}, rules.Defaults())
		assert.Equal(t, []string{"noselectstar", "nomissingowner"}, l.Rules().Names())
		assert.Equal(t, []string{"invalidselectstarexpansion", "ambiguousorinvalidcolumn"}, l.WarnRules().Names())
		assert.Equal(t, []string{"nomissingdescription"}, l.Excluded().Names())
		assert.Equal(t, core.SeverityWarning, l.Severity("InvalidSelectStarExpansion"))
	})

	t.Run("explicit rule overrides default exclusion", func(t *testing.T) {
		l := newLinter(t, registry, lint.Config{Rules: lint.Names("nomissingdescription")}, rules.Defaults())
		assert.Equal(t, []string{"nomissingdescription"}, l.Rules().Names())
		assert.Equal(t, 0, l.Excluded().Len())
	})

	t.Run("explicit rule overrides default warning", func(t *testing.T) {
		l := newLinter(t, registry, lint.Config{Rules: lint.Names("ambiguousorinvalidcolumn")}, rules.Defaults())
		assert.Equal(t, []string{"ambiguousorinvalidcolumn"}, l.Rules().Names())
		assert.Equal(t, []string{"invalidselectstarexpansion"}, l.WarnRules().Names())
	})

	t.Run("explicit lists replace defaults", func(t *testing.T) {
		l := newLinter(t, registry, lint.Config{WarnRules: lint.Names(), ExcludeRules: lint.Names()}, rules.Defaults())
		assert.Equal(t, registry.Names(), l.Rules().Names())
		assert.Equal(t, 0, l.WarnRules().Len())
	})
}

func TestLinter_ModelOverrides(t *testing.T) {
	reporter := &captureReporter{}
	l := newLinter(t, ownerStarRegistry(t),
		lint.Config{Rules: lint.Names("noselectstar"), WarnRules: lint.Names("nomissingowner")},
		lint.WithReporter(reporter))

	ignoring := starModel()
	ignoring.IgnoredRules = []string{"NoSelectStar", "nomissingowner"}
	require.NoError(t, l.Lint(ignoring))
	assert.Empty(t, reporter.all())

	other := starModel()
	other.FilePath = "models/staging/other.sql"
	err := l.Lint(other)
	require.Error(t, err)
	assert.Len(t, reporter.all(), 1)

	t.Run("ALL ignores everything", func(t *testing.T) {
		m := starModel()
		m.IgnoredRules = []string{"nomissingowner", "ALL"}
		res, err := l.Check(m)
		require.NoError(t, err)
		assert.Empty(t, res.Errors)
		assert.Empty(t, res.Warnings)
	})

	t.Run("unknown override", func(t *testing.T) {
		m := starModel()
		m.IgnoredRules = []string{"made_up_rule"}
		_, err := l.Check(m)
		require.Error(t, err)
		assert.True(t, errors.Is(err, lint.ErrConfig))
		assert.False(t, lint.IsViolation(err))
		assert.Contains(t, err.Error(), "models/staging/orders.sql")
	})

	t.Run("excluded rule may be ignored", func(t *testing.T) {
		lx := newLinter(t, ownerStarRegistry(t), lint.Config{ExcludeRules: lint.Names("noselectstar")})
		m := starModel()
		m.Owner = "me"
		m.IgnoredRules = []string{"noselectstar"}
		require.NoError(t, lx.Lint(m))
	})
}

func TestLinter_ConcurrentLint(t *testing.T) {
	reporter := &captureReporter{}
	l := newLinter(t, ownerStarRegistry(t), lint.Config{WarnRules: lint.Names("nomissingowner")},
		lint.WithReporter(reporter))

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = l.Lint(starModel())
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.True(t, lint.IsViolation(err))
	}
	assert.Len(t, reporter.all(), len(errs))
}

func TestLogReporter(t *testing.T) {
	// Goes to the test log; nothing to assert beyond not panicking.
	lint.LogReporter{Logger: testutil.NewTestLogger(t)}.Report("Linter warnings for x:\n - a: b")
	lint.DiscardReporter.Report("dropped")
}
