package commands

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaplint/internal/cli/output"
	"github.com/leapstack-labs/leaplint/pkg/core"
	"github.com/leapstack-labs/leaplint/pkg/lint"
)

func TestNewLintCommand(t *testing.T) {
	cmd := NewLintCommand()

	assert.Equal(t, "lint [path...]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	for _, flag := range []string{"format", "watch", "force", "concurrency"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestLint_DisabledIsANoop(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"models/a.sql": "SELECT * FROM raw.a",
	})
	loadProjectConfig(t, dir)

	out, _, err := execute(NewLintCommand(), "--format", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "Linting is disabled")
}

func TestLint_JSON(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"leaplint.yaml": enabledConfig,
		"external_models.yaml": `
- name: raw.orders
  owner: ingest
  columns:
    id: int
    amount: double
`,
		"models/staging/orders.sql": "/*---\nowner: analytics\n---*/\nSELECT id, amount FROM raw.orders",
		"models/staging/events.sql": "/*---\nowner: analytics\n---*/\nSELECT\n  *\nFROM raw.events",
		"models/marts/unowned.sql":  "SELECT id FROM staging.orders",
	})
	loadProjectConfig(t, dir)

	out, _, err := execute(NewLintCommand(), "--format", "json")
	require.Error(t, err)
	assert.True(t, errors.Is(err, lint.ErrLint))
	assert.Contains(t, err.Error(), "2 model(s) with fatal violations")

	var doc output.LintOutput
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.NotEmpty(t, doc.RunID)
	assert.Equal(t, 4, doc.Summary.ModelsChecked, "external models are checked too")
	assert.Equal(t, 2, doc.Summary.Errors)
	assert.Equal(t, 1, doc.Summary.Warnings)

	byPath := map[string]output.LintModelResult{}
	for _, m := range doc.Models {
		byPath[m.Path] = m
	}
	require.Contains(t, byPath, "staging.events")
	events := byPath["staging.events"].Violations
	require.Len(t, events, 2)
	assert.Equal(t, output.LintViolation{
		Rule:     "invalidselectstarexpansion",
		Severity: "warning",
		Message: "SELECT * cannot be expanded due to missing schema(s) for model(s): raw.events. " +
			"Declare them in external_models.yaml and / or make sure that the model 'staging.events' can be rendered at parse time.",
		Line:   5,
		Column: 3,
	}, events[0])
	assert.Equal(t, "noselectstar", events[1].Rule)
	assert.Equal(t, "error", events[1].Severity)
	assert.Equal(t, 5, events[1].Line)
	assert.Equal(t, 3, events[1].Column)

	require.Contains(t, byPath, "marts.unowned")
	assert.Equal(t, "nomissingowner", byPath["marts.unowned"].Violations[0].Rule)
	assert.NotContains(t, byPath, "staging.orders")
}

func TestLint_TextReportsWarningsThenErrors(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"leaplint.yaml": `
linter:
  enabled: true
  warn_rules: [nomissingowner]
`,
		"models/b.sql": "SELECT * FROM raw.b",
		"models/a.sql": "SELECT id FROM raw.a",
	})
	loadProjectConfig(t, dir)

	out, _, err := execute(NewLintCommand(), "--format", "text")
	require.Error(t, err)

	assert.Contains(t, out, "Linter warnings for "+filepath.Join(dir, "models", "a.sql")+":\n - nomissingowner: All models should have an owner.")
	assert.Contains(t, out, "Linter error for "+filepath.Join(dir, "models", "b.sql")+":\n - noselectstar:")
	assert.Less(t, indexOf(out, "a.sql"), indexOf(out, "b.sql"), "models are reported in path order")
	assert.Less(t, indexOf(out, "Linter warnings for "+filepath.Join(dir, "models", "b.sql")),
		indexOf(out, "Linter error for "+filepath.Join(dir, "models", "b.sql")))
	assert.Contains(t, out, "Summary: 2 errors, 2 warnings in 2 models")
}

func TestLint_IgnoredRules(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"leaplint.yaml": enabledConfig,
		"models/a.sql":  "-- leaplint:ignore noselectstar, nomissingowner\nSELECT * FROM raw.a",
		"models/b.sql":  "/*---\nowner: x\nignored_rules: ALL\n---*/\nSELECT * FROM raw.b",
	})
	loadProjectConfig(t, dir)

	out, _, err := execute(NewLintCommand(), "--format", "json")
	require.NoError(t, err)

	var doc output.LintOutput
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 0, doc.Summary.Errors)
	assert.Equal(t, 1, doc.Summary.Warnings, "a.sql still warns about the unknown schema")
	assert.Equal(t, 2, doc.Summary.Ignored)
}

func TestLint_UnknownOverrideFailsBeforeChecking(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"leaplint.yaml": enabledConfig,
		"models/a.sql":  "/*---\nignored_rules: [nosuchrule]\n---*/\nSELECT 1 AS x",
	})
	loadProjectConfig(t, dir)

	out, _, err := execute(NewLintCommand(), "--format", "json")
	require.Error(t, err)
	assert.True(t, errors.Is(err, lint.ErrConfig))
	assert.Contains(t, err.Error(), `unknown rule(s): "nosuchrule"`)
	assert.Empty(t, out)
}

func TestLint_FailingJSONRunIsValidJSON(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"leaplint.yaml": enabledConfig,
		"models/a.sql":  "/*---\nowner: data\n---*/\nSELECT count(*) AS n, * FROM raw.a",
	})
	loadProjectConfig(t, dir)

	out, errOut, err := execute(NewLintCommand(), "--format", "json")
	require.Error(t, err)
	assert.True(t, errors.Is(err, lint.ErrLint))
	assert.NotContains(t, out, "Usage:")
	assert.Empty(t, errOut)

	var doc output.LintOutput
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Models, 1)
	assert.Equal(t, "noselectstar", doc.Models[0].Violations[len(doc.Models[0].Violations)-1].Rule)
}

func TestLint_ConfigConflict(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"leaplint.yaml": `
linter:
  enabled: true
  rules: [noselectstar]
  warn_rules: [noselectstar]
`,
		"models/a.sql": "SELECT 1 AS x",
	})
	loadProjectConfig(t, dir)

	_, _, err := execute(NewLintCommand())
	require.Error(t, err)
	var conflict *lint.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"noselectstar"}, conflict.Names)
}

func TestLint_UserRules(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"leaplint.yaml": `
linter:
  enabled: true
  rules: [teamowner, nostaging]
  custom_rules:
    - name: nostaging
      expr: 'model.path.startsWith("staging.") ? "staging is frozen" : ""'
`,
		"linter/owners.star": `
def _check(model):
    return not model.owner.startswith("team-")

rule(name = "teamowner", summary = "Owners must be teams.", check = _check)
`,
		"models/staging/a.sql": "/*---\nowner: team-x\n---*/\nSELECT 1 AS x",
		"models/marts/b.sql":   "/*---\nowner: bob\n---*/\nSELECT 1 AS x",
	})
	loadProjectConfig(t, dir)

	out, _, err := execute(NewLintCommand(), "--format", "json")
	require.Error(t, err)

	var doc output.LintOutput
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Models, 2)
	assert.Equal(t, "marts.b", doc.Models[0].Path)
	assert.Equal(t, "Owners must be teams.", doc.Models[0].Violations[0].Message)
	assert.Equal(t, "staging.a", doc.Models[1].Path)
	assert.Equal(t, "staging is frozen", doc.Models[1].Violations[0].Message)
}

func TestLint_PathFilterAndForce(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"models/staging/a.sql": "SELECT * FROM raw.a",
		"models/marts/b.sql":   "SELECT * FROM raw.b",
	})
	loadProjectConfig(t, dir)

	out, _, err := execute(NewLintCommand(), "--force", "--format", "json", "-j", "1", "staging.")
	require.Error(t, err)

	var doc output.LintOutput
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 1, doc.Summary.ModelsChecked)
	require.Len(t, doc.Models, 1)
	assert.Equal(t, "staging.a", doc.Models[0].Path)
}

func TestFilterModels(t *testing.T) {
	models := []*core.Model{
		{Path: "staging.orders", FilePath: "/p/models/staging/orders.sql"},
		{Path: "marts.revenue", FilePath: "/p/models/marts/revenue.sql"},
		{Path: "raw.events", Kind: core.ModelKindExternal},
	}

	assert.Len(t, filterModels(models, nil), 3)
	assert.Equal(t, models[:1], filterModels(models, []string{"Staging."}))
	assert.Equal(t, models[1:2], filterModels(models, []string{"/p/models/marts"}))
	assert.Equal(t, models[1:], filterModels(models, []string{"marts", "raw.events"}))
	assert.Empty(t, filterModels(models, []string{"nothing"}))
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
