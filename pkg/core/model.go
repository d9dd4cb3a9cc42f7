package core

import "github.com/leapstack-labs/leaplint/pkg/token"

// ModelKind distinguishes models that carry a query from declared ones.
type ModelKind string

// Model kind constants.
const (
	// ModelKindSQL is a model defined by a .sql file.
	ModelKindSQL ModelKind = "sql"
	// ModelKindExternal is a table declared in external_models.yaml.
	ModelKindExternal ModelKind = "external"
)

// Model represents a SQL model (transformation unit) as seen by the linter.
// Loaders fill it once; rules only read it.
type Model struct {
	// Path is the model path (e.g., "staging.customers")
	Path string
	// Name is the model name (filename without extension)
	Name string
	// FilePath is the path to the SQL file, empty for external models
	FilePath string
	// Kind tells whether the model carries a query
	Kind ModelKind
	// Materialized defines how the model is stored: table, view, incremental
	Materialized string
	// Owner is the team/person responsible for this model
	Owner string
	// Schema is the database schema for this model
	Schema string
	// Description is a human-readable description of the model
	Description string
	// Tags are metadata labels for filtering/organizing models
	Tags []string
	// Meta contains custom extension fields
	Meta map[string]any
	// SQL is the raw SQL content (excluding frontmatter)
	SQL string
	// RawContent is the full file content including frontmatter
	RawContent string
	// HasFrontmatter indicates if YAML frontmatter was found
	HasFrontmatter bool

	// UsesSelectStar is true if an outermost projection is * or t.*
	UsesSelectStar bool
	// StarPos is where the first outermost star projection starts
	StarPos token.Position
	// Sources are all table names referenced in the SQL, CTEs excluded
	Sources []string
	// CTEs are the names declared in WITH clauses
	CTEs []string
	// Columns are the outermost projections
	Columns []ColumnInfo

	// RenderViolations holds problems found while rendering the model, keyed
	// by the canonical name of the rule that reports them. The value is the
	// detail the rule puts in its explanation.
	RenderViolations map[string]string

	// IgnoredRules lists rules this model opts out of ("ALL" for every rule),
	// collected from frontmatter and inline pragmas.
	IgnoredRules []string
}

// ColumnInfo is one outermost projection of a model query.
type ColumnInfo struct {
	Name      string // output name: alias, or column for plain references
	Column    string // referenced column for plain references, empty for expressions
	Qualifier string // table qualifier of the reference, if any
	Expr      string // projection as written
	Pos       token.Position
}

// IsSQL reports whether the model carries a query.
func (m *Model) IsSQL() bool {
	return m.Kind == ModelKindSQL
}

// DisplayPath identifies the model in messages: the file when known,
// otherwise the model path.
func (m *Model) DisplayPath() string {
	if m.FilePath != "" {
		return m.FilePath
	}
	return m.Path
}

// RenderViolation returns the render-time problem recorded for a rule.
func (m *Model) RenderViolation(rule string) (string, bool) {
	if m.RenderViolations == nil {
		return "", false
	}
	detail, ok := m.RenderViolations[rule]
	return detail, ok && detail != ""
}

// AddRenderViolation records a render-time problem for a rule.
func (m *Model) AddRenderViolation(rule, detail string) {
	if m.RenderViolations == nil {
		m.RenderViolations = make(map[string]string)
	}
	m.RenderViolations[rule] = detail
}

// Attributes exposes the model as plain values for scripted rules.
func (m *Model) Attributes() map[string]any {
	columns := make([]any, 0, len(m.Columns))
	for _, c := range m.Columns {
		columns = append(columns, c.Name)
	}
	sources := make([]any, 0, len(m.Sources))
	for _, s := range m.Sources {
		sources = append(sources, s)
	}
	tags := make([]any, 0, len(m.Tags))
	for _, t := range m.Tags {
		tags = append(tags, t)
	}
	meta := make(map[string]any, len(m.Meta))
	for k, v := range m.Meta {
		meta[k] = v
	}

	return map[string]any{
		"path":         m.Path,
		"name":         m.Name,
		"file_path":    m.FilePath,
		"kind":         string(m.Kind),
		"materialized": m.Materialized,
		"owner":        m.Owner,
		"schema":       m.Schema,
		"description":  m.Description,
		"tags":         tags,
		"meta":         meta,
		"sql":          m.SQL,
		"is_star":      m.UsesSelectStar,
		"sources":      sources,
		"columns":      columns,
	}
}
