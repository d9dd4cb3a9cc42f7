package output

// LintOutput is the JSON document written by "leaplint lint --format json".
type LintOutput struct {
	RunID   string            `json:"run_id"`
	Summary LintSummary       `json:"summary"`
	Models  []LintModelResult `json:"models"`
}

// LintSummary counts what a run found.
type LintSummary struct {
	ModelsChecked int `json:"models_checked"`
	Errors        int `json:"errors"`
	Warnings      int `json:"warnings"`
	Ignored       int `json:"ignored"`
}

// LintModelResult holds the violations found in one model.
type LintModelResult struct {
	Path       string          `json:"path"`
	File       string          `json:"file,omitempty"`
	Violations []LintViolation `json:"violations"`
}

// LintViolation is one reported violation.
type LintViolation struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
}

// RuleRow is one row of the rules listing.
type RuleRow struct {
	Name     string `json:"name"`
	Tier     string `json:"tier"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	Override bool   `json:"overrides_builtin,omitempty"`
}
