package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/leaplint/pkg/core"
	"github.com/leapstack-labs/leaplint/pkg/parser"
)

// Loader parses SQL model files into models.
type Loader struct {
	// BaseDir is the models directory root
	BaseDir string
	// ValidateQuery rejects models without a SELECT or with unbalanced
	// parentheses
	ValidateQuery bool
}

// NewLoader creates a new loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{BaseDir: baseDir}
}

// ParseFile parses a single SQL model file.
func (l *Loader) ParseFile(filePath string) (*core.Model, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return l.ParseContent(filePath, string(content))
}

// ParseContent parses SQL content from a file.
func (l *Loader) ParseContent(filePath string, content string) (*core.Model, error) {
	fm, err := ExtractFrontmatter(content)
	if err != nil {
		return nil, withFile(err, filePath)
	}

	cfg := fm.Config
	modelPath := l.filePathToModelPath(filePath)
	dirPath := ""
	if i := strings.LastIndex(modelPath, "."); i > 0 {
		dirPath = modelPath[:i]
	}
	cfg.ApplyDefaults(filepath.Base(filePath), dirPath)

	m := &core.Model{
		Path:           modelPath,
		Name:           cfg.Name,
		FilePath:       filePath,
		Kind:           core.ModelKindSQL,
		Materialized:   cfg.Materialized,
		Owner:          cfg.Owner,
		Schema:         cfg.Schema,
		Description:    cfg.Description,
		Tags:           cfg.Tags,
		Meta:           cfg.Meta,
		SQL:            fm.SQL,
		RawContent:     content,
		HasFrontmatter: fm.HasYAML,
		IgnoredRules:   ruleListNames(cfg.IgnoredRules),
	}

	summary := parser.Summarize(fm.SQL)
	if l.ValidateQuery {
		if err := validate(filePath, summary); err != nil {
			return nil, err
		}
	}

	// Pragmas may sit in the frontmatter block too, so scan the whole file.
	_, comments := parser.Tokenize(content)
	m.IgnoredRules = append(m.IgnoredRules, IgnoredByPragmas(comments)...)

	m.Sources = summary.Sources
	m.CTEs = summary.CTEs
	for _, p := range summary.Projections {
		pos := p.Pos.Shift(fm.SQLLine, fm.SQLOffset)
		if p.Star {
			if !m.UsesSelectStar {
				m.UsesSelectStar = true
				m.StarPos = pos
			}
			continue
		}
		name := p.Alias
		if name == "" {
			name = p.Column
		}
		m.Columns = append(m.Columns, core.ColumnInfo{
			Name:      strings.ToLower(name),
			Column:    p.Column,
			Qualifier: p.Qualifier,
			Expr:      p.Text,
			Pos:       pos,
		})
	}

	return m, nil
}

func validate(filePath string, s *parser.Summary) error {
	switch {
	case !s.HasSelect:
		return &QueryError{File: filePath, Message: "query has no SELECT"}
	case !s.Balanced:
		return &QueryError{File: filePath, Message: "query has unbalanced parentheses"}
	}
	return nil
}

// withFile attaches the file name to frontmatter errors.
func withFile(err error, filePath string) error {
	switch e := err.(type) {
	case *FrontmatterParseError:
		e.File = filePath
	case *UnknownFieldError:
		e.File = filePath
	}
	return err
}

// filePathToModelPath converts a file path to a model path.
// e.g., "/base/staging/customers.sql" -> "staging.customers"
func (l *Loader) filePathToModelPath(filePath string) string {
	relPath, err := filepath.Rel(l.BaseDir, filePath)
	if err != nil || strings.HasPrefix(relPath, "..") {
		// Fallback to just the filename
		return strings.TrimSuffix(filepath.Base(filePath), ".sql")
	}

	// Remove .sql extension
	relPath = strings.TrimSuffix(relPath, ".sql")

	// Convert path separators to dots
	parts := strings.Split(relPath, string(filepath.Separator))
	return strings.Join(parts, ".")
}
