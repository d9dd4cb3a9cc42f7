package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/leaplint/pkg/core"
)

// Render violation keys, matching the rules that report them.
const (
	StarExpansionRule = "invalidselectstarexpansion"
	ColumnRule        = "ambiguousorinvalidcolumn"
)

// Catalog knows the output columns of models by path.
type Catalog struct {
	columns map[string]map[string]bool
}

// NewCatalog builds a catalog from external and SQL models. Columns of SQL
// models are known when every projection is named, or when a star query
// reads only sources with known columns.
func NewCatalog(models ...*core.Model) *Catalog {
	c := &Catalog{columns: make(map[string]map[string]bool)}
	var pending []*core.Model
	for _, m := range models {
		if !m.IsSQL() {
			c.add(m.Path, m.Columns)
			continue
		}
		if !m.UsesSelectStar {
			if cols, ok := namedColumns(m); ok {
				c.add(m.Path, cols)
			}
			continue
		}
		pending = append(pending, m)
	}

	// Star models resolve once their sources do.
	for progress := true; progress; {
		progress = false
		rest := pending[:0]
		for _, m := range pending {
			if len(c.Missing(m.Sources)) > 0 {
				rest = append(rest, m)
				continue
			}
			cols := make(map[string]bool)
			for _, src := range m.Sources {
				for col := range c.columns[src] {
					cols[col] = true
				}
			}
			for _, col := range m.Columns {
				if col.Name != "" {
					cols[strings.ToLower(col.Name)] = true
				}
			}
			c.columns[strings.ToLower(m.Path)] = cols
			progress = true
		}
		pending = rest
	}
	return c
}

func namedColumns(m *core.Model) ([]core.ColumnInfo, bool) {
	for _, col := range m.Columns {
		if col.Name == "" {
			return nil, false
		}
	}
	return m.Columns, len(m.Columns) > 0
}

func (c *Catalog) add(path string, columns []core.ColumnInfo) {
	cols := make(map[string]bool, len(columns))
	for _, col := range columns {
		cols[strings.ToLower(col.Name)] = true
	}
	c.columns[strings.ToLower(path)] = cols
}

// Knows reports whether a model's columns are known.
func (c *Catalog) Knows(path string) bool {
	_, ok := c.columns[strings.ToLower(path)]
	return ok
}

// Columns returns the known columns of a model, sorted.
func (c *Catalog) Columns(path string) []string {
	cols := c.columns[strings.ToLower(path)]
	out := make([]string, 0, len(cols))
	for col := range cols {
		out = append(out, col)
	}
	sort.Strings(out)
	return out
}

// Missing returns the sources whose columns are unknown, sorted.
func (c *Catalog) Missing(sources []string) []string {
	var missing []string
	for _, s := range sources {
		if !c.Knows(s) {
			missing = append(missing, s)
		}
	}
	sort.Strings(missing)
	return missing
}

// Render records the problems that prevent a model from being fully
// resolved against the catalog.
func (c *Catalog) Render(m *core.Model) {
	if !m.IsSQL() {
		return
	}

	if m.UsesSelectStar {
		if missing := c.Missing(m.Sources); len(missing) > 0 {
			m.AddRenderViolation(StarExpansionRule, strings.Join(missing, ", "))
		}
		return
	}

	// Bare columns are only attributable with a single known source.
	if len(m.Sources) != 1 || len(m.CTEs) > 0 || !c.Knows(m.Sources[0]) {
		return
	}
	known := c.columns[strings.ToLower(m.Sources[0])]
	var unknown []string
	for _, col := range m.Columns {
		if col.Column == "" || known[col.Column] {
			continue
		}
		unknown = append(unknown, fmt.Sprintf("%q", col.Column))
	}
	if len(unknown) > 0 {
		m.AddRenderViolation(ColumnRule, fmt.Sprintf("Column %s could not be resolved", strings.Join(unknown, ", ")))
	}
}
