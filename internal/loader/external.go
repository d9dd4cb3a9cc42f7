package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leaplint/pkg/core"
)

// ExternalModelConfig is one entry of external_models.yaml.
//
//	# external_models.yaml
//	- name: raw.orders
//	  owner: ingest
//	  columns:
//	    id: int
//	    amount: double
type ExternalModelConfig struct {
	Name         string            `yaml:"name"`
	Description  string            `yaml:"description"`
	Owner        string            `yaml:"owner"`
	Tags         []string          `yaml:"tags"`
	IgnoredRules []string          `yaml:"ignored_rules"`
	Columns      map[string]string `yaml:"columns"` // column name -> type
}

// LoadExternalModels reads external model declarations. A missing file
// yields no models.
func LoadExternalModels(path string) ([]*core.Model, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read external models: %w", err)
	}
	return ParseExternalModels(path, data)
}

// ParseExternalModels decodes external model declarations from data.
func ParseExternalModels(path string, data []byte) ([]*core.Model, error) {
	var configs []ExternalModelConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&configs); err != nil && !errors.Is(err, io.EOF) {
		return nil, &LoadError{File: path, Err: err}
	}

	models := make([]*core.Model, 0, len(configs))
	seen := make(map[string]bool, len(configs))
	for i, c := range configs {
		name := strings.ToLower(strings.TrimSpace(c.Name))
		if name == "" {
			return nil, &LoadError{File: path, Err: fmt.Errorf("entry %d has no name", i)}
		}
		if seen[name] {
			return nil, &LoadError{File: path, Err: fmt.Errorf("duplicate external model %q", name)}
		}
		seen[name] = true

		columns := make([]string, 0, len(c.Columns))
		for col := range c.Columns {
			columns = append(columns, strings.ToLower(col))
		}
		sort.Strings(columns)

		m := &core.Model{
			Path:         name,
			Name:         name[strings.LastIndex(name, ".")+1:],
			Kind:         core.ModelKindExternal,
			Owner:        c.Owner,
			Description:  c.Description,
			Tags:         c.Tags,
			IgnoredRules: c.IgnoredRules,
		}
		for _, col := range columns {
			m.Columns = append(m.Columns, core.ColumnInfo{Name: col, Column: col})
		}
		models = append(models, m)
	}
	return models, nil
}
