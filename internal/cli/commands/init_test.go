package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInitCommand(t *testing.T) {
	tests := []struct {
		name      string
		setupDir  func(t *testing.T, dir string) // setup before running
		args      []string
		wantErr   bool
		wantFiles []string
	}{
		{
			name: "init empty directory",
			wantFiles: []string{
				"leaplint.yaml",
				"external_models.yaml",
				"models/staging/orders.sql",
				"linter/owners.star",
			},
		},
		{
			name: "init existing config without force",
			setupDir: func(_ *testing.T, dir string) {
				_ = os.WriteFile(filepath.Join(dir, "leaplint.yaml"), []byte("existing"), 0600)
			},
			wantErr: true,
		},
		{
			name: "init existing config with force",
			setupDir: func(_ *testing.T, dir string) {
				_ = os.WriteFile(filepath.Join(dir, "leaplint.yaml"), []byte("existing"), 0600)
			},
			args:      []string{"--force"},
			wantFiles: []string{"leaplint.yaml", "models/staging/orders.sql"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			if tt.setupDir != nil {
				tt.setupDir(t, tmpDir)
			}

			out, _, err := execute(NewInitCommand(), append([]string{tmpDir}, tt.args...)...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out, "leaplint project initialized!")

			for _, f := range tt.wantFiles {
				_, err := os.Stat(filepath.Join(tmpDir, filepath.FromSlash(f)))
				assert.NoError(t, err, "expected %s to exist", f)
			}
			content, err := os.ReadFile(filepath.Join(tmpDir, "leaplint.yaml"))
			require.NoError(t, err)
			assert.NotEqual(t, "existing", string(content))
		})
	}
}

func TestInit_ScaffoldLintsClean(t *testing.T) {
	dir := t.TempDir()
	_, _, err := execute(NewInitCommand(), dir)
	require.NoError(t, err)

	loadProjectConfig(t, dir)
	out, _, err := execute(NewLintCommand(), "--format", "markdown")
	require.NoError(t, err, out)
	assert.Contains(t, out, "No lint violations found in 2 models")
}

func TestListTemplateFiles(t *testing.T) {
	files, err := listTemplateFiles("minimal")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"leaplint.yaml",
		"external_models.yaml",
		"models/staging/orders.sql",
		"linter/owners.star",
	}, files)
}
