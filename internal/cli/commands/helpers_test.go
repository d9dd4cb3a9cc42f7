package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaplint/internal/cli/config"
)

// writeProject creates a temporary project from relative path -> content.
func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	}
	return dir
}

// loadProjectConfig loads the project's configuration the way the root
// command does.
func loadProjectConfig(t *testing.T, dir string) *config.Config {
	t.Helper()
	t.Cleanup(config.ResetConfig)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("project-dir", "", "")
	require.NoError(t, fs.Parse([]string{"--project-dir", dir}))

	cfg, err := config.LoadConfig("", fs)
	require.NoError(t, err)
	return cfg
}

// execute runs cmd with args and returns stdout, stderr and the error.
// Usage and error printing is silenced as on the root command.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

const enabledConfig = `
linter:
  enabled: true
`
