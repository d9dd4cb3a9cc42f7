package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaplint/internal/cli/output"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new leaplint project",
		Long: `Initialize a new leaplint project with default directory structure and configuration.

This creates:
  - leaplint.yaml configuration file with the linter enabled
  - models/ directory with an example SQL model
  - linter/ directory with an example Starlark rule
  - external_models.yaml declaring the example's source table`,
		Example: `  # Initialize in current directory
  leaplint init

  # Initialize in a new directory
  leaplint init my-project

  # Force overwrite existing files
  leaplint init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			cc := NewCommandContext(cmd, "")
			return runInit(cc.Renderer, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")

	return cmd
}

func runInit(r *output.Renderer, dir string, force bool) error {
	// Create directory if specified and doesn't exist
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// Check if config already exists
	configPath := filepath.Join(dir, "leaplint.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("leaplint.yaml already exists. Use --force to overwrite")
	}

	if err := copyTemplate("minimal", dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	// List created files
	files, _ := listTemplateFiles("minimal")
	for _, f := range files {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Success("leaplint project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Add SQL models under models/")
	r.Println("  2. Declare source tables in external_models.yaml")
	r.Println("  3. Run 'leaplint rules' to see the resolved rule tiers")
	r.Println("  4. Run 'leaplint lint' to check your models")

	return nil
}
