package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaplint/internal/cli/config"
	"github.com/leapstack-labs/leaplint/internal/cli/output"
	"github.com/leapstack-labs/leaplint/internal/userrules"
	"github.com/leapstack-labs/leaplint/pkg/lint"
	"github.com/leapstack-labs/leaplint/pkg/lint/rules"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
// A non-empty format overrides the configured output mode.
func NewCommandContext(cmd *cobra.Command, format string) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	mode := output.Mode(cfg.OutputFormat)
	if format != "" {
		mode = output.Mode(format)
	}
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Registry builds the rule registry: built-in rules overridden by the
// project's Starlark and CEL rules.
func (c *CommandContext) Registry() (*lint.RuleSet, error) {
	source := config.GetConfigFileUsed()
	registry, err := userrules.Registry(rules.Builtin(), userrules.Options{
		Dir:          c.Cfg.RulesDir,
		Custom:       c.Cfg.Linter.CustomRules,
		ConfigSource: source,
		Logger:       c.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load user rules: %w", err)
	}
	return registry, nil
}

// Linter resolves the configured tiers against registry.
func (c *CommandContext) Linter(registry *lint.RuleSet, reporter lint.Reporter) (*lint.Linter, error) {
	return lint.New(registry, c.Cfg.Linter.Config,
		rules.Defaults(),
		lint.WithReporter(reporter),
		lint.WithLogger(c.Logger),
	)
}

// getConfig returns the current configuration, or the defaults when
// nothing was loaded (tests, help).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Defaults()
}
