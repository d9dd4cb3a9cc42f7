package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leaplint/internal/cli/output"
	"github.com/leapstack-labs/leaplint/internal/loader"
	"github.com/leapstack-labs/leaplint/pkg/core"
	"github.com/leapstack-labs/leaplint/pkg/lint"
)

// LintOptions holds options for the lint command.
type LintOptions struct {
	Paths       []string // Model paths or file paths to restrict the run to
	Format      string   // Output format: text, markdown, json
	Watch       bool     // Re-lint on changes
	Force       bool     // Lint even when linter.enabled is false
	Concurrency int      // Parallel checks; 0 = GOMAXPROCS
}

// NewLintCommand creates the lint command.
func NewLintCommand() *cobra.Command {
	opts := &LintOptions{}
	cmd := &cobra.Command{
		Use:   "lint [path...]",
		Short: "Check models against the configured lint rules",
		Long: `Check every model against the configured lint rules.

Rules on the warning tier are reported and never fail the run. Any
violation of a rule on the fatal tier makes the command exit non-zero.
Models may opt out of rules with ignored_rules in their frontmatter or a
"-- leaplint:ignore <rule>" comment.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Lint all models
  leaplint lint

  # Lint one folder or one model
  leaplint lint models/staging
  leaplint lint staging.orders

  # Lint even if linter.enabled is false
  leaplint lint --force

  # Re-lint on every change
  leaplint lint --watch

  # Output as JSON
  leaplint lint --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Paths = args
			return runLint(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Watch models and rules and re-lint on change")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Lint even when linter.enabled is false")
	cmd.Flags().IntVarP(&opts.Concurrency, "concurrency", "j", 0, "Models checked in parallel (0 = number of CPUs)")

	return cmd
}

func runLint(cmd *cobra.Command, opts *LintOptions) error {
	cc := NewCommandContext(cmd, opts.Format)

	cfg := *cc.Cfg
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = opts.Concurrency
	}
	cc.Cfg = &cfg

	if !cfg.Linter.Enabled && !opts.Force {
		cc.Renderer.Warning("Linting is disabled. Set linter.enabled: true in leaplint.yaml or pass --force.")
		return nil
	}
	if err := cfg.ValidateDirectories(); err != nil {
		return err
	}

	if opts.Watch {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return watchLint(ctx, cc, opts)
	}

	_, err := lintOnce(cmd.Context(), cc, opts)
	return err
}

// lintRun is the outcome of one pass over the project.
type lintRun struct {
	ID      string
	Models  []*core.Model
	Results []*lint.Result
	Ignored int
}

// failed counts the models with fatal violations.
func (r *lintRun) failed() int {
	n := 0
	for _, res := range r.Results {
		if res.HasErrors() {
			n++
		}
	}
	return n
}

// lintOnce loads the project, checks every selected model and renders the
// results. The error is non-nil if configuration, loading or any fatal
// rule failed.
func lintOnce(ctx context.Context, cc *CommandContext, opts *LintOptions) (*lintRun, error) {
	run := &lintRun{ID: uuid.NewString()}
	logger := cc.Logger.With(slog.String("run_id", run.ID))
	r := cc.Renderer

	registry, err := cc.Registry()
	if err != nil {
		return nil, err
	}
	linter, err := cc.Linter(registry, consoleReporter{r: r})
	if err != nil {
		return nil, err
	}
	logger.Debug("resolved linter",
		slog.Int("registry", registry.Len()),
		slog.Int("errors", linter.Rules().Len()),
		slog.Int("warnings", linter.WarnRules().Len()),
		slog.Int("excluded", linter.Excluded().Len()))

	scanner := loader.NewScanner(cc.Cfg.ModelsDir)
	scanner.Concurrency = cc.Cfg.Concurrency
	scanner.Logger = logger
	scanner.GetLoader().ValidateQuery = cc.Cfg.Linter.ValidateQuery
	project, err := scanner.Load(ctx, cc.Cfg.ModelsDir, cc.Cfg.ExternalModels)
	if err != nil {
		return nil, fmt.Errorf("failed to load models: %w", err)
	}
	run.Models = filterModels(project.All(), opts.Paths)

	// Every override must name a known rule before anything is checked.
	var errs []error
	for _, m := range run.Models {
		ignored, err := linter.ResolveOverrides(m)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ignored.Len() > 0 {
			run.Ignored++
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	run.Results, err = checkModels(ctx, linter, run.Models, cc.Cfg.Concurrency)
	if err != nil {
		return nil, err
	}

	renderLintRun(r, linter, run)

	if n := run.failed(); n > 0 {
		return run, fmt.Errorf("%w: %d model(s) with fatal violations", lint.ErrLint, n)
	}
	return run, nil
}

// checkModels checks models in parallel, keeping results in model order.
// Reporting is left to the caller so output stays in path order.
func checkModels(ctx context.Context, linter *lint.Linter, models []*core.Model, concurrency int) ([]*lint.Result, error) {
	results := make([]*lint.Result, len(models))

	g, ctx := errgroup.WithContext(ctx)
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(concurrency)

	for i, m := range models {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := linter.Check(m)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// filterModels keeps the models whose dotted path or file path starts with
// one of the filters. No filters keeps everything.
func filterModels(models []*core.Model, filters []string) []*core.Model {
	if len(filters) == 0 {
		return models
	}

	var out []*core.Model
	for _, m := range models {
		for _, f := range filters {
			if matchesFilter(m, f) {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

func matchesFilter(m *core.Model, filter string) bool {
	if strings.HasPrefix(m.Path, strings.ToLower(filter)) {
		return true
	}
	if m.FilePath == "" {
		return false
	}
	clean := filepath.Clean(filter)
	if strings.HasPrefix(m.FilePath, clean) {
		return true
	}
	abs, err := filepath.Abs(clean)
	return err == nil && strings.HasPrefix(m.FilePath, abs)
}

// consoleReporter prints warning messages with the warning style.
type consoleReporter struct {
	r *output.Renderer
}

func (c consoleReporter) Report(message string) {
	printBlock(c.r, c.r.Styles().Warning, message)
}

// printBlock styles the first line of a multi-line message.
func printBlock(r *output.Renderer, style lipgloss.Style, message string) {
	header, rest, _ := strings.Cut(message, "\n")
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println("**" + header + "**")
	} else {
		r.Println(style.Render(header))
	}
	if rest != "" {
		r.Println(rest)
	}
	r.Println("")
}

func renderLintRun(r *output.Renderer, linter *lint.Linter, run *lintRun) {
	if r.EffectiveMode() == output.ModeJSON {
		_ = r.JSON(lintJSON(run))
		return
	}

	errCount, warnCount := 0, 0
	for _, res := range run.Results {
		// warnings first, then the fatal violations
		linter.Report(res)
		if err := res.Err(); err != nil {
			printBlock(r, r.Styles().Error, err.Error())
		}
		errCount += len(res.Errors)
		warnCount += len(res.Warnings)
	}

	if errCount == 0 && warnCount == 0 {
		r.Success(fmt.Sprintf("No lint violations found in %d models", len(run.Models)))
		return
	}
	r.Printf("Summary: %d errors, %d warnings in %d models\n", errCount, warnCount, len(run.Models))
}

func lintJSON(run *lintRun) output.LintOutput {
	out := output.LintOutput{
		RunID:   run.ID,
		Summary: output.LintSummary{ModelsChecked: len(run.Models), Ignored: run.Ignored},
		Models:  []output.LintModelResult{},
	}
	for i, res := range run.Results {
		if len(res.Errors) == 0 && len(res.Warnings) == 0 {
			continue
		}
		m := run.Models[i]
		mr := output.LintModelResult{Path: m.Path, File: m.FilePath}
		for _, v := range res.Warnings {
			mr.Violations = append(mr.Violations, jsonViolation(v, core.SeverityWarning))
		}
		for _, v := range res.Errors {
			mr.Violations = append(mr.Violations, jsonViolation(v, core.SeverityError))
		}
		out.Summary.Errors += len(res.Errors)
		out.Summary.Warnings += len(res.Warnings)
		out.Models = append(out.Models, mr)
	}
	return out
}

func jsonViolation(v lint.Violation, sev core.Severity) output.LintViolation {
	lv := output.LintViolation{
		Rule:     v.Rule,
		Severity: sev.String(),
		Message:  v.Explanation,
	}
	if len(v.Anchors) > 0 && v.Anchors[0].IsValid() {
		lv.Line = v.Anchors[0].Line
		lv.Column = v.Anchors[0].Column
	}
	return lv
}
