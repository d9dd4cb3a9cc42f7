package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaplint/internal/cli/output"
	"github.com/leapstack-labs/leaplint/pkg/core"
	"github.com/leapstack-labs/leaplint/pkg/lint"
	"github.com/leapstack-labs/leaplint/pkg/lint/rules"
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Format string // Output format
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [rule]",
		Short: "List available lint rules",
		Long: `List every rule in the registry with the tier it resolves to under the
current configuration (error, warn or excluded) and where it is defined.

User rules from the linter directory and linter.custom_rules replace
built-in rules of the same name.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # List all rules
  leaplint rules

  # Show details for a specific rule
  leaplint rules noselectstar

  # Output as JSON
  leaplint rules --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showRule(cmd, args[0], opts)
			}
			return listRules(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json, markdown")

	return cmd
}

// RulesJSONOutput is the JSON output structure for rules listing.
type RulesJSONOutput struct {
	Rules []output.RuleRow `json:"rules"`
	Count struct {
		Error    int `json:"error"`
		Warn     int `json:"warn"`
		Excluded int `json:"excluded"`
		Total    int `json:"total"`
	} `json:"count"`
}

// ruleRows resolves the configured linter and describes every registry rule
// in registry order.
func ruleRows(cc *CommandContext) ([]output.RuleRow, error) {
	registry, err := cc.Registry()
	if err != nil {
		return nil, err
	}
	linter, err := cc.Linter(registry, lint.DiscardReporter)
	if err != nil {
		return nil, err
	}

	builtin := rules.Builtin()
	rows := make([]output.RuleRow, 0, registry.Len())
	for name, r := range registry.All() {
		source := lint.SourceOf(r)
		rows = append(rows, output.RuleRow{
			Name:     name,
			Tier:     tierName(linter.Severity(name)),
			Source:   displaySource(source, cc.Cfg.ProjectRoot),
			Summary:  r.Summary(),
			Override: source != lint.SourceBuiltin && builtin.Contains(name),
		})
	}
	return rows, nil
}

func listRules(cmd *cobra.Command, opts *RulesOptions) error {
	cc := NewCommandContext(cmd, opts.Format)
	r := cc.Renderer

	rows, err := ruleRows(cc)
	if err != nil {
		return err
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		jsonOutput := RulesJSONOutput{Rules: rows}
		for _, row := range rows {
			switch row.Tier {
			case "error":
				jsonOutput.Count.Error++
			case "warn":
				jsonOutput.Count.Warn++
			default:
				jsonOutput.Count.Excluded++
			}
		}
		jsonOutput.Count.Total = len(rows)
		return r.JSON(jsonOutput)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, "Lint Rules"))
		r.Println("")
	default:
		r.Println("")
		r.Println(r.Styles().Header1.Render(fmt.Sprintf("Lint Rules (%d)", len(rows))))
		r.Println("")
	}

	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		table = append(table, []string{row.Name, row.Tier, row.Source, row.Summary})
	}
	r.Table([]string{"Rule", "Tier", "Source", "Summary"}, table)

	if r.EffectiveMode() != output.ModeMarkdown {
		r.Println("")
		r.Println(r.Styles().Muted.Render("Use 'leaplint rules <rule>' for details"))
	}
	return nil
}

func showRule(cmd *cobra.Command, name string, opts *RulesOptions) error {
	cc := NewCommandContext(cmd, opts.Format)
	r := cc.Renderer

	rows, err := ruleRows(cc)
	if err != nil {
		return err
	}
	want := lint.Canonicalize(name)
	var row *output.RuleRow
	for i := range rows {
		if rows[i].Name == want {
			row = &rows[i]
			break
		}
	}
	if row == nil {
		return fmt.Errorf("rule %q not found", name)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(row)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, row.Name))
		r.Println("")
		r.Println(output.FormatKeyValue("Tier", "`"+row.Tier+"`"))
		r.Println("")
		r.Println(output.FormatKeyValue("Source", row.Source))
		r.Println("")
		if row.Summary != "" {
			r.Println(row.Summary)
			r.Println("")
		}
	default:
		styles := r.Styles()
		r.Println("")
		r.Println(styles.Header1.Render(row.Name))
		r.Println("")
		r.Printf("  %s: %s\n", styles.Bold.Render("Tier"), tierStyle(r, row.Tier))
		r.Printf("  %s: %s\n", styles.Bold.Render("Source"), row.Source)
		if row.Override {
			r.Println(styles.Muted.Render("  Overrides the built-in rule of the same name"))
		}
		if row.Summary != "" {
			r.Println("")
			r.Println("  " + row.Summary)
		}
		r.Println("")
	}
	return nil
}

// Helper functions

func tierName(sev core.Severity) string {
	switch sev {
	case core.SeverityError:
		return "error"
	case core.SeverityWarning:
		return "warn"
	default:
		return "excluded"
	}
}

func tierStyle(r *output.Renderer, tier string) string {
	switch tier {
	case "error":
		return r.Styles().Error.Render(tier)
	case "warn":
		return r.Styles().Warning.Render(tier)
	default:
		return r.Styles().Muted.Render(tier)
	}
}

// displaySource shortens a user rule source to a project-relative path.
func displaySource(source, root string) string {
	if source == lint.SourceBuiltin || root == "" || !filepath.IsAbs(source) {
		return source
	}
	if rel, err := filepath.Rel(root, source); err == nil {
		return rel
	}
	return source
}
