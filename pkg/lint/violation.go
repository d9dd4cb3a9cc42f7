package lint

import (
	"strings"

	"github.com/leapstack-labs/leaplint/pkg/token"
)

// Violation records that a model failed a rule.
// It carries everything needed to render its message.
type Violation struct {
	// Rule is the canonical name of the violated rule. RuleSet.Check fills
	// it in, so checks may leave it empty.
	Rule string
	// Explanation describes the problem. Empty means the rule summary.
	Explanation string
	// Anchors are optional positions in the model source for tooling.
	Anchors []token.Position
}

// Violate builds a violation with an explanation and optional anchors.
func Violate(explanation string, anchors ...token.Position) *Violation {
	return &Violation{Explanation: explanation, Anchors: anchors}
}

// Message renders "<rule>: <explanation>".
func (v Violation) Message() string {
	return v.Rule + ": " + v.Explanation
}

// String implements fmt.Stringer.
func (v Violation) String() string {
	return v.Message()
}

// formatViolations renders a header followed by one " - " line per violation.
func formatViolations(header string, violations []Violation) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString(":")
	for _, v := range violations {
		b.WriteString("\n - ")
		b.WriteString(v.Message())
	}
	return b.String()
}
