package rules

import (
	"fmt"

	"github.com/leapstack-labs/leaplint/pkg/core"
	"github.com/leapstack-labs/leaplint/pkg/lint"
	"github.com/leapstack-labs/leaplint/pkg/token"
)

// AmbiguousOrInvalidColumn flags projections that cannot be resolved
// against the known schema of the model's sources.
type AmbiguousOrInvalidColumn struct{}

// Summary implements lint.Rule.
func (AmbiguousOrInvalidColumn) Summary() string {
	return "A projected column may not exist or is ambiguous."
}

// Check implements lint.Rule.
func (r AmbiguousOrInvalidColumn) Check(m *core.Model) *lint.Violation {
	detail, ok := m.RenderViolation(lint.CanonicalName(r))
	if !ok {
		return nil
	}
	return lint.Violate(
		fmt.Sprintf("%s for model '%s', the column may not exist or is ambiguous.", detail, m.Path),
		columnAnchors(m)...)
}

// columnAnchors returns the positions of plain column projections.
func columnAnchors(m *core.Model) []token.Position {
	var anchors []token.Position
	for _, c := range m.Columns {
		if c.Column != "" && c.Pos.IsValid() {
			anchors = append(anchors, c.Pos)
		}
	}
	return anchors
}
