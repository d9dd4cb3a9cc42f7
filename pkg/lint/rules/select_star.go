package rules

import (
	"fmt"

	"github.com/leapstack-labs/leaplint/pkg/core"
	"github.com/leapstack-labs/leaplint/pkg/lint"
)

// NoSelectStar flags SELECT * in a model's outermost projections.
type NoSelectStar struct{}

// Summary implements lint.Rule.
func (NoSelectStar) Summary() string {
	return "Query should not contain SELECT * on its outer most projections, even if it can be expanded."
}

// Check implements lint.Rule.
func (NoSelectStar) Check(m *core.Model) *lint.Violation {
	if !m.IsSQL() || !m.UsesSelectStar {
		return nil
	}
	return lint.Violate("", m.StarPos)
}

// InvalidSelectStarExpansion flags star queries over sources whose columns
// are unknown.
type InvalidSelectStarExpansion struct{}

// Summary implements lint.Rule.
func (InvalidSelectStarExpansion) Summary() string {
	return "SELECT * cannot be expanded due to missing schema(s) for the referenced model(s)."
}

// Check implements lint.Rule.
func (r InvalidSelectStarExpansion) Check(m *core.Model) *lint.Violation {
	deps, ok := m.RenderViolation(lint.CanonicalName(r))
	if !ok {
		return nil
	}
	return lint.Violate(fmt.Sprintf(
		"SELECT * cannot be expanded due to missing schema(s) for model(s): %s. "+
			"Declare them in external_models.yaml and / or make sure that the model '%s' can be rendered at parse time.",
		deps, m.Path), m.StarPos)
}
