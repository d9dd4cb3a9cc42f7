package rules

import (
	"strings"

	"github.com/leapstack-labs/leaplint/pkg/core"
	"github.com/leapstack-labs/leaplint/pkg/lint"
)

// NoMissingOwner requires every model to declare an owner.
type NoMissingOwner struct{}

// Summary implements lint.Rule.
func (NoMissingOwner) Summary() string {
	return "All models should have an owner."
}

// Check implements lint.Rule.
func (NoMissingOwner) Check(m *core.Model) *lint.Violation {
	if strings.TrimSpace(m.Owner) != "" {
		return nil
	}
	return &lint.Violation{}
}

// NoMissingDescription requires every SQL model to be described.
type NoMissingDescription struct{}

// Summary implements lint.Rule.
func (NoMissingDescription) Summary() string {
	return "All models should have a description."
}

// Check implements lint.Rule.
func (NoMissingDescription) Check(m *core.Model) *lint.Violation {
	if !m.IsSQL() || strings.TrimSpace(m.Description) != "" {
		return nil
	}
	return &lint.Violation{}
}
