package lint

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Typed errors below match them with errors.Is.
var (
	// ErrConfig marks invalid linter configuration: unknown or reserved rule
	// names and conflicting tiers.
	ErrConfig = errors.New("linter configuration error")
	// ErrLint marks fatal rule violations.
	ErrLint = errors.New("linter error")
)

// UnknownRuleError is returned when a rule name is not available.
type UnknownRuleError struct {
	Names []string
}

func (e *UnknownRuleError) Error() string {
	return "unknown rule(s): " + quoteNames(e.Names)
}

// Is matches ErrConfig.
func (e *UnknownRuleError) Is(target error) bool { return target == ErrConfig }

// ConflictError is returned when rules are configured as both fatal and
// advisory.
type ConflictError struct {
	Names []string
}

func (e *ConflictError) Error() string {
	return "rule(s) configured in both rules and warn_rules: " + quoteNames(e.Names)
}

// Is matches ErrConfig.
func (e *ConflictError) Is(target error) bool { return target == ErrConfig }

// ReservedNameError is returned when a rule's name cannot identify it.
type ReservedNameError struct {
	Name string
}

func (e *ReservedNameError) Error() string {
	if e.Name == "" {
		return "rule has no name"
	}
	return fmt.Sprintf("rule name %q is reserved", e.Name)
}

// Is matches ErrConfig.
func (e *ReservedNameError) Is(target error) bool { return target == ErrConfig }

// LintError carries the fatal violations found for one model.
type LintError struct {
	Model      string
	Violations []Violation
}

func (e *LintError) Error() string {
	return formatViolations("Linter error for "+e.Model, e.Violations)
}

// Is matches ErrLint.
func (e *LintError) Is(target error) bool { return target == ErrLint }

func quoteNames(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return strings.Join(quoted, ", ")
}
