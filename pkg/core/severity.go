package core

import "strings"

// =============================================================================
// Severity
// =============================================================================

// Severity is the tier a rule resolves to for a linter configuration.
type Severity int

// Severity levels.
const (
	// SeverityError marks fatal rules: a violation fails the lint.
	SeverityError Severity = iota
	// SeverityWarning marks advisory rules: violations are reported only.
	SeverityWarning
	// SeverityOff marks rules that are excluded or not selected.
	SeverityOff
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityOff:
		return "off"
	default:
		return "unknown"
	}
}

// MarshalText renders the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseSeverity converts a string to a Severity value.
// Returns the severity and true if valid, or SeverityOff and false if invalid.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return SeverityError, true
	case "warning", "warn":
		return SeverityWarning, true
	case "off", "excluded":
		return SeverityOff, true
	default:
		return SeverityOff, false
	}
}

// =============================================================================
// RuleInfo
// =============================================================================

// RuleInfo provides metadata about a lint rule for documentation/tooling.
// This is a DTO (Data Transfer Object) - it carries data without behavior.
type RuleInfo struct {
	Name     string   `json:"name"`
	Summary  string   `json:"summary"`
	Source   string   `json:"source"` // "builtin" or the user rule file / config key
	Severity Severity `json:"severity"`
}
