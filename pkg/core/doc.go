// Package core defines the shared language of leaplint.
//
// This package contains:
//   - Domain entities (Model, ColumnInfo)
//   - Lint tiers (Severity) and rule metadata (RuleInfo)
//
// The Golden Rule: pkg/core imports ONLY pkg/token and stdlib.
// All other packages depend on core, not the reverse.
package core
