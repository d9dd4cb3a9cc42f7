package lint

// Config selects which rules run and at which tier.
type Config struct {
	// Enabled turns linting on for a project
	Enabled bool `koanf:"enabled" json:"enabled" yaml:"enabled"`
	// ValidateQuery makes query-less or malformed models a load error
	ValidateQuery bool `koanf:"validate_query" json:"validate_query" yaml:"validate_query"`
	// Rules are the fatal tier; omitted or ALL means every included rule
	// not on the warning tier
	Rules RuleList `koanf:"rules" json:"-" yaml:"rules,omitempty"`
	// WarnRules are the advisory tier
	WarnRules RuleList `koanf:"warn_rules" json:"-" yaml:"warn_rules,omitempty"`
	// ExcludeRules are removed before the tiers are resolved
	ExcludeRules RuleList `koanf:"exclude_rules" json:"-" yaml:"exclude_rules,omitempty"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{}
}
