// Package config provides configuration management for the leaplint CLI.
package config

import (
	"github.com/leapstack-labs/leaplint/internal/userrules"
	"github.com/leapstack-labs/leaplint/pkg/lint"
)

// Config holds all CLI configuration options.
type Config struct {
	ProjectRoot    string       `koanf:"-"`
	ModelsDir      string       `koanf:"models_dir"`
	RulesDir       string       `koanf:"rules_dir"`
	ExternalModels string       `koanf:"external_models"`
	Verbose        bool         `koanf:"verbose"`
	OutputFormat   string       `koanf:"output"`
	Concurrency    int          `koanf:"concurrency"`
	Linter         LinterConfig `koanf:"linter"`
}

// LinterConfig is the linter section: the rule tiers plus rules declared
// inline as CEL expressions.
type LinterConfig struct {
	lint.Config `koanf:",squash"`

	CustomRules []userrules.CustomRule `koanf:"custom_rules"`
}

// Default configuration values.
const (
	DefaultModelsDir      = "models"
	DefaultRulesDir       = "linter"
	DefaultExternalModels = "external_models.yaml"
	DefaultOutput         = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultConcurrency    = 0      // 0 = GOMAXPROCS
)

// ConfigFileNames are searched in order in the project root.
var ConfigFileNames = []string{"leaplint.yaml", "leaplint.yml"}

// Defaults returns the configuration used when nothing is configured.
func Defaults() *Config {
	return &Config{
		ModelsDir:      DefaultModelsDir,
		RulesDir:       DefaultRulesDir,
		ExternalModels: DefaultExternalModels,
		OutputFormat:   DefaultOutput,
		Concurrency:    DefaultConcurrency,
		Linter:         LinterConfig{Config: lint.DefaultConfig()},
	}
}
