package am

import (
	"github.com/spf13/viper"
)

// Default values
const (
	DefaultLogLevel         = "info"
	DefaultStatementsFormat = "json"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Model: empty path selects the embedded default model
	v.SetDefault("model.path", "")

	// Logging
	v.SetDefault("log.json", false)
	v.SetDefault("log.level", DefaultLogLevel)

	// Statements
	v.SetDefault("statements.format", DefaultStatementsFormat)

	// Dataset catalog
	v.SetDefault("catalog.path", "")

	// Views
	v.SetDefault("view.metrics", false)
}
