// Package am holds the ftm configuration ("I am").
//
// Settings cascade from built-in defaults through the system, user and
// project TOML files to FTM_* environment variables, highest last.
package am

// Config represents the ftm configuration
type Config struct {
	Model      ModelConfig      `mapstructure:"model" toml:"model" json:"model"`
	Log        LogConfig        `mapstructure:"log" toml:"log" json:"log"`
	Statements StatementsConfig `mapstructure:"statements" toml:"statements" json:"statements"`
	Catalog    CatalogConfig    `mapstructure:"catalog" toml:"catalog" json:"catalog"`
	View       ViewConfig       `mapstructure:"view" toml:"view" json:"view"`
}

// ModelConfig selects the schema model
type ModelConfig struct {
	Path string `mapstructure:"path" toml:"path" json:"path"` // YAML/JSON model file (empty = embedded default model)
}

// LogConfig configures the global logger
type LogConfig struct {
	JSON  bool   `mapstructure:"json" toml:"json" json:"json"`    // Production JSON output instead of console
	Level string `mapstructure:"level" toml:"level" json:"level"` // debug, info, warn, error
}

// StatementsConfig configures statement input and output
type StatementsConfig struct {
	Format string `mapstructure:"format" toml:"format" json:"format"` // json, csv or pack
}

// CatalogConfig locates the dataset catalog
type CatalogConfig struct {
	Path string `mapstructure:"path" toml:"path" json:"path"` // YAML catalog (empty = no catalog)
}

// ViewConfig configures in-memory views
type ViewConfig struct {
	Metrics bool `mapstructure:"metrics" toml:"metrics" json:"metrics"` // Register view metrics and print them on exit
}

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)

// Configuration file names
const (
	ProjectConfigName = "ftm.toml"
	UserConfigName    = "config.toml"
	EnvPrefix         = "FTM"
)
