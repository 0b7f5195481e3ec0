package am

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/teranos/ftm/errors"
)

var (
	mu            sync.Mutex
	globalConfig  *Config
	viperInstance *viper.Viper
	configSources map[string]SourceInfo
)

// systemConfigPath is a variable so tests can point it elsewhere.
var systemConfigPath = "/etc/ftm/config.toml"

// Load reads the ftm configuration using Viper. The result is cached until Reset.
func Load() (*Config, error) {
	mu.Lock()
	defer mu.Unlock()
	if globalConfig != nil {
		return globalConfig, nil
	}

	v := initViper()
	config, err := LoadWithViper(v)
	if err != nil {
		return nil, err
	}
	globalConfig = config
	return globalConfig, nil
}

// GetViper returns the Viper instance for advanced configuration access
func GetViper() *viper.Viper {
	mu.Lock()
	defer mu.Unlock()
	return initViper()
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &config, nil
}

// LoadFromFile loads configuration from a specific file path on top of the
// defaults. Environment variables are not consulted.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	config, err := LoadWithViper(v)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load config from %s", configPath)
	}
	return config, nil
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	globalConfig = nil
	viperInstance = nil
	configSources = nil
}

// initViper initializes Viper with configuration sources and defaults.
// Callers hold mu.
func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()

	// Environment variables: model.path -> FTM_MODEL_PATH
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	configSources = make(map[string]SourceInfo)
	mergeConfigFiles(v, configSources)

	viperInstance = v
	return v
}

// configCandidate is one file of the cascade.
type configCandidate struct {
	path   string
	source ConfigSource
}

// configCandidates lists the cascade files, lowest precedence first.
func configCandidates() []configCandidate {
	candidates := []configCandidate{{path: systemConfigPath, source: SourceSystem}}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, configCandidate{
			path:   filepath.Join(home, ".ftm", UserConfigName),
			source: SourceUser,
		})
	}
	if project := findProjectConfig(); project != "" {
		candidates = append(candidates, configCandidate{path: project, source: SourceProject})
	}
	return candidates
}

// findProjectConfig searches for ftm.toml by walking up the directory tree.
// Returns the path to the first file found, or empty string if none found.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		path := filepath.Join(dir, ProjectConfigName)
		if _, err := os.Stat(path); err == nil {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// mergeConfigFiles merges the cascade files into v's config layer, recording
// which file set each key. Env vars still override the merged values.
// Unreadable files are skipped.
func mergeConfigFiles(v *viper.Viper, sources map[string]SourceInfo) {
	for _, candidate := range configCandidates() {
		if _, err := os.Stat(candidate.path); err != nil {
			continue
		}
		fileViper := viper.New()
		fileViper.SetConfigFile(candidate.path)
		fileViper.SetConfigType("toml")
		if err := fileViper.ReadInConfig(); err != nil {
			continue
		}

		settings := fileViper.AllSettings()
		if err := v.MergeConfigMap(settings); err != nil {
			continue
		}
		for _, key := range fileViper.AllKeys() {
			sources[key] = SourceInfo{Source: candidate.source, Path: candidate.path}
		}
	}
}

// Get returns a configuration value using dot notation
func Get(key string) interface{} {
	return GetViper().Get(key)
}

// GetString returns a configuration value as string using dot notation
func GetString(key string) string {
	return GetViper().GetString(key)
}

// GetBool returns a configuration value as bool using dot notation
func GetBool(key string) bool {
	return GetViper().GetBool(key)
}
