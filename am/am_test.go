package am

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/ftm/errors"
)

// isolate points the cascade at empty directories so the host's own
// configuration cannot leak into a test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", filepath.Join(dir, "home"))
	t.Chdir(dir)

	previous := systemConfigPath
	systemConfigPath = filepath.Join(dir, "etc", "config.toml")
	t.Cleanup(func() {
		systemConfigPath = previous
		Reset()
	})
	Reset()
	return dir
}

func writeTOML(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Model.Path)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.False(t, cfg.Log.JSON)
	assert.Equal(t, DefaultStatementsFormat, cfg.Statements.Format)
	assert.False(t, cfg.View.Metrics)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Cascade(t *testing.T) {
	dir := isolate(t)
	writeTOML(t, systemConfigPath, "[log]\nlevel = \"error\"\njson = true\n")
	writeTOML(t, filepath.Join(dir, "home", ".ftm", "config.toml"), "[log]\nlevel = \"warn\"\n[statements]\nformat = \"csv\"\n")
	writeTOML(t, filepath.Join(dir, "ftm.toml"), "[statements]\nformat = \"pack\"\n")
	t.Setenv("FTM_VIEW_METRICS", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level, "user overrides system")
	assert.True(t, cfg.Log.JSON, "system value survives when not overridden")
	assert.Equal(t, "pack", cfg.Statements.Format, "project overrides user")
	assert.True(t, cfg.View.Metrics, "environment overrides files")

	again, err := Load()
	require.NoError(t, err)
	assert.Same(t, cfg, again, "cached until Reset")
}

func TestLoad_EnvOverridesProjectFile(t *testing.T) {
	dir := isolate(t)
	writeTOML(t, filepath.Join(dir, "ftm.toml"), "[statements]\nformat = \"pack\"\n")
	t.Setenv("FTM_STATEMENTS_FORMAT", "csv")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Statements.Format)
}

func TestFindProjectConfig_WalksUp(t *testing.T) {
	dir := isolate(t)
	writeTOML(t, filepath.Join(dir, "ftm.toml"), "")
	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	t.Chdir(nested)

	assert.Equal(t, filepath.Join(dir, "ftm.toml"), findProjectConfig())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	writeTOML(t, path, "[model]\npath = \"model.yaml\"\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "model.yaml", cfg.Model.Path)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	existing := filepath.Join(t.TempDir(), "model.yaml")
	writeTOML(t, existing, "types: {}\n")

	valid := Config{Log: LogConfig{Level: "info"}, Statements: StatementsConfig{Format: "json"}}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty level uses default", func(c *Config) { c.Log.Level = "" }, false},
		{"csv", func(c *Config) { c.Statements.Format = "csv" }, false},
		{"unknown format", func(c *Config) { c.Statements.Format = "xml" }, true},
		{"empty format", func(c *Config) { c.Statements.Format = "" }, true},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"existing model", func(c *Config) { c.Model.Path = existing }, false},
		{"missing model", func(c *Config) { c.Model.Path = existing + ".nope" }, true},
		{"missing catalog", func(c *Config) { c.Catalog.Path = existing + ".nope" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsInvalidConfiguration(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSettingsSources(t *testing.T) {
	dir := isolate(t)
	project := filepath.Join(dir, "ftm.toml")
	writeTOML(t, project, "[log]\nlevel = \"debug\"\n")
	t.Setenv("FTM_VIEW_METRICS", "true")

	byKey := make(map[string]SettingInfo)
	for _, s := range Settings() {
		byKey[s.Key] = s
	}

	assert.Equal(t, SourceProject, byKey["log.level"].Source)
	assert.Equal(t, project, byKey["log.level"].SourcePath)
	assert.Equal(t, "debug", byKey["log.level"].Value)
	assert.Equal(t, SourceDefault, byKey["statements.format"].Source)
	assert.Equal(t, SourceEnvironment, byKey["view.metrics"].Source)
	assert.Equal(t, "FTM_VIEW_METRICS", byKey["view.metrics"].SourcePath)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "ftm.toml")
	cfg := &Config{Log: LogConfig{Level: "warn"}, Statements: StatementsConfig{Format: "csv"}}

	for i := 0; i < 5; i++ {
		require.NoError(t, WriteFile(path, cfg))
	}
	for _, suffix := range []string{".back1", ".back2", ".back3"} {
		assert.FileExists(t, path+suffix)
	}
	assert.NoFileExists(t, path+".back4")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded Config
	require.NoError(t, toml.Unmarshal(data, &decoded))
	assert.Equal(t, *cfg, decoded)

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "csv", loaded.Statements.Format)
}
