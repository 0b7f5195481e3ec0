package am

import (
	"os"

	"github.com/teranos/ftm/errors"
	"github.com/teranos/ftm/logger"
	"github.com/teranos/ftm/statement"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Statement format must be one the statement codecs know
	if _, err := statement.ParseFormat(c.Statements.Format); err != nil {
		return errors.NewInvalidConfiguration("statements.format must be one of %v, got %q",
			statement.Formats, c.Statements.Format)
	}

	// Log level must parse; empty means the default
	if c.Log.Level != "" {
		if _, err := logger.ParseLevel(c.Log.Level); err != nil {
			return errors.NewInvalidConfiguration("log.level %q is not a valid level", c.Log.Level)
		}
	}

	// Model and catalog paths are optional, but when given must exist
	if c.Model.Path != "" && !fileExists(c.Model.Path) {
		return errors.NewInvalidConfiguration("model.path %s does not exist", c.Model.Path)
	}
	if c.Catalog.Path != "" && !fileExists(c.Catalog.Path) {
		return errors.NewInvalidConfiguration("catalog.path %s does not exist", c.Catalog.Path)
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
