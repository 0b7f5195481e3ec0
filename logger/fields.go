package logger

import (
	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across ftm.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Operations
	FieldOperation = "operation"
	FieldVersion   = "version"

	// Model
	FieldSchema   = "schema"
	FieldProperty = "property"
	FieldType     = "type"

	// Entities and statements
	FieldEntityID    = "entity_id"
	FieldCanonicalID = "canonical_id"
	FieldStatementID = "statement_id"
	FieldDataset     = "dataset"
	FieldValue       = "value"

	// Errors
	FieldError = "error"

	// Counts and sizes
	FieldCount = "count"
	FieldLine  = "line"

	// Files and formats
	FieldFile   = "file"
	FieldFormat = "format"
)

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	type MemoryView struct {
//	    logger *zap.SugaredLogger
//	}
//
//	func NewMemoryView() *MemoryView {
//	    return &MemoryView{
//	        logger: logger.ComponentLogger("store.memory"),
//	    }
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context.
//
// Example:
//
//	entityLogger := logger.ChildLogger(baseLogger, logger.FieldEntityID, id)
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	return parent.With(keysAndValues...)
}
