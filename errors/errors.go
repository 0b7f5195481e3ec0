// Package errors provides error handling for ftm.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints and details for operators
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap a sentinel with context
//	return errors.Wrapf(errors.ErrSchemaMismatch, "no common schema: %s and %s", a, b)
//
//	// Check errors
//	if errors.Is(err, errors.ErrSchemaMismatch) {
//	    // handle mismatch
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Sentinel errors for the entity model.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrSchemaMismatch indicates two schemata have no common descendant, or a
	// statement names a property its (widened) schema does not define
	ErrSchemaMismatch = New("schema mismatch")

	// ErrInvalidConfiguration indicates model bootstrap data violates a model invariant
	ErrInvalidConfiguration = New("invalid configuration")

	// ErrInvalidSchema indicates an unknown schema or property name where one is required
	ErrInvalidSchema = New("invalid schema")

	// ErrInvalidArgument indicates the caller passed a value the operation cannot accept
	ErrInvalidArgument = New("invalid argument")

	// ErrNotFound indicates the requested schema, property or entity does not exist
	ErrNotFound = New("not found")

	// ErrView indicates a failure in the store backing a view
	ErrView = New("view failure")
)

// IsSchemaMismatch checks if an error is or wraps ErrSchemaMismatch
func IsSchemaMismatch(err error) bool {
	return err != nil && Is(err, ErrSchemaMismatch)
}

// IsInvalidConfiguration checks if an error is or wraps ErrInvalidConfiguration
func IsInvalidConfiguration(err error) bool {
	return err != nil && Is(err, ErrInvalidConfiguration)
}

// IsNotFoundError checks if an error is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// NewSchemaMismatch creates a schema-mismatch error with a formatted message
func NewSchemaMismatch(format string, args ...interface{}) error {
	return Wrap(ErrSchemaMismatch, Newf(format, args...).Error())
}

// NewInvalidConfiguration creates an invalid-configuration error with a formatted message
func NewInvalidConfiguration(format string, args ...interface{}) error {
	return Wrap(ErrInvalidConfiguration, Newf(format, args...).Error())
}

// NewInvalidSchema creates an invalid-schema error with a formatted message
func NewInvalidSchema(format string, args ...interface{}) error {
	return Wrap(ErrInvalidSchema, Newf(format, args...).Error())
}

// NewInvalidArgument creates an invalid-argument error with a formatted message
func NewInvalidArgument(format string, args ...interface{}) error {
	return Wrap(ErrInvalidArgument, Newf(format, args...).Error())
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}
