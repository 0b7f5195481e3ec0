package testing

import (
	"testing"

	"github.com/teranos/ftm/model"
	"github.com/teranos/ftm/statement"
)

// DefaultModel returns the embedded default model, failing the test if it
// cannot be loaded.
func DefaultModel(t *testing.T) *model.Model {
	t.Helper()

	m, err := model.Default()
	if err != nil {
		t.Fatalf("Failed to load default model: %v", err)
	}
	return m
}

// Schema looks up a schema in the default model.
func Schema(t *testing.T, name string) *model.Schema {
	t.Helper()

	s := DefaultModel(t).Schema(name)
	if s == nil {
		t.Fatalf("Unknown schema %q", name)
	}
	return s
}

// Statement builds a statement in the "test" dataset with a fixed first-seen time.
func Statement(t *testing.T, entityID, schema, prop, value string) *statement.Statement {
	t.Helper()

	return StatementWith(t, statement.Fields{
		EntityID:  entityID,
		Schema:    Schema(t, schema),
		Property:  prop,
		Value:     value,
		Dataset:   "test",
		FirstSeen: FirstSeen,
	})
}

// StatementWith builds a statement from explicit fields.
func StatementWith(t *testing.T, f statement.Fields) *statement.Statement {
	t.Helper()

	s, err := statement.New(f)
	if err != nil {
		t.Fatalf("Failed to create statement: %v", err)
	}
	return s
}

// FirstSeen is the first-seen time used by Statement: 2023-11-14T22:13:20.
const FirstSeen int64 = 1700000000
