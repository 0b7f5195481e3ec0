package entity

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/teranos/ftm/errors"
	"github.com/teranos/ftm/logger"
	"github.com/teranos/ftm/model"
	"github.com/teranos/ftm/statement"
)

// StatementEntity aggregates every statement sharing one canonical id. Its
// schema widens as statements with related schemata are added.
//
// A StatementEntity is not safe for concurrent mutation.
type StatementEntity struct {
	id           string
	schema       *model.Schema
	props        map[*model.Property][]*statement.Statement
	order        []*model.Property
	idStatements []*statement.Statement
}

// NewStatementEntity creates an empty aggregate.
func NewStatementEntity(id string, schema *model.Schema) *StatementEntity {
	return &StatementEntity{
		id:     id,
		schema: schema,
		props:  make(map[*model.Property][]*statement.Statement),
	}
}

// FromStatements builds an entity with the canonical id of the first statement.
func FromStatements(stmts []*statement.Statement) (*StatementEntity, error) {
	if len(stmts) == 0 {
		return nil, errors.NewInvalidArgument("cannot create entity from empty list of statements")
	}
	return FromStatementsWithID(stmts[0].CanonicalID(), stmts)
}

// FromStatementsWithID builds an entity under canonicalID, rewriting the
// canonical id of every statement. The schema starts at the first statement's
// schema and is widened with CommonWith for every other one; a mismatch fails
// the build. Statements whose property is not in the widened schema are
// dropped with a warning.
func FromStatementsWithID(canonicalID string, stmts []*statement.Statement) (*StatementEntity, error) {
	if len(stmts) == 0 {
		return nil, errors.NewInvalidArgument("cannot create entity from empty list of statements")
	}
	schema := stmts[0].Schema()
	e := NewStatementEntity(canonicalID, schema)
	for _, stmt := range stmts {
		stmt = stmt.WithCanonicalID(canonicalID)
		widened, err := e.schema.CommonWith(stmt.Schema())
		if err != nil {
			return nil, errors.Wrapf(err, "entity %s", canonicalID)
		}
		e.schema = widened
		if stmt.IsID() {
			e.idStatements = append(e.idStatements, stmt)
			continue
		}
		prop := e.schema.Property(stmt.PropertyName())
		if prop == nil {
			componentLogger().Warnw("Property not found in schema, dropping statement",
				logger.FieldProperty, stmt.PropertyName(),
				logger.FieldSchema, e.schema.Name(),
				logger.FieldEntityID, canonicalID,
				logger.FieldStatementID, stmt.ID())
			continue
		}
		e.append(prop, stmt)
	}
	return e, nil
}

func (e *StatementEntity) append(prop *model.Property, stmt *statement.Statement) {
	if _, ok := e.props[prop]; !ok {
		e.order = append(e.order, prop)
	}
	e.props[prop] = append(e.props[prop], stmt)
}

// AddStatement attaches one statement. The statement's canonical id must be
// the entity id; its property must exist in the (possibly widened) schema.
// Id-statements go to the checksum list.
func (e *StatementEntity) AddStatement(stmt *statement.Statement) error {
	if stmt.CanonicalID() != e.id {
		return errors.NewInvalidArgument("statement %s does not belong to entity %s", stmt.ID(), e.id)
	}
	schema := e.schema
	if stmt.Schema() != schema {
		widened, err := schema.CommonWith(stmt.Schema())
		if err != nil {
			return err
		}
		schema = widened
	}
	if stmt.IsID() {
		e.schema = schema
		e.idStatements = append(e.idStatements, stmt)
		return nil
	}
	prop := schema.Property(stmt.PropertyName())
	if prop == nil {
		return errors.NewSchemaMismatch("Statement property %s does not exist in schema %s", stmt.PropertyName(), schema.Name())
	}
	e.schema = schema
	e.append(prop, stmt)
	return nil
}

func (e *StatementEntity) ID() string            { return e.id }
func (e *StatementEntity) Schema() *model.Schema { return e.schema }

// Has reports whether any statement is held for the property.
func (e *StatementEntity) Has(p *model.Property) bool {
	_, ok := e.props[p]
	return ok
}

// Statements returns the statements held for a property, in insertion order.
func (e *StatementEntity) Statements(p *model.Property) []*statement.Statement {
	return append([]*statement.Statement(nil), e.props[p]...)
}

// PopStatements removes and returns the statements held for a property.
func (e *StatementEntity) PopStatements(p *model.Property) []*statement.Statement {
	stmts, ok := e.props[p]
	if !ok {
		return nil
	}
	delete(e.props, p)
	for i, q := range e.order {
		if q == p {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	return stmts
}

// IDStatements returns the checksum statements.
func (e *StatementEntity) IDStatements() []*statement.Statement {
	return append([]*statement.Statement(nil), e.idStatements...)
}

// Values returns the distinct statement values of a property, in insertion order.
func (e *StatementEntity) Values(p *model.Property) []string {
	stmts := e.props[p]
	values := make([]string, 0, len(stmts))
	seen := make(map[string]struct{}, len(stmts))
	for _, stmt := range stmts {
		if _, ok := seen[stmt.Value()]; ok {
			continue
		}
		seen[stmt.Value()] = struct{}{}
		values = append(values, stmt.Value())
	}
	return values
}

// DefinedProperties lists properties with at least one statement, in the
// order they were first seen.
func (e *StatementEntity) DefinedProperties() []*model.Property {
	return append([]*model.Property(nil), e.order...)
}

// AllStatements returns the id-statements followed by every property statement.
func (e *StatementEntity) AllStatements() []*statement.Statement {
	out := append([]*statement.Statement(nil), e.idStatements...)
	for _, p := range e.order {
		out = append(out, e.props[p]...)
	}
	return out
}

// HasStatements reports whether any property statement is held.
func (e *StatementEntity) HasStatements() bool { return len(e.props) > 0 }

// Caption is recomputed on every call: the first value of the first caption
// property that has statements, else the schema label.
func (e *StatementEntity) Caption() string {
	for _, p := range e.schema.CaptionProperties() {
		if stmts := e.props[p]; len(stmts) > 0 {
			return stmts[0].Value()
		}
	}
	return e.schema.Label()
}

func (e *StatementEntity) Datasets() []string {
	var names []string
	for _, stmt := range e.AllStatements() {
		names = append(names, stmt.Dataset())
	}
	return sortedSet(names)
}

// Referents are the distinct subject entity ids merged into this entity,
// other than the canonical id itself.
func (e *StatementEntity) Referents() []string {
	var ids []string
	for _, stmt := range e.AllStatements() {
		if stmt.EntityID() != e.id {
			ids = append(ids, stmt.EntityID())
		}
	}
	return sortedSet(ids)
}

// FirstSeen is the earliest first-seen time of any statement, 0 without statements.
func (e *StatementEntity) FirstSeen() int64 {
	var first int64
	for i, stmt := range e.AllStatements() {
		if i == 0 || stmt.FirstSeen() < first {
			first = stmt.FirstSeen()
		}
	}
	return first
}

func (e *StatementEntity) LastSeen() int64 {
	var last int64
	for _, stmt := range e.AllStatements() {
		last = max(last, stmt.LastSeen())
	}
	return last
}

// LastChange is the latest first-seen time of the id-statements.
func (e *StatementEntity) LastChange() int64 {
	var last int64
	for _, stmt := range e.idStatements {
		last = max(last, stmt.FirstSeen())
	}
	return last
}

// Checksum returns the value of the current id-statement, if any.
func (e *StatementEntity) Checksum() string {
	if len(e.idStatements) == 0 {
		return ""
	}
	return e.idStatements[0].Value()
}

// ComputeChecksum fingerprints the set of property statements: their ids are
// sorted and hashed with SHA-1. The result becomes a new id-statement that
// replaces every existing one. It is independent of insertion order.
func (e *StatementEntity) ComputeChecksum(external bool) (*statement.Statement, error) {
	var ids []string
	for _, p := range e.order {
		for _, stmt := range e.props[p] {
			ids = append(ids, stmt.ID())
		}
	}
	sort.Strings(ids)
	h := sha1.New()
	for _, id := range ids {
		h.Write([]byte(id))
	}
	value := hex.EncodeToString(h.Sum(nil))

	// The empty dataset name is a valid, smallest candidate.
	all := e.AllStatements()
	if len(all) == 0 {
		return nil, errors.NewInvalidArgument("entity %s has no statements to checksum", e.id)
	}
	dataset := all[0].Dataset()
	for _, stmt := range all[1:] {
		dataset = min(dataset, stmt.Dataset())
	}
	now := model.Now()
	stmt, err := statement.New(statement.Fields{
		ID:          statement.MakeID(dataset, e.id, model.IDProperty, value, external),
		EntityID:    e.id,
		CanonicalID: e.id,
		Schema:      e.schema,
		Property:    model.IDProperty,
		Value:       value,
		Dataset:     dataset,
		External:    external,
		FirstSeen:   now,
		LastSeen:    now,
	})
	if err != nil {
		return nil, err
	}
	e.idStatements = []*statement.Statement{stmt}
	return stmt, nil
}

// ToValueEntity flattens the aggregate into a snapshot.
func (e *StatementEntity) ToValueEntity() *ValueEntity {
	ve := NewValueEntity(e.id, e.schema)
	for _, p := range e.order {
		for _, stmt := range e.props[p] {
			ve.AddValue(p, stmt.Value())
		}
	}
	ve.SetCaption(e.Caption())
	ve.SetDatasets(e.Datasets())
	ve.SetReferents(e.Referents())
	ve.SetFirstSeen(e.FirstSeen())
	ve.SetLastSeen(e.LastSeen())
	ve.SetLastChange(e.LastChange())
	return ve
}

// MarshalJSON renders the entity in the ValueEntity wire format.
func (e *StatementEntity) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.ToValueEntity())
}
