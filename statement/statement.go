// Package statement implements the atomic, provenance-tagged fact that
// entities are aggregated from.
package statement

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"github.com/teranos/ftm/errors"
	"github.com/teranos/ftm/model"
)

// Fields is the full description of a statement passed to New.
// Empty ID is generated with MakeID; empty CanonicalID defaults to EntityID;
// zero LastSeen defaults to FirstSeen.
type Fields struct {
	ID            string
	EntityID      string
	CanonicalID   string
	Schema        *model.Schema
	Property      string
	Value         string
	Dataset       string
	Lang          string
	OriginalValue string
	External      bool
	FirstSeen     int64
	LastSeen      int64
	Origin        string
}

// Statement is one (entity, property, value) fact seen in a dataset.
// Statements are immutable and identified by ID alone.
type Statement struct {
	id            string
	entityID      string
	canonicalID   string
	schema        *model.Schema
	prop          string
	value         string
	dataset       string
	lang          string
	originalValue string
	external      bool
	firstSeen     int64
	lastSeen      int64
	origin        string
}

// MakeID derives the content id of a statement: the lowercase hex SHA-1 of
// "dataset.entityID.prop.value", with ".ext" appended for external statements.
func MakeID(dataset, entityID, prop, value string, external bool) string {
	h := sha1.New()
	h.Write([]byte(dataset))
	h.Write([]byte{'.'})
	h.Write([]byte(entityID))
	h.Write([]byte{'.'})
	h.Write([]byte(prop))
	h.Write([]byte{'.'})
	h.Write([]byte(value))
	if external {
		h.Write([]byte(".ext"))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// New builds a statement. It fails when the schema, entity id or property
// name is missing.
func New(f Fields) (*Statement, error) {
	if f.Schema == nil {
		return nil, errors.NewInvalidArgument("statement for %q has no schema", f.EntityID)
	}
	if f.EntityID == "" {
		return nil, errors.NewInvalidArgument("statement has no entity id")
	}
	if f.Property == "" {
		return nil, errors.NewInvalidArgument("statement for %q has no property", f.EntityID)
	}
	s := &Statement{
		id:            f.ID,
		entityID:      f.EntityID,
		canonicalID:   f.CanonicalID,
		schema:        f.Schema,
		prop:          f.Property,
		value:         f.Value,
		dataset:       f.Dataset,
		lang:          f.Lang,
		originalValue: f.OriginalValue,
		external:      f.External,
		firstSeen:     f.FirstSeen,
		lastSeen:      f.LastSeen,
		origin:        f.Origin,
	}
	if s.canonicalID == "" {
		s.canonicalID = s.entityID
	}
	if s.lastSeen == 0 {
		s.lastSeen = s.firstSeen
	}
	if s.id == "" {
		s.id = MakeID(s.dataset, s.entityID, s.prop, s.value, s.external)
	}
	return s, nil
}

func (s *Statement) ID() string            { return s.id }
func (s *Statement) EntityID() string      { return s.entityID }
func (s *Statement) CanonicalID() string   { return s.canonicalID }
func (s *Statement) Schema() *model.Schema { return s.schema }
func (s *Statement) PropertyName() string  { return s.prop }
func (s *Statement) Value() string         { return s.value }
func (s *Statement) Dataset() string       { return s.dataset }
func (s *Statement) Lang() string          { return s.lang }
func (s *Statement) OriginalValue() string { return s.originalValue }
func (s *Statement) External() bool        { return s.external }
func (s *Statement) FirstSeen() int64      { return s.firstSeen }
func (s *Statement) LastSeen() int64       { return s.lastSeen }
func (s *Statement) Origin() string        { return s.origin }

// IsID reports whether this is an id-statement carrying an entity checksum.
func (s *Statement) IsID() bool { return s.prop == model.IDProperty }

// Property resolves the statement's property against its schema.
func (s *Statement) Property() (*model.Property, bool) {
	p := s.schema.Property(s.prop)
	return p, p != nil
}

// PropType is the name of the property type, "id" for id-statements and
// empty when the property is not part of the schema.
func (s *Statement) PropType() string {
	if s.IsID() {
		return model.IDProperty
	}
	if p, ok := s.Property(); ok {
		return p.Type().Name()
	}
	return ""
}

// Fields returns the fields the statement was built from, after defaults.
func (s *Statement) Fields() Fields {
	return Fields{
		ID:            s.id,
		EntityID:      s.entityID,
		CanonicalID:   s.canonicalID,
		Schema:        s.schema,
		Property:      s.prop,
		Value:         s.value,
		Dataset:       s.dataset,
		Lang:          s.lang,
		OriginalValue: s.originalValue,
		External:      s.external,
		FirstSeen:     s.firstSeen,
		LastSeen:      s.lastSeen,
		Origin:        s.origin,
	}
}

// WithCanonicalID returns s itself when the canonical id is unchanged and a
// copy carrying the new canonical id otherwise. An empty id resets the
// canonical id to the entity id.
func (s *Statement) WithCanonicalID(canonicalID string) *Statement {
	if canonicalID == "" {
		canonicalID = s.entityID
	}
	if canonicalID == s.canonicalID {
		return s
	}
	clone := *s
	clone.canonicalID = canonicalID
	return &clone
}

// Equal compares statements by id.
func (s *Statement) Equal(other *Statement) bool {
	return other != nil && s.id == other.id
}

// Less orders id-statements first and everything else by id.
func (s *Statement) Less(other *Statement) bool {
	if s.IsID() != other.IsID() {
		return s.IsID()
	}
	return s.id < other.id
}

func (s *Statement) String() string {
	return fmt.Sprintf("<Statement(%q, %q, %q)>", s.entityID, s.prop, s.value)
}
