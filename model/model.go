// Package model holds the closed universe of property types and schemata.
//
// A Model is built once with FromConfig (or Load / Default) and is read-only
// afterwards. Every lookup on a Model, Schema or Property is safe for
// concurrent use once construction has returned.
package model

import (
	"strings"
	"sync"

	"github.com/teranos/ftm/errors"
)

// IDProperty is the reserved property name carrying an entity's checksum.
const IDProperty = "id"

// Model is the mapping from type names to PropertyTypes and from schema names
// to Schemata.
type Model struct {
	types     map[string]*PropertyType
	typeOrder []*PropertyType
	schemata  map[string]*Schema
	order     []*Schema

	common  sync.Map // schemaPair -> *Schema, nil when there is none
	strings sync.Map // string -> string
}

type schemaPair struct{ a, b string }

// FromConfig builds a Model in two passes: every type, schema and property
// is registered first, then the hierarchy is linked and resolved. Any unknown
// type, parent or range name fails the whole build; no partial Model is
// returned.
func FromConfig(types []TypeConfig, schemata []SchemaConfig) (*Model, error) {
	m := &Model{
		types:    make(map[string]*PropertyType, len(types)),
		schemata: make(map[string]*Schema, len(schemata)),
	}

	for _, cfg := range types {
		if _, exists := m.types[cfg.Name]; exists {
			return nil, errors.NewInvalidConfiguration("duplicate property type %q", cfg.Name)
		}
		pt, err := NewPropertyType(cfg)
		if err != nil {
			return nil, err
		}
		m.types[pt.name] = pt
		m.typeOrder = append(m.typeOrder, pt)
	}

	// phase one: register schemata and their own properties by name
	for _, cfg := range schemata {
		if cfg.Name == "" {
			return nil, errors.NewInvalidConfiguration("schema name cannot be empty")
		}
		if _, exists := m.schemata[cfg.Name]; exists {
			return nil, errors.NewInvalidConfiguration("duplicate schema %q", cfg.Name)
		}
		s := newSchema(m, cfg)
		for _, pcfg := range cfg.Properties {
			if pcfg.Name == "" {
				return nil, errors.NewInvalidConfiguration("schema %s has a property without a name", cfg.Name)
			}
			p, err := newProperty(s, pcfg, m.types[pcfg.Type])
			if err != nil {
				return nil, err
			}
			if err := s.addProperty(p); err != nil {
				return nil, err
			}
		}
		m.schemata[s.name] = s
		m.order = append(m.order, s)
	}

	// phase two: link parents, reject cycles, resolve closures
	for _, s := range m.order {
		for _, name := range s.extends {
			parent, ok := m.schemata[name]
			if !ok {
				return nil, errors.NewInvalidConfiguration("schema %s extends unknown schema %q", s.name, name)
			}
			s.parents = append(s.parents, parent)
		}
	}
	if err := m.checkCycles(); err != nil {
		return nil, err
	}
	for _, s := range m.order {
		s.resolve()
	}

	if err := m.checkReferences(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) checkCycles() error {
	const (
		_ = iota
		visiting
		done
	)
	state := make(map[*Schema]int, len(m.order))
	var visit func(*Schema) error
	visit = func(s *Schema) error {
		switch state[s] {
		case visiting:
			return errors.NewInvalidConfiguration("schema %s inherits from itself", s.name)
		case done:
			return nil
		}
		state[s] = visiting
		for _, parent := range s.parents {
			if err := visit(parent); err != nil {
				return err
			}
		}
		state[s] = done
		return nil
	}
	for _, s := range m.order {
		if err := visit(s); err != nil {
			return err
		}
	}
	return nil
}

// checkReferences validates names that can only be checked once the whole
// hierarchy is resolved. Reverse property names are left to the tolerant
// Property.Reverse accessor.
func (m *Model) checkReferences() error {
	for _, s := range m.order {
		for _, name := range s.ownOrder {
			p := s.own[name]
			if p.rangeName == "" {
				continue
			}
			if _, ok := m.schemata[p.rangeName]; !ok {
				return errors.NewInvalidConfiguration("property %s has unknown range %q", p.qname, p.rangeName)
			}
		}
		if s.edge != nil {
			if s.edge.SourceProperty() == nil {
				return errors.NewInvalidConfiguration("edge %s has unknown source property %q", s.name, s.edge.source)
			}
			if s.edge.TargetProperty() == nil {
				return errors.NewInvalidConfiguration("edge %s has unknown target property %q", s.name, s.edge.target)
			}
		}
	}
	return nil
}

// Type returns the property type with the given name, or nil.
func (m *Model) Type(name string) *PropertyType { return m.types[name] }

// Types returns all property types in declaration order.
func (m *Model) Types() []*PropertyType { return append([]*PropertyType(nil), m.typeOrder...) }

// Schema returns the schema with the given name, or nil.
func (m *Model) Schema(name string) *Schema { return m.schemata[name] }

// GetSchema is Schema for callers that need an error on a miss.
func (m *Model) GetSchema(name string) (*Schema, error) {
	s, ok := m.schemata[name]
	if !ok {
		return nil, errors.NewInvalidSchema("unknown schema %q", name)
	}
	return s, nil
}

// Schemata returns all schemata in declaration order. This order decides
// which common descendant CommonWith picks when several qualify.
func (m *Model) Schemata() []*Schema { return append([]*Schema(nil), m.order...) }

// Property resolves a qualified "Schema:property" name.
func (m *Model) Property(qname string) *Property {
	schema, name, ok := strings.Cut(qname, ":")
	if !ok {
		return nil
	}
	s := m.schemata[schema]
	if s == nil {
		return nil
	}
	return s.Property(name)
}

// Intern returns a canonical instance of s from the model's string table.
func (m *Model) Intern(s string) string {
	if v, ok := m.strings.Load(s); ok {
		return v.(string)
	}
	v, _ := m.strings.LoadOrStore(s, s)
	return v.(string)
}

func (m *Model) commonSchema(a, b *Schema) (*Schema, error) {
	key := schemaPair{a.name, b.name}
	if key.b < key.a {
		key.a, key.b = key.b, key.a
	}
	v, ok := m.common.Load(key)
	if !ok {
		v, _ = m.common.LoadOrStore(key, a.computeCommonWith(b))
	}
	if s := v.(*Schema); s != nil {
		return s, nil
	}
	return nil, errors.NewSchemaMismatch("No common schema found: %s and %s", a.name, b.name)
}
