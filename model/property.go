package model

import (
	"github.com/teranos/ftm/errors"
)

// PropertyConfig is the bootstrap description of a property. Nil MaxLength and
// Matchable inherit the values of the property type.
type PropertyConfig struct {
	Name      string `yaml:"-" json:"-"`
	Type      string `yaml:"type" json:"type"`
	Label     string `yaml:"label" json:"label"`
	MaxLength *int   `yaml:"maxLength,omitempty" json:"maxLength,omitempty"`
	Matchable *bool  `yaml:"matchable,omitempty" json:"matchable,omitempty"`
	Stub      bool   `yaml:"stub,omitempty" json:"stub,omitempty"`
	Reverse   string `yaml:"reverse,omitempty" json:"reverse,omitempty"`
	Range     string `yaml:"range,omitempty" json:"range,omitempty"`
}

// Property is a named, typed attribute slot owned by exactly one schema.
// Two properties are the same property iff their qualified names are equal;
// a Model holds exactly one *Property per qualified name, so pointer equality
// can be used.
type Property struct {
	schema    *Schema
	name      string
	qname     string
	label     string
	typ       *PropertyType
	maxLength int
	matchable bool
	stub      bool
	reverse   string
	rangeName string
}

func newProperty(schema *Schema, cfg PropertyConfig, typ *PropertyType) (*Property, error) {
	qname := schema.name + ":" + cfg.Name
	if typ == nil {
		return nil, errors.NewInvalidConfiguration("property %s has unknown type %q", qname, cfg.Type)
	}
	if cfg.Stub && !typ.IsEntity() {
		return nil, errors.NewInvalidConfiguration("only entity properties can be stubs: %s (%s)", qname, typ.Name())
	}
	if typ.IsEntity() {
		if cfg.Reverse == "" {
			return nil, errors.NewInvalidConfiguration("entity property %s must have a reverse property", qname)
		}
		if cfg.Range == "" {
			return nil, errors.NewInvalidConfiguration("entity property %s must have a range", qname)
		}
	}
	label := cfg.Label
	if label == "" {
		label = cfg.Name
	}
	maxLength := typ.MaxLength()
	if cfg.MaxLength != nil {
		maxLength = *cfg.MaxLength
	}
	matchable := typ.Matchable()
	if cfg.Matchable != nil {
		matchable = *cfg.Matchable
	}
	return &Property{
		schema:    schema,
		name:      cfg.Name,
		qname:     qname,
		label:     label,
		typ:       typ,
		maxLength: maxLength,
		matchable: matchable,
		stub:      cfg.Stub,
		reverse:   cfg.Reverse,
		rangeName: cfg.Range,
	}, nil
}

func (p *Property) Name() string        { return p.name }
func (p *Property) QName() string       { return p.qname }
func (p *Property) Label() string       { return p.label }
func (p *Property) Type() *PropertyType { return p.typ }
func (p *Property) Schema() *Schema     { return p.schema }
func (p *Property) MaxLength() int      { return p.maxLength }
func (p *Property) Matchable() bool     { return p.matchable }
func (p *Property) Stub() bool          { return p.stub }
func (p *Property) IsEnum() bool        { return p.typ.IsEnum() }

// RangeName is the declared range schema name of an entity property.
func (p *Property) RangeName() string { return p.rangeName }

// ReverseName is the declared reverse property name of an entity property.
func (p *Property) ReverseName() string { return p.reverse }

// Range resolves the range schema through the owning model. A missing range
// is reported as absent, never as an error.
func (p *Property) Range() (*Schema, bool) {
	if p.rangeName == "" {
		return nil, false
	}
	s := p.schema.model.Schema(p.rangeName)
	return s, s != nil
}

// Reverse resolves the reverse property on the range schema. Like Range, a
// missing schema or property is reported as absent.
func (p *Property) Reverse() (*Property, bool) {
	if p.reverse == "" {
		return nil, false
	}
	rng, ok := p.Range()
	if !ok {
		return nil, false
	}
	rev := rng.Property(p.reverse)
	return rev, rev != nil
}

func (p *Property) String() string { return p.qname }
