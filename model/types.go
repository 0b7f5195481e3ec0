package model

import (
	"github.com/teranos/ftm/errors"
)

// Well-known property type names the core relies on.
const (
	TypeEntity     = "entity"
	TypeName       = "name"
	TypeCountry    = "country"
	TypeIdentifier = "identifier"
)

// TypeConfig is the bootstrap description of a property type.
type TypeConfig struct {
	Name        string            `yaml:"-" json:"-"`
	Label       string            `yaml:"label" json:"label"`
	Plural      string            `yaml:"plural" json:"plural"`
	Description string            `yaml:"description" json:"description"`
	Group       string            `yaml:"group,omitempty" json:"group,omitempty"`
	MaxLength   int               `yaml:"maxLength" json:"maxLength"`
	Matchable   bool              `yaml:"matchable,omitempty" json:"matchable,omitempty"`
	Pivot       bool              `yaml:"pivot,omitempty" json:"pivot,omitempty"`
	Values      map[string]string `yaml:"values,omitempty" json:"values,omitempty"`
}

// PropertyType describes a primitive kind of data (string, name, country, entity, ...).
// Values are immutable once created.
type PropertyType struct {
	name        string
	label       string
	plural      string
	description string
	group       string
	maxLength   int
	matchable   bool
	pivot       bool
	values      map[string]string
}

// NewPropertyType builds a property type from its bootstrap description.
// Label defaults to the name and plural defaults to the label.
func NewPropertyType(cfg TypeConfig) (*PropertyType, error) {
	if cfg.Name == "" {
		return nil, errors.NewInvalidConfiguration("property type name cannot be empty")
	}
	label := cfg.Label
	if label == "" {
		label = cfg.Name
	}
	plural := cfg.Plural
	if plural == "" {
		plural = label
	}
	var values map[string]string
	if cfg.Values != nil {
		values = make(map[string]string, len(cfg.Values))
		for k, v := range cfg.Values {
			values[k] = v
		}
	}
	return &PropertyType{
		name:        cfg.Name,
		label:       label,
		plural:      plural,
		description: cfg.Description,
		group:       cfg.Group,
		maxLength:   cfg.MaxLength,
		matchable:   cfg.Matchable,
		pivot:       cfg.Pivot,
		values:      values,
	}, nil
}

func (t *PropertyType) Name() string        { return t.name }
func (t *PropertyType) Label() string       { return t.label }
func (t *PropertyType) Plural() string      { return t.plural }
func (t *PropertyType) Description() string { return t.description }
func (t *PropertyType) MaxLength() int      { return t.maxLength }
func (t *PropertyType) Matchable() bool     { return t.matchable }
func (t *PropertyType) Pivot() bool         { return t.pivot }

// Group returns the grouping tag of the type, if it has one.
func (t *PropertyType) Group() (string, bool) {
	return t.group, t.group != ""
}

// Values returns a copy of the enumerated value set (name -> label), or nil.
func (t *PropertyType) Values() map[string]string {
	if t.values == nil {
		return nil
	}
	out := make(map[string]string, len(t.values))
	for k, v := range t.values {
		out[k] = v
	}
	return out
}

// ValueLabel returns the label of an enumerated value.
func (t *PropertyType) ValueLabel(value string) (string, bool) {
	label, ok := t.values[value]
	return label, ok
}

// IsEnum is true when the type carries a non-empty enumerated value set.
func (t *PropertyType) IsEnum() bool       { return len(t.values) > 0 }
func (t *PropertyType) IsEntity() bool     { return t.name == TypeEntity }
func (t *PropertyType) IsName() bool       { return t.name == TypeName }
func (t *PropertyType) IsCountry() bool    { return t.name == TypeCountry }
func (t *PropertyType) IsIdentifier() bool { return t.name == TypeIdentifier }

func (t *PropertyType) String() string { return t.name }
