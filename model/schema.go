package model

import (
	"sort"

	"github.com/teranos/ftm/errors"
)

// SchemaConfig is the bootstrap description of a schema. Properties keep the
// order in which they were declared.
type SchemaConfig struct {
	Name           string                `yaml:"-" json:"-"`
	Extends        []string              `yaml:"extends,omitempty" json:"extends,omitempty"`
	Label          string                `yaml:"label" json:"label"`
	Plural         string                `yaml:"plural" json:"plural"`
	Featured       []string              `yaml:"featured,omitempty" json:"featured,omitempty"`
	Required       []string              `yaml:"required,omitempty" json:"required,omitempty"`
	Caption        []string              `yaml:"caption,omitempty" json:"caption,omitempty"`
	Edge           *EdgeConfig           `yaml:"edge,omitempty" json:"edge,omitempty"`
	TemporalExtent *TemporalExtentConfig `yaml:"temporalExtent,omitempty" json:"temporalExtent,omitempty"`
	Properties     []PropertyConfig      `yaml:"-" json:"-"`
}

// Schema is a named entity class in a multi-parent inheritance graph.
//
// A Schema is built in two phases by FromConfig: first it is registered with
// only its own properties, then the model resolves the hierarchy and fills in
// the ancestor closure and the merged property map. Nothing on a Schema
// changes after FromConfig returns.
type Schema struct {
	model    *Model
	name     string
	label    string
	plural   string
	extends  []string
	featured []string
	required []string
	caption  []string

	own      map[string]*Property
	ownOrder []string

	edge     *Edge
	temporal *TemporalExtent

	// set by the resolution pass
	parents     []*Schema
	ancestors   []*Schema
	ancestorSet map[*Schema]struct{}
	properties  map[string]*Property
	sorted      []*Property
}

func newSchema(m *Model, cfg SchemaConfig) *Schema {
	label := cfg.Label
	if label == "" {
		label = cfg.Name
	}
	plural := cfg.Plural
	if plural == "" {
		plural = label
	}
	s := &Schema{
		model:    m,
		name:     cfg.Name,
		label:    label,
		plural:   plural,
		extends:  append([]string(nil), cfg.Extends...),
		featured: append([]string(nil), cfg.Featured...),
		required: append([]string(nil), cfg.Required...),
		caption:  append([]string(nil), cfg.Caption...),
		own:      make(map[string]*Property, len(cfg.Properties)),
	}
	if cfg.Edge != nil {
		s.edge = newEdge(s, *cfg.Edge)
	}
	if cfg.TemporalExtent != nil {
		s.temporal = &TemporalExtent{
			schema: s,
			start:  append([]string(nil), cfg.TemporalExtent.Start...),
			end:    append([]string(nil), cfg.TemporalExtent.End...),
		}
	}
	return s
}

func (s *Schema) addProperty(p *Property) error {
	if _, exists := s.own[p.name]; exists {
		return errors.NewInvalidConfiguration("duplicate property %s", p.qname)
	}
	s.own[p.name] = p
	s.ownOrder = append(s.ownOrder, p.name)
	return nil
}

func (s *Schema) Model() *Model  { return s.model }
func (s *Schema) Name() string   { return s.name }
func (s *Schema) Label() string  { return s.label }
func (s *Schema) Plural() string { return s.plural }

// ExtendsNames returns the declared parent names.
func (s *Schema) ExtendsNames() []string { return append([]string(nil), s.extends...) }

// Extends returns the direct parent schemata in declared order.
func (s *Schema) Extends() []*Schema { return append([]*Schema(nil), s.parents...) }

// Ancestors returns the ancestor closure, including the schema itself, in
// depth-first declared-parent order.
func (s *Schema) Ancestors() []*Schema { return append([]*Schema(nil), s.ancestors...) }

// IsA reports whether other is in the ancestor closure of s. Reflexive and transitive.
func (s *Schema) IsA(other *Schema) bool {
	if other == nil {
		return false
	}
	if other == s {
		return true
	}
	_, ok := s.ancestorSet[other]
	return ok
}

// Descendants returns every schema in the model that is an s, in model order.
func (s *Schema) Descendants() []*Schema {
	var out []*Schema
	for _, other := range s.model.order {
		if other.IsA(s) {
			out = append(out, other)
		}
	}
	return out
}

// CommonWith returns the schema that can hold the data of both s and other:
// the more specific one if they are related, otherwise the first schema in
// model order that descends from both. Results are memoized on the model.
func (s *Schema) CommonWith(other *Schema) (*Schema, error) {
	if other == nil || other == s {
		return s, nil
	}
	return s.model.commonSchema(s, other)
}

// computeCommonWith returns nil when the two schemata share no descendant.
func (s *Schema) computeCommonWith(other *Schema) *Schema {
	if s.IsA(other) {
		return s
	}
	if other.IsA(s) {
		return other
	}
	for _, third := range s.model.order {
		if third.IsA(s) && third.IsA(other) {
			return third
		}
	}
	return nil
}

// Property returns the (possibly inherited) property with the given name, or nil.
func (s *Schema) Property(name string) *Property {
	return s.properties[name]
}

// HasProperty reports whether the merged property map contains name.
func (s *Schema) HasProperty(name string) bool {
	_, ok := s.properties[name]
	return ok
}

// Properties returns all own and inherited properties, sorted by name.
func (s *Schema) Properties() []*Property {
	return append([]*Property(nil), s.sorted...)
}

// OwnProperties returns the properties declared on this schema, in declared order.
func (s *Schema) OwnProperties() []*Property {
	out := make([]*Property, 0, len(s.ownOrder))
	for _, name := range s.ownOrder {
		out = append(out, s.own[name])
	}
	return out
}

func (s *Schema) FeaturedProperties() []*Property { return s.lookup(s.featured) }
func (s *Schema) RequiredProperties() []*Property { return s.lookup(s.required) }

// CaptionProperties lists the properties consulted, in order, to pick an entity caption.
func (s *Schema) CaptionProperties() []*Property { return s.lookup(s.caption) }

// lookup resolves names against the merged property map, skipping unknown names.
func (s *Schema) lookup(names []string) []*Property {
	out := make([]*Property, 0, len(names))
	for _, name := range names {
		if p := s.properties[name]; p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Edge returns the edge descriptor, if this schema is an edge type.
func (s *Schema) Edge() (*Edge, bool) { return s.edge, s.edge != nil }
func (s *Schema) IsEdge() bool        { return s.edge != nil }

// TemporalExtent returns the start/end property descriptor, if declared.
func (s *Schema) TemporalExtent() (*TemporalExtent, bool) { return s.temporal, s.temporal != nil }
func (s *Schema) IsTemporal() bool                        { return s.temporal != nil }

func (s *Schema) String() string { return s.name }

// resolve computes the ancestor closure and merged property map. Parents must
// already be linked for every schema in the model.
func (s *Schema) resolve() {
	seen := make(map[*Schema]struct{})
	var walk func(*Schema)
	walk = func(cur *Schema) {
		if _, ok := seen[cur]; ok {
			return
		}
		seen[cur] = struct{}{}
		s.ancestors = append(s.ancestors, cur)
		for _, parent := range cur.parents {
			walk(parent)
		}
	}
	walk(s)
	s.ancestorSet = seen

	// first writer wins: own properties, then each parent depth-first
	s.properties = make(map[string]*Property)
	for _, ancestor := range s.ancestors {
		for _, name := range ancestor.ownOrder {
			if _, exists := s.properties[name]; !exists {
				s.properties[name] = ancestor.own[name]
			}
		}
	}
	s.sorted = make([]*Property, 0, len(s.properties))
	for _, p := range s.properties {
		s.sorted = append(s.sorted, p)
	}
	sort.Slice(s.sorted, func(i, j int) bool { return s.sorted[i].name < s.sorted[j].name })
}
