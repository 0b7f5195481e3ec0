package model

// EdgeConfig is the bootstrap description of an edge schema.
type EdgeConfig struct {
	Source   string   `yaml:"source" json:"source"`
	Target   string   `yaml:"target" json:"target"`
	Caption  []string `yaml:"caption,omitempty" json:"caption,omitempty"`
	Label    string   `yaml:"label,omitempty" json:"label,omitempty"`
	Directed bool     `yaml:"directed,omitempty" json:"directed,omitempty"`
}

// TemporalExtentConfig names the properties bounding an entity in time.
type TemporalExtentConfig struct {
	Start []string `yaml:"start,omitempty" json:"start,omitempty"`
	End   []string `yaml:"end,omitempty" json:"end,omitempty"`
}

// Edge turns a schema into a graph-edge type: entities of the schema connect
// the entity in the source property to the entity in the target property.
type Edge struct {
	schema   *Schema
	source   string
	target   string
	caption  []string
	label    string
	directed bool
}

func newEdge(schema *Schema, cfg EdgeConfig) *Edge {
	label := cfg.Label
	if label == "" {
		label = schema.label
	}
	return &Edge{
		schema:   schema,
		source:   cfg.Source,
		target:   cfg.Target,
		caption:  append([]string(nil), cfg.Caption...),
		label:    label,
		directed: cfg.Directed,
	}
}

func (e *Edge) SourceProperty() *Property { return e.schema.Property(e.source) }
func (e *Edge) TargetProperty() *Property { return e.schema.Property(e.target) }

func (e *Edge) CaptionProperties() []*Property { return e.schema.lookup(e.caption) }

func (e *Edge) Label() string   { return e.label }
func (e *Edge) Directed() bool  { return e.directed }
func (e *Edge) Schema() *Schema { return e.schema }

// TemporalExtent lists the properties holding the start and end dates of an entity.
type TemporalExtent struct {
	schema *Schema
	start  []string
	end    []string
}

func (t *TemporalExtent) StartProperties() []*Property { return t.schema.lookup(t.start) }
func (t *TemporalExtent) EndProperties() []*Property   { return t.schema.lookup(t.end) }
