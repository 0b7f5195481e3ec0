package entity

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"iter"
	"sort"
	"sync/atomic"

	"github.com/teranos/ftm/errors"
	"github.com/teranos/ftm/logger"
	"github.com/teranos/ftm/model"
)

// maxLine bounds a single JSON entity when reading newline-delimited streams.
const maxLine = 40 * 1024 * 1024

// ValueEntity is the denormalized snapshot of an entity: values per
// property, provenance sets and seen-timestamps, with no statement history.
//
// It is populated once by its producer and read-only afterwards; only the
// caption is resolved lazily, and that is safe for concurrent readers.
type ValueEntity struct {
	id     string
	schema *model.Schema

	caption atomic.Pointer[string]

	props map[*model.Property][]string
	order []*model.Property

	datasets   []string
	referents  []string
	firstSeen  int64
	lastSeen   int64
	lastChange int64
}

// NewValueEntity creates an empty snapshot.
func NewValueEntity(id string, schema *model.Schema) *ValueEntity {
	return &ValueEntity{
		id:     id,
		schema: schema,
		props:  make(map[*model.Property][]string),
	}
}

func (e *ValueEntity) ID() string            { return e.id }
func (e *ValueEntity) Schema() *model.Schema { return e.schema }

// AddValue appends value to the property unless it is already present.
// Enum values are interned in the model's string table.
func (e *ValueEntity) AddValue(p *model.Property, value string) {
	if p == nil {
		return
	}
	if p.IsEnum() {
		value = p.Schema().Model().Intern(value)
	}
	values, ok := e.props[p]
	if !ok {
		e.order = append(e.order, p)
	}
	for _, v := range values {
		if v == value {
			return
		}
	}
	e.props[p] = append(values, value)
}

// AddValueByName resolves the property on the entity schema first.
func (e *ValueEntity) AddValueByName(name, value string) error {
	p := e.schema.Property(name)
	if p == nil {
		return errors.NewInvalidSchema("Invalid property: %s", name)
	}
	e.AddValue(p, value)
	return nil
}

// Has reports whether the property holds any value.
func (e *ValueEntity) Has(p *model.Property) bool {
	_, ok := e.props[p]
	return ok
}

// Values returns the values of a property in insertion order.
func (e *ValueEntity) Values(p *model.Property) []string {
	return append([]string{}, e.props[p]...)
}

func (e *ValueEntity) DefinedProperties() []*model.Property {
	return append([]*model.Property(nil), e.order...)
}

// Caption is resolved from the schema's caption properties on first use and
// cached; SetCaption overrides it.
func (e *ValueEntity) Caption() string {
	if c := e.caption.Load(); c != nil {
		return *c
	}
	picked := e.pickCaption()
	e.caption.CompareAndSwap(nil, &picked)
	return *e.caption.Load()
}

func (e *ValueEntity) pickCaption() string {
	for _, p := range e.schema.CaptionProperties() {
		if values := e.props[p]; len(values) > 0 {
			return values[0]
		}
	}
	return e.schema.Label()
}

func (e *ValueEntity) SetCaption(caption string) { e.caption.Store(&caption) }

func (e *ValueEntity) Datasets() []string  { return append([]string(nil), e.datasets...) }
func (e *ValueEntity) Referents() []string { return append([]string(nil), e.referents...) }
func (e *ValueEntity) FirstSeen() int64    { return e.firstSeen }
func (e *ValueEntity) LastSeen() int64     { return e.lastSeen }
func (e *ValueEntity) LastChange() int64   { return e.lastChange }

// SetDatasets stores the distinct dataset names, sorted.
func (e *ValueEntity) SetDatasets(datasets []string) { e.datasets = sortedSet(datasets) }

// SetReferents stores the distinct referent ids, sorted.
func (e *ValueEntity) SetReferents(referents []string) { e.referents = sortedSet(referents) }

func (e *ValueEntity) SetFirstSeen(epoch int64)  { e.firstSeen = epoch }
func (e *ValueEntity) SetLastSeen(epoch int64)   { e.lastSeen = epoch }
func (e *ValueEntity) SetLastChange(epoch int64) { e.lastChange = epoch }

// wireEntity is the JSON contract. Only schema and caption are always present.
type wireEntity struct {
	ID         string              `json:"id,omitempty"`
	Schema     string              `json:"schema"`
	Caption    string              `json:"caption"`
	Properties map[string][]string `json:"properties,omitempty"`
	Datasets   []string            `json:"datasets,omitempty"`
	Referents  []string            `json:"referents,omitempty"`
	FirstSeen  string              `json:"first_seen,omitempty"`
	LastSeen   string              `json:"last_seen,omitempty"`
	LastChange string              `json:"last_change,omitempty"`
}

func formatSeen(epoch int64) string {
	if epoch <= 0 {
		return ""
	}
	return model.FormatTimestamp(epoch)
}

func parseSeen(value string) (int64, error) {
	if value == "" {
		return 0, nil
	}
	return model.ParseTimestamp(value)
}

// MarshalJSON renders the wire format, omitting empty optional fields.
func (e *ValueEntity) MarshalJSON() ([]byte, error) {
	w := wireEntity{
		ID:         e.id,
		Schema:     e.schema.Name(),
		Caption:    e.Caption(),
		Datasets:   e.datasets,
		Referents:  e.referents,
		FirstSeen:  formatSeen(e.firstSeen),
		LastSeen:   formatSeen(e.lastSeen),
		LastChange: formatSeen(e.lastChange),
	}
	if len(e.order) > 0 {
		w.Properties = make(map[string][]string, len(e.order))
		for _, p := range e.order {
			w.Properties[p.Name()] = e.props[p]
		}
	}
	return json.Marshal(w)
}

// DecodeValueEntity parses one wire-format entity. An unknown schema fails
// with ErrInvalidSchema; unknown properties are skipped with a warning.
func DecodeValueEntity(m *model.Model, data []byte) (*ValueEntity, error) {
	var w wireEntity
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, errors.Wrap(err, "failed to decode entity")
	}
	schema := m.Schema(w.Schema)
	if schema == nil {
		return nil, errors.NewInvalidSchema("Invalid schema: %s", w.Schema)
	}
	e := NewValueEntity(w.ID, schema)

	names := make([]string, 0, len(w.Properties))
	for name := range w.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p := schema.Property(name)
		if p == nil {
			componentLogger().Warnw("Invalid property",
				logger.FieldProperty, name,
				logger.FieldEntityID, w.ID,
				logger.FieldSchema, w.Schema)
			continue
		}
		for _, value := range w.Properties[name] {
			e.AddValue(p, value)
		}
	}

	if w.Caption != "" {
		e.SetCaption(w.Caption)
	}
	datasets := make([]string, 0, len(w.Datasets))
	for _, d := range w.Datasets {
		datasets = append(datasets, m.Intern(d))
	}
	e.SetDatasets(datasets)
	e.SetReferents(w.Referents)

	var err error
	if e.firstSeen, err = parseSeen(w.FirstSeen); err != nil {
		return nil, errors.Wrap(err, "first_seen")
	}
	if e.lastSeen, err = parseSeen(w.LastSeen); err != nil {
		return nil, errors.Wrap(err, "last_seen")
	}
	if e.lastChange, err = parseSeen(w.LastChange); err != nil {
		return nil, errors.Wrap(err, "last_change")
	}
	return e, nil
}

// ReadValueEntities decodes newline-delimited wire entities. Blank lines are
// skipped. Iteration stops after the first error.
func ReadValueEntities(m *model.Model, r io.Reader) iter.Seq2[*ValueEntity, error] {
	return func(yield func(*ValueEntity, error) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
		line := 0
		for scanner.Scan() {
			line++
			data := scanner.Bytes()
			if len(bytes.TrimSpace(data)) == 0 {
				continue
			}
			e, err := DecodeValueEntity(m, data)
			if err != nil {
				yield(nil, errors.Wrapf(err, "line %d", line))
				return
			}
			if !yield(e, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(nil, errors.Wrap(err, "failed to read entities"))
		}
	}
}
