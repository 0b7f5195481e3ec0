package store

import (
	"io"
	"iter"
	"maps"
	"slices"
	"sync"

	"github.com/google/btree"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/teranos/ftm/entity"
	"github.com/teranos/ftm/errors"
	"github.com/teranos/ftm/logger"
	"github.com/teranos/ftm/model"
)

// btreeDegree is the node degree of the inverted-index sets.
const btreeDegree = 8

var _ View[*entity.ValueEntity] = (*MemoryView[*entity.ValueEntity])(nil)

// MemoryView keeps entities in a map keyed by id, plus an inverted index
// from every referenced id to the ids of the entities referencing it.
//
// Both maps are guarded by one lock, so Put, Delete and Inverted each see
// them in a consistent state. Reads return snapshots taken under the lock.
type MemoryView[E entity.Entity] struct {
	mu       sync.RWMutex
	entities map[string]E
	inverted map[string]*btree.BTreeG[string]

	metrics *memoryViewMetrics
	logger  *zap.SugaredLogger
}

type options struct {
	registerer prometheus.Registerer
}

// Option configures a MemoryView.
type Option func(*options)

// WithRegisterer registers the view's metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// NewMemoryView creates an empty view.
func NewMemoryView[E entity.Entity](opts ...Option) (*MemoryView[E], error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	metrics, err := newMemoryViewMetrics(o.registerer)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrView, "failed to register metrics: %v", err)
	}
	return &MemoryView[E]{
		entities: make(map[string]E),
		inverted: make(map[string]*btree.BTreeG[string]),
		metrics:  metrics,
		logger:   logger.ComponentLogger("store.memory"),
	}, nil
}

// Put stores e under its id, replacing any entity stored there before. The
// replaced entity's references are removed from the inverted index first.
func (v *MemoryView[E]) Put(e E) error {
	id := e.ID()
	if id == "" {
		return errors.NewInvalidArgument("cannot store an entity without id")
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	if old, ok := v.entities[id]; ok {
		v.unindex(id, old)
	}
	for _, ref := range entity.EntityValues(e) {
		set, ok := v.inverted[ref]
		if !ok {
			set = btree.NewOrderedG[string](btreeDegree)
			v.inverted[ref] = set
		}
		set.ReplaceOrInsert(id)
	}
	v.entities[id] = e

	v.metrics.puts.Inc()
	v.updateGauges()
	return nil
}

// Delete removes the entity with the id and its inverted index entries.
// It reports whether an entity was removed.
func (v *MemoryView[E]) Delete(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	old, ok := v.entities[id]
	if !ok {
		return false
	}
	delete(v.entities, id)
	v.unindex(id, old)

	v.metrics.deletes.Inc()
	v.updateGauges()
	return true
}

// unindex drops id from the set of every id old references. Empty sets are
// removed. Callers hold the write lock.
func (v *MemoryView[E]) unindex(id string, old E) {
	for _, ref := range entity.EntityValues(old) {
		set, ok := v.inverted[ref]
		if !ok {
			continue
		}
		set.Delete(id)
		if set.Len() == 0 {
			delete(v.inverted, ref)
		}
	}
}

func (v *MemoryView[E]) updateGauges() {
	v.metrics.entities.Set(float64(len(v.entities)))
	v.metrics.inverted.Set(float64(len(v.inverted)))
}

// Clear removes every entity.
func (v *MemoryView[E]) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	clear(v.entities)
	clear(v.inverted)
	v.updateGauges()
}

// Len is the number of stored entities.
func (v *MemoryView[E]) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.entities)
}

// InvertedKeys is the number of referenced ids in the inverted index.
func (v *MemoryView[E]) InvertedKeys() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.inverted)
}

func (v *MemoryView[E]) HasEntity(id string) (bool, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.entities[id]
	return ok, nil
}

func (v *MemoryView[E]) GetEntity(id string) (E, bool, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	e, ok := v.entities[id]
	return e, ok, nil
}

// AllEntities iterates a snapshot of the stored entities, in no particular order.
func (v *MemoryView[E]) AllEntities() (iter.Seq[E], error) {
	v.mu.RLock()
	snapshot := slices.Collect(maps.Values(v.entities))
	v.mu.RUnlock()
	return slices.Values(snapshot), nil
}

// Inverted iterates the entities referencing id, ordered by their ids. Index
// entries whose entity is missing or no longer references id are skipped.
func (v *MemoryView[E]) Inverted(id string) (iter.Seq[Adjacency[E]], error) {
	v.mu.RLock()
	var out []Adjacency[E]
	if set, ok := v.inverted[id]; ok {
		out = make([]Adjacency[E], 0, set.Len())
		set.Ascend(func(ref string) bool {
			neighbour, ok := v.entities[ref]
			if !ok {
				v.dropDangling(id, ref, "missing entity")
				return true
			}
			adj, err := OfInverse(id, neighbour)
			if err != nil {
				v.dropDangling(id, ref, "no referencing property")
				return true
			}
			out = append(out, adj)
			return true
		})
	}
	v.mu.RUnlock()
	return slices.Values(out), nil
}

func (v *MemoryView[E]) dropDangling(id, ref, reason string) {
	v.metrics.dangling.Inc()
	v.logger.Warnw("Dropping dangling inverted index entry",
		logger.FieldEntityID, id,
		"referent", ref,
		"reason", reason)
}

// Close clears the view.
func (v *MemoryView[E]) Close() error {
	v.Clear()
	return nil
}

// LoadValueEntities fills a new MemoryView from newline-delimited wire entities.
// Entities without an id cannot be addressed and are skipped with a warning.
func LoadValueEntities(m *model.Model, r io.Reader, opts ...Option) (*MemoryView[*entity.ValueEntity], error) {
	view, err := NewMemoryView[*entity.ValueEntity](opts...)
	if err != nil {
		return nil, err
	}
	index := 0
	for e, err := range entity.ReadValueEntities(m, r) {
		index++
		if err != nil {
			return nil, err
		}
		if e.ID() == "" {
			view.logger.Warnw("Skipping entity without id",
				logger.FieldOperation, "load",
				logger.FieldSchema, e.Schema().Name(),
				"index", index)
			continue
		}
		if err := view.Put(e); err != nil {
			return nil, err
		}
	}
	view.logger.Debugw("Loaded entities", logger.FieldOperation, "load", logger.FieldCount, view.Len())
	return view, nil
}
