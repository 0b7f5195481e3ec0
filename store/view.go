// Package store is the indexed entity store and the graph traversal built on it.
//
// View is the capability set any backing store provides. Outbound and
// Adjacent are derived from those primitives alone, so they work unchanged
// over any View implementation.
package store

import (
	"iter"

	"go.uber.org/zap"

	"github.com/teranos/ftm/entity"
	"github.com/teranos/ftm/logger"
)

// View is a read interface over a set of entities.
type View[E entity.Entity] interface {
	// HasEntity reports whether an entity with the id is stored.
	HasEntity(id string) (bool, error)
	// GetEntity returns the entity with the id, and false if there is none.
	GetEntity(id string) (E, bool, error)
	// AllEntities iterates every stored entity.
	AllEntities() (iter.Seq[E], error)
	// Inverted iterates the entities referencing id through one of their
	// own entity-typed properties.
	Inverted(id string) (iter.Seq[Adjacency[E]], error)
	Close() error
}

// Outbound follows every entity-typed property value of e. Values that do
// not resolve to a stored entity are dropped; lookup errors are logged and
// dropped as well.
func Outbound[E entity.Entity](v View[E], e E) iter.Seq[Adjacency[E]] {
	return func(yield func(Adjacency[E]) bool) {
		for _, p := range e.DefinedProperties() {
			if !p.Type().IsEntity() {
				continue
			}
			for _, value := range e.Values(p) {
				other, ok, err := v.GetEntity(value)
				if err != nil {
					viewLogger().Warnw("Failed to resolve outbound reference",
						logger.FieldEntityID, e.ID(),
						logger.FieldProperty, p.QName(),
						logger.FieldValue, value,
						logger.FieldError, err)
					continue
				}
				if !ok {
					continue
				}
				if !yield(Adjacency[E]{Property: p, Entity: other}) {
					return
				}
			}
		}
	}
}

// Adjacent is Outbound followed by Inverted for the entity id. Entities
// without an id only have outbound adjacencies.
func Adjacent[E entity.Entity](v View[E], e E) (iter.Seq[Adjacency[E]], error) {
	outbound := Outbound(v, e)
	if e.ID() == "" {
		return outbound, nil
	}
	inverted, err := v.Inverted(e.ID())
	if err != nil {
		return nil, err
	}
	return func(yield func(Adjacency[E]) bool) {
		for adj := range outbound {
			if !yield(adj) {
				return
			}
		}
		for adj := range inverted {
			if !yield(adj) {
				return
			}
		}
	}, nil
}

func viewLogger() *zap.SugaredLogger {
	return logger.ComponentLogger("store")
}
