package store

import (
	"slices"

	"github.com/teranos/ftm/entity"
	"github.com/teranos/ftm/errors"
	"github.com/teranos/ftm/model"
)

// Adjacency is one edge of the entity graph seen from a given entity: the
// property carrying the link and the entity on the other end.
type Adjacency[E entity.Entity] struct {
	Property *model.Property
	Entity   E
}

// OfInverse builds the inbound adjacency from e to the entity id: the first
// entity-typed property of e whose values contain id. It fails with
// ErrNotFound when e does not reference id.
func OfInverse[E entity.Entity](id string, e E) (Adjacency[E], error) {
	for _, p := range e.DefinedProperties() {
		if !p.Type().IsEntity() {
			continue
		}
		if slices.Contains(e.Values(p), id) {
			return Adjacency[E]{Property: p, Entity: e}, nil
		}
	}
	return Adjacency[E]{}, errors.NewNotFoundError("entity %s does not reference %s", e.ID(), id)
}
