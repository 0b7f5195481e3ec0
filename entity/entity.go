// Package entity holds the two representations of an entity: StatementEntity,
// the mutable aggregate of statements sharing a canonical id, and
// ValueEntity, the denormalized snapshot that is serialized and stored.
package entity

import (
	"sort"

	"go.uber.org/zap"

	"github.com/teranos/ftm/logger"
	"github.com/teranos/ftm/model"
)

// Entity is the capability set shared by StatementEntity and ValueEntity.
// Views and adjacency traversal are written against this interface.
type Entity interface {
	ID() string
	Schema() *model.Schema
	Caption() string
	Datasets() []string
	Referents() []string
	FirstSeen() int64
	LastSeen() int64
	LastChange() int64
	Values(p *model.Property) []string
	DefinedProperties() []*model.Property
}

// TypeValues collects the distinct values of every defined property of the
// given type, in property order. With matchable set, properties that are
// not matchable are skipped.
func TypeValues(e Entity, t *model.PropertyType, matchable bool) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range e.DefinedProperties() {
		if p.Type() != t {
			continue
		}
		if matchable && !p.Matchable() {
			continue
		}
		for _, v := range e.Values(p) {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// EntityValues returns the distinct values of every entity-typed property,
// i.e. the ids this entity references.
func EntityValues(e Entity) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, p := range e.DefinedProperties() {
		if !p.Type().IsEntity() {
			continue
		}
		for _, v := range e.Values(p) {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func componentLogger() *zap.SugaredLogger {
	return logger.ComponentLogger("entity")
}

// sortedSet returns the distinct non-empty values, sorted.
func sortedSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}
