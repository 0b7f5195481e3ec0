// Package dataset names the sources statements come from and groups them
// into collections.
//
// A Dataset either holds entities directly (a leaf) or is a collection whose
// children are other datasets of the same Catalog. Children are stored by
// name and resolved on access, so a catalog can be assembled in any order.
package dataset

import (
	"go.uber.org/zap"

	"github.com/teranos/ftm/logger"
)

// Dataset is a named container of entities.
type Dataset struct {
	catalog  *Catalog
	name     string
	label    string
	children []string
}

func (d *Dataset) Name() string { return d.name }

// Label defaults to the name.
func (d *Dataset) Label() string { return d.label }

func (d *Dataset) SetLabel(label string) { d.label = label }

// ChildNames are the declared children, resolvable or not.
func (d *Dataset) ChildNames() []string { return append([]string(nil), d.children...) }

// SetChildren replaces the children of d.
func (d *Dataset) SetChildren(names []string) { d.children = append([]string(nil), names...) }

// IsCollection reports whether d declares any children.
func (d *Dataset) IsCollection() bool { return len(d.children) > 0 }

// Children resolves the child names against the catalog. Names the catalog
// does not know are logged and skipped.
func (d *Dataset) Children() []*Dataset {
	out := make([]*Dataset, 0, len(d.children))
	for _, name := range d.children {
		child, ok := d.catalog.Dataset(name)
		if !ok {
			datasetLogger().Warnw("Missing child dataset",
				logger.FieldDataset, d.name,
				"child", name)
			continue
		}
		out = append(out, child)
	}
	return out
}

// Datasets is d followed by every dataset reachable through its children, in
// depth-first order without repeats.
func (d *Dataset) Datasets() []*Dataset {
	var out []*Dataset
	seen := make(map[string]bool)
	var walk func(*Dataset)
	walk = func(ds *Dataset) {
		if seen[ds.name] {
			return
		}
		seen[ds.name] = true
		out = append(out, ds)
		for _, child := range ds.Children() {
			walk(child)
		}
	}
	walk(d)
	return out
}

// Leaves are the datasets of Datasets that are not collections. A leaf
// dataset is its own only leaf.
func (d *Dataset) Leaves() []*Dataset {
	var out []*Dataset
	for _, ds := range d.Datasets() {
		if !ds.IsCollection() {
			out = append(out, ds)
		}
	}
	return out
}

// LeafNames are the names of Leaves.
func (d *Dataset) LeafNames() []string {
	leaves := d.Leaves()
	names := make([]string, len(leaves))
	for i, ds := range leaves {
		names[i] = ds.name
	}
	return names
}

func (d *Dataset) String() string { return d.name }

func datasetLogger() *zap.SugaredLogger {
	return logger.ComponentLogger("dataset")
}
