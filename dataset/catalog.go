package dataset

import (
	"io"
	"os"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/teranos/ftm/errors"
)

// Catalog holds datasets by name.
type Catalog struct {
	mu       sync.RWMutex
	datasets map[string]*Dataset
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{datasets: make(map[string]*Dataset)}
}

// Dataset looks up a dataset by name.
func (c *Catalog) Dataset(name string) (*Dataset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.datasets[name]
	return d, ok
}

// Get is Dataset returning ErrNotFound for an unknown name.
func (c *Catalog) Get(name string) (*Dataset, error) {
	d, ok := c.Dataset(name)
	if !ok {
		return nil, errors.NewNotFoundError("unknown dataset: %s", name)
	}
	return d, nil
}

// Ensure returns the dataset with the name, creating it with the given label
// if it does not exist yet. An empty label defaults to the name.
func (c *Catalog) Ensure(name, label string) *Dataset {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d, ok := c.datasets[name]; ok {
		return d
	}
	if label == "" {
		label = name
	}
	d := &Dataset{catalog: c, name: name, label: label}
	c.datasets[name] = d
	return d
}

// Names lists the catalog's dataset names in sorted order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.datasets))
	for name := range c.datasets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len is the number of datasets.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.datasets)
}

type catalogFile struct {
	Datasets []datasetEntry `yaml:"datasets"`
}

type datasetEntry struct {
	Name     string   `yaml:"name"`
	Label    string   `yaml:"label"`
	Title    string   `yaml:"title"`
	Children []string `yaml:"children"`
	Datasets []string `yaml:"datasets"`
}

// LoadCatalog reads a YAML catalog of the form
//
//	datasets:
//	  - name: all
//	    label: Everything
//	    children: [sanctions, peps]
//
// "title" is accepted as the label and "datasets" as extra children.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var file catalogFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return nil, errors.NewInvalidConfiguration("failed to parse catalog: %v", err)
	}

	c := NewCatalog()
	for i, entry := range file.Datasets {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return nil, errors.NewInvalidConfiguration("dataset %d has no name", i)
		}
		if _, ok := c.Dataset(name); ok {
			return nil, errors.NewInvalidConfiguration("duplicate dataset: %s", name)
		}
		label := entry.Label
		if label == "" {
			label = entry.Title
		}
		d := c.Ensure(name, label)
		var children []string
		for _, child := range append(entry.Children, entry.Datasets...) {
			if child != name && !slices.Contains(children, child) {
				children = append(children, child)
			}
		}
		d.SetChildren(children)
	}
	return c, nil
}

// LoadCatalogFile reads a YAML catalog from path.
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open catalog %s", path)
	}
	defer f.Close()
	return LoadCatalog(f)
}
