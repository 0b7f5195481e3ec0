package model

import (
	"bytes"
	_ "embed"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/teranos/ftm/errors"
)

//go:embed default.yaml
var defaultModel []byte

var (
	defaultOnce sync.Once
	defaultInst *Model
	defaultErr  error
)

// Default returns the model compiled into the binary. It is parsed once.
func Default() (*Model, error) {
	defaultOnce.Do(func() {
		defaultInst, defaultErr = Load(bytes.NewReader(defaultModel))
	})
	return defaultInst, defaultErr
}

// LoadFile reads a bootstrap document from disk. JSON documents are accepted
// as well as YAML.
func LoadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open model %s", path)
	}
	defer f.Close()
	m, err := Load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load model %s", path)
	}
	return m, nil
}

// Load parses a bootstrap document with top-level "types" and "schemata"
// mappings. Declaration order of both mappings is kept.
func Load(r io.Reader) (*Model, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.NewInvalidConfiguration("failed to parse model: %v", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, errors.NewInvalidConfiguration("model document must be a mapping")
	}

	var types []TypeConfig
	var schemata []SchemaConfig
	err := eachPair(root, func(key string, value *yaml.Node) error {
		switch key {
		case "types":
			return eachPair(value, func(name string, node *yaml.Node) error {
				var cfg TypeConfig
				if err := node.Decode(&cfg); err != nil {
					return errors.NewInvalidConfiguration("type %s: %v", name, err)
				}
				cfg.Name = name
				types = append(types, cfg)
				return nil
			})
		case "schemata":
			return eachPair(value, func(name string, node *yaml.Node) error {
				cfg, err := decodeSchema(name, node)
				if err != nil {
					return err
				}
				schemata = append(schemata, cfg)
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromConfig(types, schemata)
}

func decodeSchema(name string, node *yaml.Node) (SchemaConfig, error) {
	var cfg SchemaConfig
	if err := node.Decode(&cfg); err != nil {
		return cfg, errors.NewInvalidConfiguration("schema %s: %v", name, err)
	}
	cfg.Name = name
	err := eachPair(node, func(key string, value *yaml.Node) error {
		if key != "properties" {
			return nil
		}
		return eachPair(value, func(prop string, pnode *yaml.Node) error {
			var pcfg PropertyConfig
			if err := pnode.Decode(&pcfg); err != nil {
				return errors.NewInvalidConfiguration("property %s:%s: %v", name, prop, err)
			}
			pcfg.Name = prop
			cfg.Properties = append(cfg.Properties, pcfg)
			return nil
		})
	})
	return cfg, err
}

// eachPair walks a mapping node in document order. A null node is an empty mapping.
func eachPair(node *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return errors.NewInvalidConfiguration("expected a mapping at line %d", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := fn(node.Content[i].Value, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}
