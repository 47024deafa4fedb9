package knowledge

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader produces a fully populated Base. Implementations may read from an
// embedded rule set, a YAML document or a database; callers only see the
// capability.
type Loader interface {
	Load(ctx context.Context) (*Base, error)
}

// StaticLoader serves the embedded canonical rule set. It is the default
// loader and the one unit tests use.
type StaticLoader struct{}

// Load returns a Base built from the canonical tables.
func (StaticLoader) Load(ctx context.Context) (*Base, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	base := NewBase(canonicalPalaces, canonicalBeasts, canonicalKin, canonicalBranches, canonicalRelations)
	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("static rule set: %w", err)
	}
	return base, nil
}

// fileDocument is the YAML shape FileLoader reads. Relations are listed as
// triples instead of a nested map so the document stays human-editable.
type fileDocument struct {
	Palaces   []Palace `yaml:"palaces"`
	Beasts    []Beast  `yaml:"beasts"`
	Kin       []Kin    `yaml:"kin"`
	Branches  []Branch `yaml:"branches"`
	Relations []struct {
		From     Element  `yaml:"from"`
		To       Element  `yaml:"to"`
		Relation Relation `yaml:"relation"`
	} `yaml:"relations"`
}

// FileLoader reads a rule set from a YAML file, falling back to nothing: a
// broken or incomplete document is a load error, never a partial base.
type FileLoader struct {
	Path string
}

// Load parses the YAML document at Path into a Base.
func (l FileLoader) Load(ctx context.Context) (*Base, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("read rule set %s: %w", l.Path, err)
	}

	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse rule set %s: %w", l.Path, err)
	}

	relations := make(map[Element]map[Element]Relation)
	for _, r := range doc.Relations {
		row, ok := relations[r.From]
		if !ok {
			row = make(map[Element]Relation)
			relations[r.From] = row
		}
		row[r.To] = r.Relation
	}

	base := NewBase(doc.Palaces, doc.Beasts, doc.Kin, doc.Branches, relations)
	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("rule set %s: %w", l.Path, err)
	}
	return base, nil
}
