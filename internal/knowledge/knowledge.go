// Package knowledge holds the static rule set every divination computation
// reads from: the six palaces, six guardian beasts, six kinship roles, twelve
// earthly branches and the five-element relation matrix. A Base is loaded once
// at startup and is read-only afterwards, so it is shared across concurrent
// requests without locking.
package knowledge

import "fmt"

// Element is one of the five phases (五行).
type Element string

const (
	ElementWood  Element = "木"
	ElementFire  Element = "火"
	ElementEarth Element = "土"
	ElementMetal Element = "金"
	ElementWater Element = "水"
)

// Relation describes how one element relates to another, seen from the first
// element's side.
type Relation string

const (
	RelationGenerates   Relation = "生"  // A generates B
	RelationGeneratedBy Relation = "生我" // B generates A
	RelationOvercomes   Relation = "克"  // A overcomes B
	RelationOvercomeBy  Relation = "克我" // B overcomes A
	RelationSame        Relation = "同"  // same element
	RelationNone        Relation = "无关"
)

// Palace is one of the six fixed positions (大安..空亡).
type Palace struct {
	Name       string            `yaml:"name"`
	Position   int               `yaml:"position"`
	Element    Element           `yaml:"element"`
	Meaning    string            `yaml:"meaning"`
	Attributes map[string]string `yaml:"attributes,omitempty"`
}

// Beast is one of the six guardian beasts (青龙..玄武).
type Beast struct {
	Name            string  `yaml:"name"`
	Position        int     `yaml:"position"`
	Element         Element `yaml:"element"`
	Characteristics string  `yaml:"characteristics"`
	Meaning         string  `yaml:"meaning"`
}

// Kin is one of the six kinship roles used by the kinship lattice.
type Kin struct {
	Name         string `yaml:"name"`
	Relationship string `yaml:"relationship"`
	Meaning      string `yaml:"meaning"`
	UsageContext string `yaml:"usage_context,omitempty"`
}

// Branch is one of the twelve earthly branches. Window is the two-hour wall
// clock window the branch covers; StartHour of 23 wraps past midnight.
type Branch struct {
	Name      string  `yaml:"name"`
	Order     int     `yaml:"order"`
	Element   Element `yaml:"element"`
	StartHour int     `yaml:"start_hour"`
	Window    string  `yaml:"window"`
	Meaning   string  `yaml:"meaning"`
}

// Base is the loaded knowledge base. All lookups are O(1) map reads; the maps
// are built once by the loader and never mutated afterwards.
type Base struct {
	palaces  []Palace
	beasts   []Beast
	kin      []Kin
	branches []Branch

	palaceByPos  map[int]Palace
	beastByPos   map[int]Beast
	kinByName    map[string]Kin
	branchByName map[string]Branch
	relations    map[Element]map[Element]Relation
}

// NewBase assembles a Base from raw slices and a relation matrix. Loaders call
// this; engines only consume the accessors.
func NewBase(palaces []Palace, beasts []Beast, kin []Kin, branches []Branch, relations map[Element]map[Element]Relation) *Base {
	b := &Base{
		palaces:      palaces,
		beasts:       beasts,
		kin:          kin,
		branches:     branches,
		palaceByPos:  make(map[int]Palace, len(palaces)),
		beastByPos:   make(map[int]Beast, len(beasts)),
		kinByName:    make(map[string]Kin, len(kin)),
		branchByName: make(map[string]Branch, len(branches)),
		relations:    relations,
	}
	for _, p := range palaces {
		b.palaceByPos[p.Position] = p
	}
	for _, s := range beasts {
		b.beastByPos[s.Position] = s
	}
	for _, k := range kin {
		b.kinByName[k.Name] = k
	}
	for _, br := range branches {
		b.branchByName[br.Name] = br
	}
	return b
}

// PalaceAt returns the palace at position 1..6.
func (b *Base) PalaceAt(pos int) (Palace, bool) {
	p, ok := b.palaceByPos[pos]
	return p, ok
}

// BeastAt returns the beast at canonical position 1..6.
func (b *Base) BeastAt(pos int) (Beast, bool) {
	s, ok := b.beastByPos[pos]
	return s, ok
}

// KinByName returns the kinship role with the given name.
func (b *Base) KinByName(name string) (Kin, bool) {
	k, ok := b.kinByName[name]
	return k, ok
}

// BranchByName returns the earthly branch with the given name.
func (b *Base) BranchByName(name string) (Branch, bool) {
	br, ok := b.branchByName[name]
	return br, ok
}

// Branches returns the twelve branches in canonical order.
func (b *Base) Branches() []Branch {
	out := make([]Branch, len(b.branches))
	copy(out, b.branches)
	return out
}

// Palaces returns the six palaces in canonical order.
func (b *Base) Palaces() []Palace {
	out := make([]Palace, len(b.palaces))
	copy(out, b.palaces)
	return out
}

// Beasts returns the six beasts in canonical order.
func (b *Base) Beasts() []Beast {
	out := make([]Beast, len(b.beasts))
	copy(out, b.beasts)
	return out
}

// Relation returns how element a relates to element b.
func (b *Base) Relation(a, other Element) Relation {
	row, ok := b.relations[a]
	if !ok {
		return RelationNone
	}
	rel, ok := row[other]
	if !ok {
		return RelationNone
	}
	return rel
}

// IsLoaded reports whether every table required for chart generation is
// present. Computing against an unloaded base is a precondition violation,
// not a degradable condition.
func (b *Base) IsLoaded() bool {
	return len(b.palaces) == 6 &&
		len(b.beasts) == 6 &&
		len(b.kin) == 6 &&
		len(b.branches) == 12 &&
		len(b.relations) == 5
}

// Validate returns a descriptive error when the base is incomplete.
func (b *Base) Validate() error {
	if b.IsLoaded() {
		return nil
	}
	return fmt.Errorf("knowledge base incomplete: palaces=%d beasts=%d kin=%d branches=%d elements=%d",
		len(b.palaces), len(b.beasts), len(b.kin), len(b.branches), len(b.relations))
}
