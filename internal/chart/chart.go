// Package chart implements the symbolic computation engine: deterministic
// derivation of the full divination chart (palace, beast and kinship lattices
// plus element summary) from two reported numbers and a timestamp. Everything
// in this package is pure given a loaded knowledge base; there is no I/O, no
// randomness and no wall-clock dependence beyond the supplied time.
package chart

import (
	"time"

	"liuren/internal/knowledge"
)

// BranchInfo is the resolved hour branch for the ask time.
type BranchInfo struct {
	Name    string
	Element knowledge.Element
	Window  string
	Meaning string
	Hour    int
}

// PalaceSlot is one entry of the six-palace lattice.
type PalaceSlot struct {
	Position      int
	Name          string
	Element       knowledge.Element
	Meaning       string
	Branch        string
	BranchElement knowledge.Element
	IsLuogong     bool
	IsBodyPalace  bool
	IsUsePalace   bool
}

// BeastSlot is one entry of the six-beast lattice.
type BeastSlot struct {
	Position int
	Name     string
	Element  knowledge.Element
}

// KinSlot is one entry of the six-kinship lattice. Element is the element of
// the branch sitting at the slot's position, which is what the kinship label
// was derived from.
type KinSlot struct {
	Position int
	Label    string
	Element  knowledge.Element
}

// ElementSummary lists the distinct elements present across the lattices and
// the pairwise relations among them. It feeds downstream narrative only.
type ElementSummary struct {
	Present   []knowledge.Element
	Relations map[knowledge.Element]map[knowledge.Element]knowledge.Relation
}

// Chart is the complete, immutable computation result. Regenerating from
// identical inputs against an identical base yields a structurally identical
// value.
type Chart struct {
	Number1    int
	Number2    int
	AskTime    time.Time
	Luogong    int
	HourBranch BranchInfo
	Palaces    [6]PalaceSlot
	Beasts     [6]BeastSlot
	Kinship    [6]KinSlot
	Elements   ElementSummary
}

// PalaceAtLuogong returns the lattice slot at the landing palace.
func (c *Chart) PalaceAtLuogong() PalaceSlot {
	return c.Palaces[c.Luogong-1]
}
