package chart

import (
	"fmt"
	"sort"
	"time"

	"liuren/internal/knowledge"
)

// Branch partitions and the beast starting table are computation rules, not
// knowledge-base rows: they never vary per deployment the way palace meanings
// might, so they live here with the algorithm that consumes them.
var (
	// yangBranches and yinBranches are the two six-branch partitions in
	// canonical order. The hour branch's partition decides which overlay set
	// is rotated across the palaces.
	yangBranches = []string{"子", "寅", "辰", "午", "申", "戌"}
	yinBranches  = []string{"丑", "卯", "巳", "未", "酉", "亥"}

	// beastForBranch keys the starting beast off the branch that lands at
	// palace position 1 (not the query's own hour branch; preserved as-is
	// from the source rule set). Two branches per beast.
	beastForBranch = map[string]string{
		"寅": "青龙", "卯": "青龙",
		"巳": "朱雀", "午": "朱雀",
		"辰": "勾陈", "戌": "勾陈",
		"丑": "腾蛇", "未": "腾蛇",
		"申": "白虎", "酉": "白虎",
		"亥": "玄武", "子": "玄武",
	}

	// elementOrder fixes the ordering of the element summary so identical
	// inputs always produce identical output.
	elementOrder = map[knowledge.Element]int{
		knowledge.ElementWood:  0,
		knowledge.ElementFire:  1,
		knowledge.ElementEarth: 2,
		knowledge.ElementMetal: 3,
		knowledge.ElementWater: 4,
	}
)

// Luogong computes the landing palace from the two reported numbers:
// (n1+n2-1) mod 6, with 0 mapped to 6. The result is always in [1,6].
func Luogong(n1, n2 int) int {
	r := (n1 + n2 - 1) % 6
	if r == 0 {
		return 6
	}
	return r
}

// Engine derives charts against one loaded knowledge base. The base is
// read-only, so a single Engine is safe for concurrent use.
type Engine struct {
	base *knowledge.Base
}

// NewEngine returns an engine over the given base. An unloaded base is a
// fatal precondition violation, reported here once instead of on every call.
func NewEngine(base *knowledge.Base) (*Engine, error) {
	if base == nil {
		return nil, fmt.Errorf("chart: nil knowledge base")
	}
	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("chart: %w", err)
	}
	return &Engine{base: base}, nil
}

// HourBranch maps the timestamp's hour of day to one of the twelve two-hour
// windows. The 子 window wraps: 23:00-01:00.
func (e *Engine) HourBranch(at time.Time) (BranchInfo, error) {
	hour := at.Hour()
	for _, br := range e.base.Branches() {
		if br.StartHour == 23 {
			if hour >= 23 || hour < 1 {
				return branchInfo(br, hour), nil
			}
			continue
		}
		if hour >= br.StartHour && hour < br.StartHour+2 {
			return branchInfo(br, hour), nil
		}
	}
	return BranchInfo{}, fmt.Errorf("chart: no branch window covers hour %d", hour)
}

func branchInfo(br knowledge.Branch, hour int) BranchInfo {
	return BranchInfo{
		Name:    br.Name,
		Element: br.Element,
		Window:  br.Window,
		Meaning: br.Meaning,
		Hour:    hour,
	}
}

// Generate produces the complete chart for (n1, n2, at). Inputs outside [1,6]
// are rejected; range enforcement for user input belongs to the adapter, this
// check only guards the engine's own invariants.
func (e *Engine) Generate(n1, n2 int, at time.Time) (*Chart, error) {
	if n1 < 1 || n1 > 6 || n2 < 1 || n2 > 6 {
		return nil, fmt.Errorf("chart: numbers must be in [1,6], got (%d,%d)", n1, n2)
	}

	luogong := Luogong(n1, n2)
	hb, err := e.HourBranch(at)
	if err != nil {
		return nil, err
	}

	overlay, err := e.branchOverlay(hb.Name, luogong)
	if err != nil {
		return nil, err
	}

	c := &Chart{
		Number1:    n1,
		Number2:    n2,
		AskTime:    at,
		Luogong:    luogong,
		HourBranch: hb,
	}

	if err := e.fillPalaces(c, overlay, n1, n2); err != nil {
		return nil, err
	}
	if err := e.fillBeasts(c, overlay[0]); err != nil {
		return nil, err
	}
	if err := e.fillKinship(c); err != nil {
		return nil, err
	}
	e.fillElementSummary(c)

	return c, nil
}

// branchOverlay selects the hour branch's six-branch partition and rotates it
// so the hour branch lands at index luogong-1.
func (e *Engine) branchOverlay(hourBranch string, luogong int) ([]string, error) {
	subset := yangBranches
	idx := indexOf(subset, hourBranch)
	if idx < 0 {
		subset = yinBranches
		idx = indexOf(subset, hourBranch)
	}
	if idx < 0 {
		return nil, fmt.Errorf("chart: branch %q in neither partition", hourBranch)
	}

	overlay := make([]string, 6)
	for i := 0; i < 6; i++ {
		// overlay[luogong-1] == subset[idx]
		overlay[i] = subset[((idx+i-(luogong-1))%6+6)%6]
	}
	return overlay, nil
}

func indexOf(list []string, name string) int {
	for i, v := range list {
		if v == name {
			return i
		}
	}
	return -1
}

func (e *Engine) fillPalaces(c *Chart, overlay []string, bodyPalace, usePalace int) error {
	for pos := 1; pos <= 6; pos++ {
		p, ok := e.base.PalaceAt(pos)
		if !ok {
			return fmt.Errorf("chart: missing palace at position %d", pos)
		}
		br, ok := e.base.BranchByName(overlay[pos-1])
		if !ok {
			return fmt.Errorf("chart: missing branch %q", overlay[pos-1])
		}
		c.Palaces[pos-1] = PalaceSlot{
			Position:      pos,
			Name:          p.Name,
			Element:       p.Element,
			Meaning:       p.Meaning,
			Branch:        br.Name,
			BranchElement: br.Element,
			IsLuogong:     pos == c.Luogong,
			IsBodyPalace:  pos == bodyPalace,
			IsUsePalace:   pos == usePalace,
		}
	}
	return nil
}

// fillBeasts rotates the canonical beast order so the beast keyed by the
// branch at position 1 lands at position 1.
func (e *Engine) fillBeasts(c *Chart, firstBranch string) error {
	start, ok := beastForBranch[firstBranch]
	if !ok {
		return fmt.Errorf("chart: no starting beast for branch %q", firstBranch)
	}

	beasts := e.base.Beasts()
	startIdx := -1
	for i, b := range beasts {
		if b.Name == start {
			startIdx = i
			break
		}
	}
	if startIdx < 0 {
		return fmt.Errorf("chart: beast %q not in canonical order", start)
	}

	for i := 0; i < 6; i++ {
		b := beasts[(startIdx+i)%6]
		c.Beasts[i] = BeastSlot{
			Position: i + 1,
			Name:     b.Name,
			Element:  b.Element,
		}
	}
	return nil
}

// fillKinship labels every position relative to the taiji element, which is
// the element of the branch at the landing palace. The relation→label map is
// exhaustive once the base is loaded; hitting the default is a rule-set bug.
func (e *Engine) fillKinship(c *Chart) error {
	taiji := c.Palaces[c.Luogong-1].BranchElement

	for pos := 1; pos <= 6; pos++ {
		el := c.Palaces[pos-1].BranchElement
		if pos == c.Luogong {
			c.Kinship[pos-1] = KinSlot{Position: pos, Label: knowledge.KinSelf, Element: el}
			continue
		}
		var label string
		switch e.base.Relation(taiji, el) {
		case knowledge.RelationGenerates:
			label = knowledge.KinOffspring
		case knowledge.RelationOvercomes:
			label = knowledge.KinWealth
		case knowledge.RelationGeneratedBy:
			label = knowledge.KinParent
		case knowledge.RelationOvercomeBy:
			label = knowledge.KinOfficial
		case knowledge.RelationSame:
			label = knowledge.KinSibling
		default:
			return fmt.Errorf("chart: unmapped relation between %q and %q", taiji, el)
		}
		c.Kinship[pos-1] = KinSlot{Position: pos, Label: label, Element: el}
	}
	return nil
}

func (e *Engine) fillElementSummary(c *Chart) {
	seen := make(map[knowledge.Element]bool)
	for _, p := range c.Palaces {
		seen[p.Element] = true
		seen[p.BranchElement] = true
	}
	for _, b := range c.Beasts {
		seen[b.Element] = true
	}

	present := make([]knowledge.Element, 0, len(seen))
	for el := range seen {
		present = append(present, el)
	}
	sort.Slice(present, func(i, j int) bool {
		return elementOrder[present[i]] < elementOrder[present[j]]
	})

	relations := make(map[knowledge.Element]map[knowledge.Element]knowledge.Relation, len(present))
	for _, a := range present {
		row := make(map[knowledge.Element]knowledge.Relation, len(present)-1)
		for _, b := range present {
			if a == b {
				continue
			}
			row[b] = e.base.Relation(a, b)
		}
		relations[a] = row
	}

	c.Elements = ElementSummary{Present: present, Relations: relations}
}
