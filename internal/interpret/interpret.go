// Package interpret derives structured findings from a computed chart: target
// spirit selection, landing-palace analysis, related-position analysis and the
// lost-object variant. Output is structured facts plus short templated
// sentences; freeform prose belongs to the explanation generator.
package interpret

import (
	"fmt"
	"strings"

	"liuren/internal/chart"
	"liuren/internal/knowledge"
)

// Gender values accepted by the spirit selection table.
const (
	GenderMale   = "男"
	GenderFemale = "女"
)

// Question types with dedicated target-spirit rows. Anything else falls back
// to the generic row.
const (
	QuestionCareer       = "事业"
	QuestionWealth       = "财运"
	QuestionRelationship = "感情"
	QuestionHealth       = "健康"
	QuestionStudy        = "学业"
	QuestionTravel       = "出行"
	QuestionLitigation   = "官司"
	QuestionLostItem     = "寻物"
	QuestionGeneric      = "综合"
)

// QuestionTypes lists every recognized question type, generic row included.
func QuestionTypes() []string {
	return []string{
		QuestionCareer, QuestionWealth, QuestionRelationship, QuestionHealth,
		QuestionStudy, QuestionTravel, QuestionLitigation, QuestionLostItem,
		QuestionGeneric,
	}
}

// PalaceAnalysis describes the landing palace for the asked question.
type PalaceAnalysis struct {
	Name      string
	Element   knowledge.Element
	Meaning   string
	Favorable bool
	Narrative string
}

// RelatedPosition classifies one non-luogong position against the landing
// palace.
type RelatedPosition struct {
	Position  int
	Name      string
	Relation  string // 相邻 / 对冲 / 相关
	Influence string
}

// Timeline gives rough horizons for the outcome to materialize.
type Timeline struct {
	ShortTerm  string
	MediumTerm string
	LongTerm   string
}

// Findings is the detailed part of an interpretation.
type Findings struct {
	QuestionType  string
	PrimarySpirit string
	Timeline      Timeline
	Suggestions   []string
}

// Interpretation is derived solely from a chart plus (questionType, gender).
type Interpretation struct {
	TargetSpirits []string
	Palace        PalaceAnalysis
	Related       []RelatedPosition
	Favorable     bool
	Summary       string
	Details       Findings
}

// LostObjectReport is the dedicated lost-item analysis.
type LostObjectReport struct {
	Description   string
	Direction     string
	Confidence    float64
	LocationClues []string
	Period        string
	BestTime      string
	Probability   float64
	Guidance      string
}

// favorablePalaces is the fixed membership set deciding favorability.
var favorablePalaces = map[string]bool{
	"大安": true,
	"速喜": true,
	"小吉": true,
}

// spiritTable keys question type to target spirits; 感情 splits by gender.
var spiritTable = map[string][]string{
	QuestionCareer:     {knowledge.KinOfficial, knowledge.KinParent},
	QuestionWealth:     {knowledge.KinWealth, knowledge.KinOfficial},
	QuestionHealth:     {knowledge.KinSelf, knowledge.KinParent},
	QuestionStudy:      {knowledge.KinParent, knowledge.KinOfficial},
	QuestionTravel:     {knowledge.KinParent, knowledge.KinOffspring},
	QuestionLitigation: {knowledge.KinOfficial, knowledge.KinParent},
	QuestionLostItem:   {knowledge.KinWealth, knowledge.KinParent},
	QuestionGeneric:    {knowledge.KinSelf, knowledge.KinOffspring},
}

// palaceNarratives are templated sentences keyed by palace name; %s is the
// primary target spirit.
var palaceNarratives = map[string]string{
	"大安": "平安吉利，%s得位，事情顺利发展",
	"留连": "事情拖延，%s受困，需要耐心等待",
	"速喜": "快速喜悦，%s得力，事情进展迅速",
	"赤口": "口舌是非，%s受冲，需要谨慎处理",
	"小吉": "小有收获，%s平稳，适度发展为宜",
	"空亡": "虚空无实，%s失位，事情可能落空",
}

// Lost-object lookup tuples keyed by palace name.
var (
	lostDirections = map[string]string{
		"大安": "东北方", "留连": "南方", "速喜": "西南方",
		"赤口": "西方", "小吉": "东南方", "空亡": "北方",
	}
	lostClues = map[string][]string{
		"大安": {"安静的地方", "卧室", "书房"},
		"留连": {"被遗忘的角落", "储物间", "杂物堆"},
		"速喜": {"显眼的位置", "客厅", "桌面上"},
		"赤口": {"尖锐物品附近", "厨房", "工具箱"},
		"小吉": {"整洁的地方", "抽屉里", "柜子中"},
		"空亡": {"空旷的地方", "可能已遗失", "户外"},
	}
	lostWindows = map[string][2]string{
		"大安": {"1-3天内", "上午"},
		"留连": {"3-7天内", "下午"},
		"速喜": {"当天", "中午"},
		"赤口": {"2-5天内", "傍晚"},
		"小吉": {"1-2天内", "上午"},
		"空亡": {"可能找不到", "任何时间"},
	}
	lostProbabilities = map[string]float64{
		"大安": 0.8, "留连": 0.6, "速喜": 0.9,
		"赤口": 0.4, "小吉": 0.7, "空亡": 0.2,
	}
)

// Engine interprets charts against one knowledge base.
type Engine struct {
	base *knowledge.Base
}

// NewEngine returns an interpretation engine over the given base.
func NewEngine(base *knowledge.Base) (*Engine, error) {
	if base == nil {
		return nil, fmt.Errorf("interpret: nil knowledge base")
	}
	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("interpret: %w", err)
	}
	return &Engine{base: base}, nil
}

// SelectTargetSpirits returns the ordered target-spirit list for the question
// type. Relationship questions differ by gender; unknown types use the
// generic row.
func SelectTargetSpirits(questionType, gender string) []string {
	if questionType == QuestionRelationship {
		if gender == GenderFemale {
			return []string{knowledge.KinSelf, knowledge.KinOfficial, knowledge.KinParent}
		}
		return []string{knowledge.KinSelf, knowledge.KinWealth, knowledge.KinParent}
	}
	if spirits, ok := spiritTable[questionType]; ok {
		out := make([]string, len(spirits))
		copy(out, spirits)
		return out
	}
	out := make([]string, len(spiritTable[QuestionGeneric]))
	copy(out, spiritTable[QuestionGeneric])
	return out
}

// Analyze produces the full interpretation for a chart.
func (e *Engine) Analyze(c *chart.Chart, questionType, gender string) (*Interpretation, error) {
	if c == nil {
		return nil, fmt.Errorf("interpret: nil chart")
	}

	spirits := SelectTargetSpirits(questionType, gender)
	primary := spirits[0]

	palace := e.AnalyzePalace(c, primary)
	related := e.AnalyzeRelatedPositions(c)

	tendency := "需要谨慎应对"
	if palace.Favorable {
		tendency = "整体运势较好"
	}
	summary := fmt.Sprintf("关于%s问题，卦象显示%s，%s。用神为%s，%s。",
		questionType, palace.Name, tendency, strings.Join(spirits, "、"), palace.Narrative)

	return &Interpretation{
		TargetSpirits: spirits,
		Palace:        palace,
		Related:       related,
		Favorable:     palace.Favorable,
		Summary:       summary,
		Details: Findings{
			QuestionType:  questionType,
			PrimarySpirit: primary,
			Timeline: Timeline{
				ShortTerm:  "1-7天",
				MediumTerm: "1-3月",
				LongTerm:   "3-12月",
			},
			Suggestions: suggestions(palace.Favorable),
		},
	}, nil
}

// AnalyzePalace describes the landing palace parameterized by the primary
// target spirit.
func (e *Engine) AnalyzePalace(c *chart.Chart, spirit string) PalaceAnalysis {
	slot := c.PalaceAtLuogong()

	narrative := "需要进一步分析"
	if tmpl, ok := palaceNarratives[slot.Name]; ok {
		narrative = fmt.Sprintf(tmpl, spirit)
	}

	return PalaceAnalysis{
		Name:      slot.Name,
		Element:   slot.Element,
		Meaning:   slot.Meaning,
		Favorable: favorablePalaces[slot.Name],
		Narrative: narrative,
	}
}

// AnalyzeRelatedPositions picks the first two non-luogong positions and
// classifies each by its positional distance to the landing palace.
func (e *Engine) AnalyzeRelatedPositions(c *chart.Chart) []RelatedPosition {
	luogong := c.PalaceAtLuogong()
	out := make([]RelatedPosition, 0, 2)

	for pos := 1; pos <= 6 && len(out) < 2; pos++ {
		if pos == c.Luogong {
			continue
		}
		slot := c.Palaces[pos-1]
		out = append(out, RelatedPosition{
			Position:  pos,
			Name:      slot.Name,
			Relation:  classifyPositions(c.Luogong, pos),
			Influence: e.influence(slot.Element, luogong.Element),
		})
	}
	return out
}

func classifyPositions(a, b int) string {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	switch diff {
	case 1, 5:
		return "相邻"
	case 3:
		return "对冲"
	default:
		return "相关"
	}
}

func (e *Engine) influence(from, to knowledge.Element) string {
	return fmt.Sprintf("%s与%s%s", from, to, e.base.Relation(from, to))
}

// FindLostObject maps the landing palace to direction, location clues, time
// window and probability, then composes a guidance string.
func (e *Engine) FindLostObject(c *chart.Chart, description string) (*LostObjectReport, error) {
	if c == nil {
		return nil, fmt.Errorf("interpret: nil chart")
	}

	name := c.PalaceAtLuogong().Name

	direction, ok := lostDirections[name]
	confidence := 0.8
	if !ok {
		direction = "正中"
		confidence = 0.5
	}

	clues := lostClues[name]
	if len(clues) == 0 {
		clues = []string{"需要仔细寻找"}
	}

	window, ok := lostWindows[name]
	if !ok {
		window = [2]string{"未知", "任何时间"}
	}

	probability, ok := lostProbabilities[name]
	if !ok {
		probability = 0.5
	}

	guidance := fmt.Sprintf("建议在%s寻找，重点关注%s。最佳寻找时间是%s，预计在%s找到。",
		direction, strings.Join(clues[:min(2, len(clues))], "、"), window[1], window[0])
	switch {
	case probability > 0.7:
		guidance += "找到的可能性较大，请仔细搜寻。"
	case probability > 0.4:
		guidance += "有一定可能找到，建议扩大搜寻范围。"
	default:
		guidance += "找到的可能性较小，可能需要考虑其他情况。"
	}

	return &LostObjectReport{
		Description:   description,
		Direction:     direction,
		Confidence:    confidence,
		LocationClues: clues,
		Period:        window[0],
		BestTime:      window[1],
		Probability:   probability,
		Guidance:      guidance,
	}, nil
}

func suggestions(favorable bool) []string {
	if favorable {
		return []string{
			"时机有利，可以积极推进",
			"保持现有节奏",
			"注意把握机会",
		}
	}
	return []string{
		"需要谨慎行事",
		"可以考虑延后行动",
		"多听取他人意见",
	}
}
