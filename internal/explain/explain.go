// Package explain turns structured interpretation results into the user-facing
// reply. Two generators exist: an LLM-backed one for natural prose and a
// deterministic template one used as the fallback when no client is
// configured or the call fails.
package explain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"liuren/internal/chart"
	"liuren/internal/interpret"
	"liuren/internal/logging"
	"liuren/internal/perception"
	"liuren/internal/retrieval"
	"liuren/internal/store"
)

// Request bundles everything a generator may draw on. Snippets and Profile
// are enrichment; both may be absent and generators must still produce a
// complete reply.
type Request struct {
	Chart          *chart.Chart
	Interpretation *interpret.Interpretation
	LostObject     *interpret.LostObjectReport
	Snippets       []retrieval.Hit
	Profile        *store.Profile
}

// Generator produces the final reply text.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// TemplateGenerator composes the reply from the structured result alone. It
// cannot fail, which is what makes it a safe fallback.
type TemplateGenerator struct{}

// Generate implements Generator.
func (TemplateGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if req.Chart == nil {
		return "", fmt.Errorf("explain: nil chart")
	}

	var b strings.Builder
	slot := req.Chart.PalaceAtLuogong()
	fmt.Fprintf(&b, "本次起卦：数字%d、%d，时辰%s，落于第%d宫「%s」（属%s）。\n",
		req.Chart.Number1, req.Chart.Number2, req.Chart.HourBranch.Name,
		req.Chart.Luogong, slot.Name, slot.Element)

	switch {
	case req.LostObject != nil:
		b.WriteString(req.LostObject.Guidance)

	case req.Interpretation != nil:
		b.WriteString(req.Interpretation.Summary)
		if len(req.Interpretation.Details.Suggestions) > 0 {
			b.WriteString("\n建议：")
			b.WriteString(strings.Join(req.Interpretation.Details.Suggestions, "；"))
			b.WriteString("。")
		}

	default:
		fmt.Fprintf(&b, "%s：%s", slot.Name, slot.Meaning)
	}

	for _, hit := range req.Snippets {
		fmt.Fprintf(&b, "\n参考：%s", hit.Snippet.Content)
	}

	return b.String(), nil
}

const explainSystemPrompt = `你是一位小六壬解卦师。根据给出的卦象结构化结果，用温和易懂的中文向用户解释卦象含义。
要求：忠于给出的结构化结论，不要自行改变吉凶判断；两三段话以内；结尾给出可行的建议。`

// LLMGenerator asks an LLM to phrase the reply, falling back to the template
// generator on any failure so explanation never becomes a fatal stage.
type LLMGenerator struct {
	client   perception.LLMClient
	fallback TemplateGenerator
}

// NewLLMGenerator wraps a client.
func NewLLMGenerator(client perception.LLMClient) (*LLMGenerator, error) {
	if client == nil {
		return nil, fmt.Errorf("explain: nil LLM client")
	}
	return &LLMGenerator{client: client}, nil
}

// Generate implements Generator.
func (g *LLMGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if req.Chart == nil {
		return "", fmt.Errorf("explain: nil chart")
	}

	timer := logging.StartTimer(logging.CategoryExplain, "llm explanation")
	defer timer.StopWithThreshold(10 * time.Second)

	reply, err := g.client.CompleteWithSystem(ctx, explainSystemPrompt, g.buildPrompt(req))
	if err != nil || strings.TrimSpace(reply) == "" {
		logging.Explain("llm generation failed, using template: %v", err)
		return g.fallback.Generate(ctx, req)
	}
	return strings.TrimSpace(reply), nil
}

func (g *LLMGenerator) buildPrompt(req Request) string {
	var b strings.Builder

	slot := req.Chart.PalaceAtLuogong()
	fmt.Fprintf(&b, "落宫：%s（第%d宫，属%s）\n", slot.Name, req.Chart.Luogong, slot.Element)
	fmt.Fprintf(&b, "时辰：%s（%s）\n", req.Chart.HourBranch.Name, req.Chart.HourBranch.Window)

	if req.Interpretation != nil {
		fmt.Fprintf(&b, "用神：%s\n", strings.Join(req.Interpretation.TargetSpirits, "、"))
		fmt.Fprintf(&b, "吉凶：%v\n", req.Interpretation.Favorable)
		fmt.Fprintf(&b, "结论：%s\n", req.Interpretation.Summary)
	}
	if req.LostObject != nil {
		fmt.Fprintf(&b, "寻物指引：%s\n", req.LostObject.Guidance)
	}
	if req.Profile != nil && req.Profile.Preferences != "" {
		fmt.Fprintf(&b, "用户偏好：%s\n", req.Profile.Preferences)
	}
	for _, hit := range req.Snippets {
		fmt.Fprintf(&b, "知识参考：%s\n", hit.Snippet.Content)
	}

	return b.String()
}
