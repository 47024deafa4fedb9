package explain

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liuren/internal/chart"
	"liuren/internal/interpret"
	"liuren/internal/knowledge"
	"liuren/internal/retrieval"
	"liuren/internal/store"
)

type fixedClient struct {
	reply string
	err   error
}

func (f *fixedClient) Complete(ctx context.Context, prompt string) (string, error) {
	return f.CompleteWithSystem(ctx, "", prompt)
}

func (f *fixedClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f.reply, f.err
}

func testRequest(t *testing.T) Request {
	t.Helper()
	base, err := knowledge.StaticLoader{}.Load(context.Background())
	require.NoError(t, err)
	chartEngine, err := chart.NewEngine(base)
	require.NoError(t, err)
	c, err := chartEngine.Generate(3, 5, time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	interpretEngine, err := interpret.NewEngine(base)
	require.NoError(t, err)
	result, err := interpretEngine.Analyze(c, interpret.QuestionCareer, interpret.GenderMale)
	require.NoError(t, err)
	return Request{Chart: c, Interpretation: result}
}

func TestTemplateGenerator(t *testing.T) {
	req := testRequest(t)

	reply, err := TemplateGenerator{}.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Contains(t, reply, "大安")
	assert.Contains(t, reply, "巳")
	assert.Contains(t, reply, req.Interpretation.Summary)
	assert.Contains(t, reply, "建议")
}

func TestTemplateGeneratorWithEnrichment(t *testing.T) {
	req := testRequest(t)
	req.Snippets = []retrieval.Hit{
		{Snippet: store.Snippet{Content: "大安主静，属木。"}},
	}

	reply, err := TemplateGenerator{}.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, reply, "参考：大安主静，属木。")
}

func TestTemplateGeneratorLostObject(t *testing.T) {
	req := testRequest(t)
	req.Interpretation = nil
	req.LostObject = &interpret.LostObjectReport{Guidance: "建议在东北方寻找。"}

	reply, err := TemplateGenerator{}.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, reply, "东北方")
}

func TestTemplateGeneratorNilChart(t *testing.T) {
	_, err := TemplateGenerator{}.Generate(context.Background(), Request{})
	assert.Error(t, err)
}

func TestLLMGeneratorUsesClientReply(t *testing.T) {
	gen, err := NewLLMGenerator(&fixedClient{reply: "  卦象显示事业顺利。  "})
	require.NoError(t, err)

	reply, err := gen.Generate(context.Background(), testRequest(t))
	require.NoError(t, err)
	assert.Equal(t, "卦象显示事业顺利。", reply)
}

func TestLLMGeneratorFallsBackOnError(t *testing.T) {
	gen, err := NewLLMGenerator(&fixedClient{err: fmt.Errorf("timeout")})
	require.NoError(t, err)

	reply, err := gen.Generate(context.Background(), testRequest(t))
	require.NoError(t, err)
	assert.Contains(t, reply, "大安", "fallback reply must still be complete")
}

func TestLLMGeneratorFallsBackOnEmptyReply(t *testing.T) {
	gen, err := NewLLMGenerator(&fixedClient{reply: "   "})
	require.NoError(t, err)

	reply, err := gen.Generate(context.Background(), testRequest(t))
	require.NoError(t, err)
	assert.NotEmpty(t, reply)
}

func TestNewLLMGeneratorRejectsNilClient(t *testing.T) {
	_, err := NewLLMGenerator(nil)
	assert.Error(t, err)
}
