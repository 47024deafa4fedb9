package conversation

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liuren/internal/perception"
)

// stubExtractor returns queued hypotheses in order, then empty ones.
type stubExtractor struct {
	queue []*perception.Hypothesis
	errs  []error
	calls int
}

func (s *stubExtractor) Extract(ctx context.Context, text string, history []perception.Turn, known map[string]string, hints perception.Hints) (*perception.Hypothesis, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i < len(s.queue) {
		return s.queue[i], nil
	}
	return &perception.Hypothesis{}, nil
}

func intp(v int) *int       { return &v }
func strp(v string) *string { return &v }

func newTestEngine(t *testing.T, ex perception.Extractor) *Engine {
	t.Helper()
	e, err := NewEngine(ex)
	require.NoError(t, err)
	return e
}

func TestGuardrails(t *testing.T) {
	t.Run("length bound", func(t *testing.T) {
		ge := CheckGuardrails(strings.Repeat("问", 1001))
		require.NotNil(t, ge)
		assert.Equal(t, GuardrailTooLong, ge.Category)
	})

	t.Run("injection patterns", func(t *testing.T) {
		for _, text := range []string{
			"<script>alert(1)</script>",
			"'; DROP TABLE users; --",
			"1 UNION SELECT password FROM users",
			"javascript:void(0)",
		} {
			ge := CheckGuardrails(text)
			require.NotNil(t, ge, "text %q", text)
			assert.Equal(t, GuardrailInjection, ge.Category, "text %q", text)
		}
	})

	t.Run("forbidden topics", func(t *testing.T) {
		ge := CheckGuardrails("帮我算算彩票号码")
		require.NotNil(t, ge)
		assert.Equal(t, GuardrailForbiddenTopic, ge.Category)
	})

	t.Run("absurd numbers", func(t *testing.T) {
		ge := CheckGuardrails("我的数字是99999999")
		require.NotNil(t, ge)
		assert.Equal(t, GuardrailAbsurdNumber, ge.Category)
	})

	t.Run("normal input passes", func(t *testing.T) {
		assert.Nil(t, CheckGuardrails("我想算事业，数字3和5，男"))
	})
}

func TestProcessCompleteInOneTurn(t *testing.T) {
	ex := &stubExtractor{queue: []*perception.Hypothesis{{
		Number1: intp(3), Number2: intp(5), Gender: strp("男"),
		QuestionType: strp("事业"), Intent: "divination",
	}}}
	engine := newTestEngine(t, ex)
	state := &State{}
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	out := engine.Process(context.Background(), state, "算事业，3和5，男", perception.Hints{Now: now})

	assert.Equal(t, StatusReady, out.Status)
	assert.Empty(t, out.Missing)
	require.NotNil(t, out.Slots.Number1)
	assert.Equal(t, 3, *out.Slots.Number1)

	// Defaults applied only at readiness.
	require.NotNil(t, out.Slots.AskTime)
	assert.Equal(t, now, *out.Slots.AskTime)
	require.NotNil(t, out.Slots.QuestionType)
	assert.Equal(t, "事业", *out.Slots.QuestionType)
	assert.Equal(t, 0, state.FollowUpCount)
}

func TestProcessIncrementalFilling(t *testing.T) {
	ex := &stubExtractor{queue: []*perception.Hypothesis{
		{Number1: intp(3), Number2: intp(5)},
		{Gender: strp("女")},
	}}
	engine := newTestEngine(t, ex)
	state := &State{}

	out := engine.Process(context.Background(), state, "3和5", perception.Hints{})
	assert.Equal(t, StatusClarifying, out.Status)
	assert.Equal(t, []string{"gender"}, out.Missing)
	assert.Equal(t, "请告诉我您的性别（男或女）。", out.Reply)
	assert.Equal(t, 1, state.FollowUpCount)

	out = engine.Process(context.Background(), state, "女", perception.Hints{})
	assert.Equal(t, StatusReady, out.Status)

	// Earlier values survived the second merge.
	require.NotNil(t, out.Slots.Number1)
	assert.Equal(t, 3, *out.Slots.Number1)
	require.NotNil(t, out.Slots.QuestionType)
	assert.Equal(t, "综合", *out.Slots.QuestionType)
}

func TestProcessInvalidValuesReported(t *testing.T) {
	ex := &stubExtractor{queue: []*perception.Hypothesis{
		{Number1: intp(9), Number2: intp(5), Gender: strp("男")},
	}}
	engine := newTestEngine(t, ex)
	state := &State{}

	out := engine.Process(context.Background(), state, "9和5，男", perception.Hints{})

	assert.Equal(t, StatusClarifying, out.Status)
	assert.Contains(t, out.Missing, "number1")
	assert.Contains(t, out.Missing, "invalid_number1")
	assert.Nil(t, state.Slots.Number1)
	require.NotNil(t, state.Slots.Number2)
	assert.Equal(t, 5, *state.Slots.Number2)
}

func TestProcessFollowUpBound(t *testing.T) {
	engine := newTestEngine(t, &stubExtractor{})
	state := &State{}

	for i := 0; i < maxFollowUps; i++ {
		out := engine.Process(context.Background(), state, "嗯", perception.Hints{})
		assert.Equal(t, StatusClarifying, out.Status, "round %d", i)
	}

	out := engine.Process(context.Background(), state, "嗯", perception.Hints{})
	assert.Equal(t, StatusRestart, out.Status)
	assert.Contains(t, out.Reply, "重新开始")
	assert.Equal(t, 0, state.FollowUpCount)
	assert.Nil(t, state.Slots.Number1)
}

func TestProcessGuardrailBlockLeavesStateUntouched(t *testing.T) {
	ex := &stubExtractor{}
	engine := newTestEngine(t, ex)
	n := 3
	state := &State{Slots: Slots{Number1: &n}, FollowUpCount: 1}

	out := engine.Process(context.Background(), state, "帮我算赌博运势", perception.Hints{})

	assert.Equal(t, StatusBlocked, out.Status)
	assert.Equal(t, 0, ex.calls, "guardrail must bypass extraction")
	assert.Equal(t, 1, state.FollowUpCount)
	require.NotNil(t, state.Slots.Number1)
}

func TestProcessExtractorFailureIsRephrase(t *testing.T) {
	ex := &stubExtractor{errs: []error{fmt.Errorf("upstream 500")}}
	engine := newTestEngine(t, ex)
	state := &State{}

	out := engine.Process(context.Background(), state, "帮我算一卦", perception.Hints{})

	assert.Equal(t, StatusRephrase, out.Status)
	assert.NotEmpty(t, out.Reply)
	assert.Equal(t, 1, state.FollowUpCount)
}

func TestClarificationReplyMultiSlot(t *testing.T) {
	reply := clarificationReply([]string{"number1", "number2", "gender"})
	assert.Contains(t, reply, "两个1到6之间的数字")
	assert.Contains(t, reply, "性别")
	// Numbers asked once even though both are missing.
	assert.Equal(t, 1, strings.Count(reply, "两个1到6之间的数字"))
}

func TestMergeRejectsUnknownQuestionType(t *testing.T) {
	slots := &Slots{}
	invalid := mergeHypothesis(slots, &perception.Hypothesis{QuestionType: strp("星座")})
	assert.Equal(t, []string{"invalid_question_type"}, invalid)
	assert.Nil(t, slots.QuestionType)
}

func TestMergeParsesAskTime(t *testing.T) {
	slots := &Slots{}
	invalid := mergeHypothesis(slots, &perception.Hypothesis{AskTime: strp("2024-03-15T10:00:00Z")})
	assert.Empty(t, invalid)
	require.NotNil(t, slots.AskTime)
	assert.Equal(t, 10, slots.AskTime.Hour())

	invalid = mergeHypothesis(slots, &perception.Hypothesis{AskTime: strp("昨天下午")})
	assert.Equal(t, []string{"invalid_ask_time"}, invalid)
}
