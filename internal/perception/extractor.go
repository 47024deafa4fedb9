// Package perception turns raw user text into structured slot hypotheses.
// The extractor proposes values; validation and merge policy belong to the
// conversation layer, which treats every hypothesis as untrusted.
package perception

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"liuren/internal/logging"
)

// Turn is one prior exchange in the conversation, oldest first.
type Turn struct {
	Role    string // "user" or "assistant"
	Content string
}

// Hints carries ambient context the extractor may use, such as the wall-clock
// time the request arrived.
type Hints struct {
	Now      time.Time
	UserID   string
	Locale   string
	Metadata map[string]string
}

// Hypothesis is the extractor's untrusted proposal for slot values. Pointer
// fields distinguish "not mentioned" from a zero value.
type Hypothesis struct {
	Number1       *int    `json:"number1,omitempty"`
	Number2       *int    `json:"number2,omitempty"`
	Gender        *string `json:"gender,omitempty"`
	QuestionType  *string `json:"question_type,omitempty"`
	AskTime       *string `json:"ask_time,omitempty"` // RFC 3339 or empty
	Description   *string `json:"description,omitempty"`
	AlgorithmHint *string `json:"algorithm_hint,omitempty"`
	Intent        string  `json:"intent,omitempty"`
	Confidence    float64 `json:"confidence,omitempty"`
}

// Extractor proposes slot values from one user utterance plus history.
type Extractor interface {
	Extract(ctx context.Context, text string, history []Turn, known map[string]string, hints Hints) (*Hypothesis, error)
}

const extractionSystemPrompt = `你是一个小六壬占卜助手的信息抽取器。从用户消息中抽取以下字段，输出JSON对象：
- number1, number2: 用户报出的两个数字（整数，只在用户明确给出时填写）
- gender: "男" 或 "女"
- question_type: 事业/财运/感情/健康/学业/出行/官司/寻物/综合 之一
- ask_time: 用户指定的起卦时间（RFC3339格式），未指定则省略
- description: 寻物时丢失物品的描述
- intent: divination（占卜请求）/ chitchat（闲聊）/ other
- confidence: 0到1的置信度

只输出JSON，不要解释。不确定的字段省略。`

// LLMExtractor implements Extractor over an LLMClient.
type LLMExtractor struct {
	client LLMClient
}

// NewLLMExtractor wraps a client. A nil client is rejected at construction so
// the conversation layer never has to nil-check per call.
func NewLLMExtractor(client LLMClient) (*LLMExtractor, error) {
	if client == nil {
		return nil, fmt.Errorf("perception: nil LLM client")
	}
	return &LLMExtractor{client: client}, nil
}

// Extract implements Extractor. Malformed model output is an error; the
// caller decides whether that is fatal (it should not be).
func (e *LLMExtractor) Extract(ctx context.Context, text string, history []Turn, known map[string]string, hints Hints) (*Hypothesis, error) {
	timer := logging.StartTimer(logging.CategoryConversation, "nlu extraction")
	defer timer.StopWithThreshold(5 * time.Second)

	prompt := e.buildPrompt(text, history, known, hints)
	raw, err := e.client.CompleteWithSystem(ctx, extractionSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("extraction call: %w", err)
	}

	hyp, err := parseHypothesis(raw)
	if err != nil {
		return nil, fmt.Errorf("extraction output: %w", err)
	}
	return hyp, nil
}

func (e *LLMExtractor) buildPrompt(text string, history []Turn, known map[string]string, hints Hints) string {
	var b strings.Builder

	if !hints.Now.IsZero() {
		fmt.Fprintf(&b, "当前时间: %s\n", hints.Now.Format(time.RFC3339))
	}
	if len(known) > 0 {
		b.WriteString("已确认的信息:\n")
		for k, v := range known {
			fmt.Fprintf(&b, "  %s: %s\n", k, v)
		}
	}
	if len(history) > 0 {
		b.WriteString("对话历史:\n")
		// Last few turns are enough context for slot extraction.
		start := 0
		if len(history) > 6 {
			start = len(history) - 6
		}
		for _, t := range history[start:] {
			fmt.Fprintf(&b, "  [%s] %s\n", t.Role, t.Content)
		}
	}
	fmt.Fprintf(&b, "用户消息: %s", text)
	return b.String()
}

// parseHypothesis decodes the model's JSON, tolerating a fenced code block
// wrapper.
func parseHypothesis(raw string) (*Hypothesis, error) {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
		cleaned = strings.TrimSpace(cleaned)
	}

	var hyp Hypothesis
	if err := json.Unmarshal([]byte(cleaned), &hyp); err != nil {
		return nil, fmt.Errorf("not valid JSON: %w", err)
	}
	return &hyp, nil
}
