// Package conversation runs the slot-filling loop that turns chat turns into
// a fully resolved divination request. Guardrails screen every message first;
// the NLU extractor's hypotheses are treated as untrusted and validated here
// before they touch session state.
package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"liuren/internal/interpret"
	"liuren/internal/logging"
	"liuren/internal/perception"
)

// Slots is the accumulated, validated session state. Pointer fields
// distinguish "never provided" from a zero value.
type Slots struct {
	Number1       *int
	Number2       *int
	Gender        *string
	QuestionType  *string
	AskTime       *time.Time
	Description   *string
	AlgorithmHint *string
}

// Known renders the filled slots as strings for extractor context.
func (s *Slots) Known() map[string]string {
	out := make(map[string]string)
	if s.Number1 != nil {
		out["number1"] = fmt.Sprintf("%d", *s.Number1)
	}
	if s.Number2 != nil {
		out["number2"] = fmt.Sprintf("%d", *s.Number2)
	}
	if s.Gender != nil {
		out["gender"] = *s.Gender
	}
	if s.QuestionType != nil {
		out["question_type"] = *s.QuestionType
	}
	if s.AskTime != nil {
		out["ask_time"] = s.AskTime.Format(time.RFC3339)
	}
	if s.Description != nil {
		out["description"] = *s.Description
	}
	return out
}

// requiredMissing returns the required slots that are still unfilled, in a
// fixed order so clarification replies are deterministic.
func (s *Slots) requiredMissing() []string {
	var missing []string
	if s.Number1 == nil {
		missing = append(missing, "number1")
	}
	if s.Number2 == nil {
		missing = append(missing, "number2")
	}
	if s.Gender == nil {
		missing = append(missing, "gender")
	}
	return missing
}

// Status is the outcome class of one processed turn.
type Status string

const (
	StatusReady      Status = "ready"
	StatusClarifying Status = "clarifying"
	StatusBlocked    Status = "blocked"
	StatusRestart    Status = "restart"
	StatusRephrase   Status = "rephrase"
)

// Outcome is what one turn produced. Slots is the post-merge state; Missing
// lists unfilled or invalid required slots when clarifying.
type Outcome struct {
	Status  Status
	Reply   string
	Slots   Slots
	Missing []string
	Intent  string
}

// State is the per-session mutable conversation state. It is owned by one
// session; the engine itself is stateless and shared.
type State struct {
	Slots         Slots
	History       []perception.Turn
	FollowUpCount int
}

// maxFollowUps bounds clarification rounds before the session is asked to
// start over.
const maxFollowUps = 3

// Engine drives slot filling over one extractor.
type Engine struct {
	extractor perception.Extractor
}

// NewEngine returns a conversation engine.
func NewEngine(extractor perception.Extractor) (*Engine, error) {
	if extractor == nil {
		return nil, fmt.Errorf("conversation: nil extractor")
	}
	return &Engine{extractor: extractor}, nil
}

// Process handles one user message against the session state. The state is
// mutated in place on successful merges; guardrail blocks leave it untouched.
func (e *Engine) Process(ctx context.Context, state *State, text string, hints perception.Hints) Outcome {
	if ge := CheckGuardrails(text); ge != nil {
		logging.Conversation("guardrail block category=%s", ge.Category)
		return Outcome{Status: StatusBlocked, Reply: RefusalReply(ge.Category), Slots: state.Slots}
	}

	if state.FollowUpCount >= maxFollowUps {
		logging.Conversation("follow-up bound reached, restarting session")
		state.Slots = Slots{}
		state.FollowUpCount = 0
		return Outcome{
			Status: StatusRestart,
			Reply:  "多次沟通后仍缺少起卦信息，我们重新开始吧。请提供两个1到6之间的数字，以及您的性别。",
			Slots:  state.Slots,
		}
	}

	hyp, err := e.extractor.Extract(ctx, text, state.History, state.Slots.Known(), hints)
	if err != nil {
		// Extractor trouble is never fatal to the session.
		logging.Conversation("extractor failure treated as rephrase: %v", err)
		state.FollowUpCount++
		return Outcome{
			Status: StatusRephrase,
			Reply:  "抱歉，我没有理解您的意思，能换个说法再说一遍吗？",
			Slots:  state.Slots,
		}
	}

	state.History = append(state.History,
		perception.Turn{Role: "user", Content: text})

	invalid := mergeHypothesis(&state.Slots, hyp)

	missing := state.Slots.requiredMissing()
	missing = append(missing, invalid...)

	if len(missing) > 0 {
		state.FollowUpCount++
		reply := clarificationReply(missing)
		state.History = append(state.History, perception.Turn{Role: "assistant", Content: reply})
		logging.Conversation("clarifying round=%d missing=%v", state.FollowUpCount, missing)
		return Outcome{
			Status:  StatusClarifying,
			Reply:   reply,
			Slots:   state.Slots,
			Missing: missing,
			Intent:  hyp.Intent,
		}
	}

	// Required slots satisfied; apply defaults for the optional ones.
	applyDefaults(&state.Slots, hints)
	state.FollowUpCount = 0
	logging.Conversation("slots complete: n1=%d n2=%d", *state.Slots.Number1, *state.Slots.Number2)
	return Outcome{Status: StatusReady, Slots: state.Slots, Intent: hyp.Intent}
}

// mergeHypothesis folds validated hypothesis fields into the slots. A filled
// slot is only overwritten by a new valid value; invalid proposals are
// dropped and reported as invalid_<field>.
func mergeHypothesis(slots *Slots, hyp *perception.Hypothesis) []string {
	var invalid []string

	if hyp.Number1 != nil {
		if *hyp.Number1 >= 1 && *hyp.Number1 <= 6 {
			slots.Number1 = hyp.Number1
		} else {
			invalid = append(invalid, "invalid_number1")
		}
	}
	if hyp.Number2 != nil {
		if *hyp.Number2 >= 1 && *hyp.Number2 <= 6 {
			slots.Number2 = hyp.Number2
		} else {
			invalid = append(invalid, "invalid_number2")
		}
	}
	if hyp.Gender != nil {
		if *hyp.Gender == interpret.GenderMale || *hyp.Gender == interpret.GenderFemale {
			slots.Gender = hyp.Gender
		} else {
			invalid = append(invalid, "invalid_gender")
		}
	}
	if hyp.QuestionType != nil {
		if isKnownQuestionType(*hyp.QuestionType) {
			slots.QuestionType = hyp.QuestionType
		} else {
			invalid = append(invalid, "invalid_question_type")
		}
	}
	if hyp.AskTime != nil && *hyp.AskTime != "" {
		if at, err := time.Parse(time.RFC3339, *hyp.AskTime); err == nil {
			slots.AskTime = &at
		} else {
			invalid = append(invalid, "invalid_ask_time")
		}
	}
	if hyp.Description != nil && *hyp.Description != "" {
		slots.Description = hyp.Description
	}
	if hyp.AlgorithmHint != nil && *hyp.AlgorithmHint != "" {
		slots.AlgorithmHint = hyp.AlgorithmHint
	}

	return invalid
}

func isKnownQuestionType(qt string) bool {
	for _, known := range interpret.QuestionTypes() {
		if qt == known {
			return true
		}
	}
	return false
}

// applyDefaults fills optional slots once the required ones are satisfied:
// ask time from context hints (or the clock), question type to the generic
// category.
func applyDefaults(slots *Slots, hints perception.Hints) {
	if slots.AskTime == nil {
		at := hints.Now
		if at.IsZero() {
			at = time.Now()
		}
		slots.AskTime = &at
	}
	if slots.QuestionType == nil {
		qt := interpret.QuestionGeneric
		slots.QuestionType = &qt
	}
}

// singleSlotPrompts are the slot-specific clarification templates; multi-slot
// turns get a combined prompt instead.
var singleSlotPrompts = map[string]string{
	"number1":               "请提供第一个数字（1到6之间）。",
	"number2":               "请提供第二个数字（1到6之间）。",
	"gender":                "请告诉我您的性别（男或女）。",
	"invalid_number1":       "第一个数字需要在1到6之间，请重新提供。",
	"invalid_number2":       "第二个数字需要在1到6之间，请重新提供。",
	"invalid_gender":        "性别请填写男或女。",
	"invalid_question_type": "请从事业、财运、感情、健康、学业、出行、官司、寻物中选择问事类型，或者说综合。",
	"invalid_ask_time":      "起卦时间没有识别出来，请换一种说法，或留空用当前时间。",
}

func clarificationReply(missing []string) string {
	if len(missing) == 1 {
		if prompt, ok := singleSlotPrompts[missing[0]]; ok {
			return prompt
		}
	}

	var asks []string
	for _, m := range missing {
		switch strings.TrimPrefix(m, "invalid_") {
		case "number1", "number2":
			asks = appendUnique(asks, "两个1到6之间的数字")
		case "gender":
			asks = appendUnique(asks, "您的性别（男或女）")
		case "question_type":
			asks = appendUnique(asks, "想问的事情类型")
		case "ask_time":
			asks = appendUnique(asks, "起卦时间")
		}
	}
	if len(asks) == 0 {
		return "还需要一些信息才能起卦，请补充。"
	}
	return fmt.Sprintf("起卦还需要：%s。", strings.Join(asks, "、"))
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
