package conversation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// GuardrailCategory names why an input was blocked.
type GuardrailCategory string

const (
	GuardrailTooLong        GuardrailCategory = "too_long"
	GuardrailInjection      GuardrailCategory = "injection"
	GuardrailForbiddenTopic GuardrailCategory = "forbidden_topic"
	GuardrailAbsurdNumber   GuardrailCategory = "absurd_number"
)

// GuardrailError is a terminal per-turn rejection. It bypasses extraction
// entirely; the turn gets a refusal reply and the session state is untouched.
type GuardrailError struct {
	Category GuardrailCategory
	Message  string
}

func (e *GuardrailError) Error() string {
	return fmt.Sprintf("guardrail %s: %s", e.Category, e.Message)
}

const (
	maxInputLength = 1000
	maxSaneNumber  = 1000000
)

var (
	injectionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<script[\s>]`),
		regexp.MustCompile(`(?i)javascript:`),
		regexp.MustCompile(`(?i)on(load|error|click)\s*=`),
		regexp.MustCompile(`(?i)(union\s+select|drop\s+table|delete\s+from|insert\s+into)`),
		regexp.MustCompile(`(?i)(;\s*--|'\s*or\s+'1'\s*=\s*'1)`),
	}

	forbiddenTopics = []string{
		"赌博", "彩票号码", "股票代码", "生死", "寿命",
		"疾病诊断", "自杀", "违法", "犯罪",
	}

	numberPattern = regexp.MustCompile(`\d+`)
)

// CheckGuardrails screens one user message before any extraction. Returns nil
// when the message is acceptable.
func CheckGuardrails(text string) *GuardrailError {
	if len([]rune(text)) > maxInputLength {
		return &GuardrailError{
			Category: GuardrailTooLong,
			Message:  fmt.Sprintf("message exceeds %d characters", maxInputLength),
		}
	}

	for _, p := range injectionPatterns {
		if p.MatchString(text) {
			return &GuardrailError{
				Category: GuardrailInjection,
				Message:  "message contains a suspicious pattern",
			}
		}
	}

	for _, topic := range forbiddenTopics {
		if strings.Contains(text, topic) {
			return &GuardrailError{
				Category: GuardrailForbiddenTopic,
				Message:  fmt.Sprintf("topic %q is out of scope", topic),
			}
		}
	}

	for _, m := range numberPattern.FindAllString(text, -1) {
		n, err := strconv.Atoi(m)
		if err != nil || n > maxSaneNumber {
			return &GuardrailError{
				Category: GuardrailAbsurdNumber,
				Message:  fmt.Sprintf("number %s is implausibly large", m),
			}
		}
	}

	return nil
}

// RefusalReply maps a guardrail category to the user-facing refusal.
func RefusalReply(category GuardrailCategory) string {
	switch category {
	case GuardrailTooLong:
		return "您的消息太长了，请用简短的话描述想占卜的问题。"
	case GuardrailInjection:
		return "抱歉，您的输入包含不支持的内容，请换个说法。"
	case GuardrailForbiddenTopic:
		return "抱歉，这类问题不在占卜服务范围内，您可以问事业、财运、感情等方面的问题。"
	case GuardrailAbsurdNumber:
		return "起卦只需要两个1到6之间的数字，请重新提供。"
	default:
		return "抱歉，无法处理这条消息，请换个说法。"
	}
}
