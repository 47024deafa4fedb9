package algorithm

import (
	"context"
	"fmt"
	"time"

	"liuren/internal/chart"
	"liuren/internal/interpret"
	"liuren/internal/knowledge"
	"liuren/internal/logging"
)

// LiurenName is the registry name of the built-in adapter.
const LiurenName = "xlr-liuren"

// LiurenAdapter wraps the chart and interpretation engines behind the Adapter
// boundary.
type LiurenAdapter struct {
	chartEngine     *chart.Engine
	interpretEngine *interpret.Engine
}

// NewLiurenAdapter builds the adapter over one loaded knowledge base.
func NewLiurenAdapter(base *knowledge.Base) (*LiurenAdapter, error) {
	chartEngine, err := chart.NewEngine(base)
	if err != nil {
		return nil, fmt.Errorf("liuren adapter: %w", err)
	}
	interpretEngine, err := interpret.NewEngine(base)
	if err != nil {
		return nil, fmt.Errorf("liuren adapter: %w", err)
	}
	return &LiurenAdapter{
		chartEngine:     chartEngine,
		interpretEngine: interpretEngine,
	}, nil
}

// Name implements Adapter.
func (a *LiurenAdapter) Name() string { return LiurenName }

// Describe implements Adapter.
func (a *LiurenAdapter) Describe() string {
	return "小六壬起卦与解卦：两数定落宫，排六宫、六兽、六亲，按问事类型解读"
}

// Validate implements Adapter. Numbers must be in [1,6]; gender, when set,
// must be one of the accepted values; the lost-object operation needs a
// description.
func (a *LiurenAdapter) Validate(in Inputs) *Invalid {
	var fields []FieldError

	if in.Number1 < 1 || in.Number1 > 6 {
		fields = append(fields, FieldError{Field: "number1", Reason: fmt.Sprintf("must be 1-6, got %d", in.Number1)})
	}
	if in.Number2 < 1 || in.Number2 > 6 {
		fields = append(fields, FieldError{Field: "number2", Reason: fmt.Sprintf("must be 1-6, got %d", in.Number2)})
	}
	if in.Gender != "" && in.Gender != interpret.GenderMale && in.Gender != interpret.GenderFemale {
		fields = append(fields, FieldError{Field: "gender", Reason: fmt.Sprintf("must be %s or %s", interpret.GenderMale, interpret.GenderFemale)})
	}
	if in.AskTime.IsZero() {
		fields = append(fields, FieldError{Field: "ask_time", Reason: "required"})
	}
	if in.Operation == OpFindLostObject && in.Description == "" {
		fields = append(fields, FieldError{Field: "description", Reason: "required for lost-object queries"})
	}

	if len(fields) == 0 {
		return nil
	}
	return &Invalid{Fields: fields}
}

// Run implements Adapter. It computes the chart and, per operation, the
// interpretation or lost-object report.
func (a *LiurenAdapter) Run(ctx context.Context, in Inputs) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if inv := a.Validate(in); inv != nil {
		return nil, inv
	}

	timer := logging.StartTimer(logging.CategoryRouting, fmt.Sprintf("%s run %s", LiurenName, in.Operation))
	defer timer.StopWithThreshold(500 * time.Millisecond)

	c, err := a.chartEngine.Generate(in.Number1, in.Number2, in.AskTime)
	if err != nil {
		return nil, fmt.Errorf("chart generation: %w", err)
	}

	out := &Output{Chart: c}

	switch in.Operation {
	case OpCompute:
		out.Summary = fmt.Sprintf("落宫%s（第%d宫），时辰%s",
			c.PalaceAtLuogong().Name, c.Luogong, c.HourBranch.Name)

	case OpFindLostObject:
		report, err := a.interpretEngine.FindLostObject(c, in.Description)
		if err != nil {
			return nil, fmt.Errorf("lost-object analysis: %w", err)
		}
		out.LostObject = report
		out.Summary = report.Guidance

	case OpInterpret, "":
		questionType := in.QuestionType
		if questionType == "" {
			questionType = interpret.QuestionGeneric
		}
		result, err := a.interpretEngine.Analyze(c, questionType, in.Gender)
		if err != nil {
			return nil, fmt.Errorf("interpretation: %w", err)
		}
		out.Interpretation = result
		out.Summary = result.Summary

	default:
		return nil, fmt.Errorf("liuren adapter: unsupported operation %q", in.Operation)
	}

	return out, nil
}
