// Package algorithm defines the adapter boundary between the conversation
// layer and the divination engines, plus the registry that routes requests to
// a named adapter.
package algorithm

import (
	"context"
	"fmt"
	"time"

	"liuren/internal/chart"
	"liuren/internal/interpret"
)

// Operation selects what an adapter run should produce.
type Operation string

const (
	OpCompute        Operation = "compute"
	OpInterpret      Operation = "interpret"
	OpFindLostObject Operation = "find_lost_object"
)

// Inputs is the fully resolved request an adapter runs on. The conversation
// layer guarantees required slots are present before handing this over;
// Validate re-checks anyway because adapters are also callable directly.
type Inputs struct {
	Operation    Operation
	Number1      int
	Number2      int
	Gender       string
	QuestionType string
	AskTime      time.Time
	Description  string // lost-object description, optional otherwise
}

// FieldError describes one rejected input field.
type FieldError struct {
	Field  string
	Reason string
}

// Invalid is the non-panicking validation result: a list of field errors. A
// nil *Invalid means the inputs are acceptable.
type Invalid struct {
	Fields []FieldError
}

// Error implements error so an Invalid can travel through error returns when
// a caller prefers that shape.
func (v *Invalid) Error() string {
	if v == nil || len(v.Fields) == 0 {
		return "invalid inputs"
	}
	return fmt.Sprintf("invalid inputs: %s (%s)", v.Fields[0].Field, v.Fields[0].Reason)
}

// FieldNames returns the rejected field names in order.
func (v *Invalid) FieldNames() []string {
	if v == nil {
		return nil
	}
	out := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		out[i] = f.Field
	}
	return out
}

// Output is what a run produces. Chart is always set on success; the other
// fields depend on the operation.
type Output struct {
	Chart          *chart.Chart
	Interpretation *interpret.Interpretation
	LostObject     *interpret.LostObjectReport
	Summary        string
}

// Adapter is one named divination algorithm. Implementations must be safe for
// concurrent use; per-request state lives in Inputs and Output only.
type Adapter interface {
	Name() string
	Describe() string
	Validate(in Inputs) *Invalid
	Run(ctx context.Context, in Inputs) (*Output, error)
}
