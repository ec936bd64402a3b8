package models

import (
	"encoding/json"
	"fmt"
)

// ModelID identifies one scoring backend (e.g. "mpnet").
type ModelID string

const (
	ModelMPNet      ModelID = "mpnet"
	ModelLongformer ModelID = "longformer"
	ModelDeBERTa    ModelID = "deberta"
)

// KnownModels lists the models served by the reference deployment, in legend order.
var KnownModels = []ModelID{ModelMPNet, ModelLongformer, ModelDeBERTa}

// IsKnown reports whether id is one of KnownModels.
func (id ModelID) IsKnown() bool {
	for _, k := range KnownModels {
		if k == id {
			return true
		}
	}
	return false
}

// Criterion is one of the four assessed sub-dimensions.
type Criterion string

const (
	CriterionTaskResponse Criterion = "task_response"
	CriterionCoherence    Criterion = "coherence"
	CriterionLexical      Criterion = "lexical"
	CriterionGrammar      Criterion = "grammar"
)

// Criteria is the fixed criterion order used by every view and export.
var Criteria = [4]Criterion{
	CriterionTaskResponse,
	CriterionCoherence,
	CriterionLexical,
	CriterionGrammar,
}

// Label returns the column/axis label for c.
func (c Criterion) Label() string {
	switch c {
	case CriterionTaskResponse:
		return "Task Response"
	case CriterionCoherence:
		return "Coherence"
	case CriterionLexical:
		return "Lexical"
	case CriterionGrammar:
		return "Grammar"
	default:
		return string(c)
	}
}

// ScoreCriteria holds the four sub-scores of a successful assessment.
// Values are passed through as received; nothing clamps them to the 0-9 band range.
type ScoreCriteria struct {
	TaskResponse float64 `json:"task_response"`
	Coherence    float64 `json:"coherence"`
	Lexical      float64 `json:"lexical"`
	Grammar      float64 `json:"grammar"`
}

// Value returns the sub-score for c.
func (s ScoreCriteria) Value(c Criterion) float64 {
	switch c {
	case CriterionTaskResponse:
		return s.TaskResponse
	case CriterionCoherence:
		return s.Coherence
	case CriterionLexical:
		return s.Lexical
	case CriterionGrammar:
		return s.Grammar
	default:
		panic(fmt.Sprintf("models: unknown criterion %q", c))
	}
}

// ResultStatus is the variant tag of a ModelResult on the wire.
type ResultStatus string

const (
	ResultSuccess ResultStatus = "success"
	ResultFailure ResultStatus = "failure"
)

// ModelResult is the outcome of one model for one benchmark run. It is either
// a Success or a Failure; consumers switch on the concrete type.
type ModelResult interface {
	Model() ModelID
	Status() ResultStatus
	isModelResult()
}

// Success is a model that returned a complete assessment.
type Success struct {
	ModelID  ModelID
	Overall  float64
	Criteria ScoreCriteria
}

// Failure is a model that returned an error or an unusable payload.
type Failure struct {
	ModelID ModelID
	Error   string

	// Malformed is set when the payload matched neither the success nor the error shape.
	Malformed bool
}

// Err returns the failure as a *ModelError.
func (f Failure) Err() error {
	return &ModelError{ModelID: f.ModelID, Message: f.Error, Malformed: f.Malformed}
}

func (s Success) Model() ModelID       { return s.ModelID }
func (s Success) Status() ResultStatus { return ResultSuccess }
func (Success) isModelResult()         {}

func (f Failure) Model() ModelID       { return f.ModelID }
func (f Failure) Status() ResultStatus { return ResultFailure }
func (Failure) isModelResult()         {}

// resultJSON is the flattened wire form shared by both variants.
type resultJSON struct {
	ModelID   ModelID        `json:"model_id"`
	Status    ResultStatus   `json:"status"`
	Overall   *float64       `json:"overall,omitempty"`
	Criteria  *ScoreCriteria `json:"criteria,omitempty"`
	Error     string         `json:"error,omitempty"`
	Malformed bool           `json:"malformed,omitempty"`
}

func (s Success) MarshalJSON() ([]byte, error) {
	overall := s.Overall
	criteria := s.Criteria
	return json.Marshal(resultJSON{
		ModelID:  s.ModelID,
		Status:   ResultSuccess,
		Overall:  &overall,
		Criteria: &criteria,
	})
}

func (f Failure) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		ModelID:   f.ModelID,
		Status:    ResultFailure,
		Error:     f.Error,
		Malformed: f.Malformed,
	})
}

// ComparisonRow is one line of the flat comparison table. Rows are produced
// by projection.FlatTable and never built by hand elsewhere.
type ComparisonRow struct {
	ModelID      ModelID `json:"model_id"`
	Overall      float64 `json:"overall"`
	TaskResponse float64 `json:"task_response"`
	Coherence    float64 `json:"coherence"`
	Lexical      float64 `json:"lexical"`
	Grammar      float64 `json:"grammar"`
}

// Value returns the sub-score for c.
func (r ComparisonRow) Value(c Criterion) float64 {
	return ScoreCriteria{
		TaskResponse: r.TaskResponse,
		Coherence:    r.Coherence,
		Lexical:      r.Lexical,
		Grammar:      r.Grammar,
	}.Value(c)
}
