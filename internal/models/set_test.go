package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizedSet_PreservesArrivalOrder(t *testing.T) {
	set := NewNormalizedSet(
		Success{ModelID: ModelDeBERTa, Overall: 6.5},
		Failure{ModelID: ModelMPNet, Error: "timeout"},
		Success{ModelID: ModelLongformer, Overall: 7},
	)

	assert.Equal(t, 3, set.Len())
	assert.Equal(t, []ModelID{ModelDeBERTa, ModelMPNet, ModelLongformer}, set.IDs())

	successes := set.Successes()
	require.Len(t, successes, 2)
	assert.Equal(t, ModelDeBERTa, successes[0].ModelID)
	assert.Equal(t, ModelLongformer, successes[1].ModelID)

	failures := set.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "timeout", failures[0].Error)
}

func TestNormalizedSet_DuplicateKeepsFirstPosition(t *testing.T) {
	set := NewNormalizedSet(
		Success{ModelID: ModelMPNet, Overall: 5},
		Success{ModelID: ModelDeBERTa, Overall: 6},
		Failure{ModelID: ModelMPNet, Error: "late error"},
	)

	assert.Equal(t, []ModelID{ModelMPNet, ModelDeBERTa}, set.IDs())
	r, ok := set.Get(ModelMPNet)
	require.True(t, ok)
	assert.IsType(t, Failure{}, r)
}

func TestNormalizedSet_NilIsEmpty(t *testing.T) {
	var set *NormalizedSet

	assert.Equal(t, 0, set.Len())
	assert.Empty(t, set.Results())
	assert.NotNil(t, set.Successes())
	assert.NotNil(t, set.Failures())
	_, ok := set.Get(ModelMPNet)
	assert.False(t, ok)
}

func TestNormalizedSet_ResultsIsACopy(t *testing.T) {
	set := NewNormalizedSet(Success{ModelID: ModelMPNet, Overall: 5})
	results := set.Results()
	results[0] = Failure{ModelID: ModelMPNet, Error: "mutated"}

	r, _ := set.Get(ModelMPNet)
	assert.IsType(t, Success{}, r)
}

func TestNormalizedSet_MarshalJSON(t *testing.T) {
	set := NewNormalizedSet(
		Success{ModelID: ModelMPNet, Overall: 7.5, Criteria: ScoreCriteria{TaskResponse: 7, Coherence: 8, Lexical: 7, Grammar: 8}},
		Failure{ModelID: ModelDeBERTa, Error: "timeout"},
	)

	data, err := json.Marshal(set)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "success", decoded[0]["status"])
	assert.Equal(t, 7.5, decoded[0]["overall"])
	assert.Equal(t, "failure", decoded[1]["status"])
	assert.Equal(t, "timeout", decoded[1]["error"])
	assert.NotContains(t, decoded[1], "overall")
}

func TestFailureErr(t *testing.T) {
	err := Failure{ModelID: ModelDeBERTa, Error: "timeout"}.Err()

	var me *ModelError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, ModelDeBERTa, me.ModelID)
	assert.Equal(t, "model deberta: timeout", err.Error())
}

func TestCriterionOrderAndLabels(t *testing.T) {
	labels := make([]string, 0, len(Criteria))
	for _, c := range Criteria {
		labels = append(labels, c.Label())
	}
	assert.Equal(t, []string{"Task Response", "Coherence", "Lexical", "Grammar"}, labels)

	sc := ScoreCriteria{TaskResponse: 1, Coherence: 2, Lexical: 3, Grammar: 4}
	assert.Equal(t, 3.0, sc.Value(CriterionLexical))
}

func TestLookupSpec(t *testing.T) {
	spec, ok := LookupSpec(ModelMPNet)
	require.True(t, ok)
	assert.Equal(t, "mpnet", spec.ColorKey)
	assert.InDelta(t, 0.94, spec.Metrics["MAE"], 1e-9)

	spec.Metrics["MAE"] = 99
	again, _ := LookupSpec(ModelMPNet)
	assert.InDelta(t, 0.94, again.Metrics["MAE"], 1e-9)

	unknown, ok := LookupSpec("roberta")
	assert.False(t, ok)
	assert.Equal(t, ColorKeyDefault, unknown.ColorKey)
	assert.Equal(t, "ROBERTA", unknown.DisplayName)

	assert.Len(t, Catalog(), len(KnownModels))
}

func TestSessionMetaCopiesElapsed(t *testing.T) {
	elapsed := 1.25
	s := &BenchmarkSession{Topic: "Technology", ElapsedSeconds: &elapsed, State: StateCompleted}

	meta := s.Meta(s.StartedAt)
	require.NotNil(t, meta.ElapsedSeconds)
	*meta.ElapsedSeconds = 99
	assert.InDelta(t, 1.25, *s.ElapsedSeconds, 1e-9)
	assert.Equal(t, "Technology", meta.Topic)
	assert.False(t, s.Completed())
}
