package normalize

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/BuseDenizH/EssayEval-NLP/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawFromJSON(t *testing.T, body string) *models.RawResults {
	t.Helper()
	raw := models.NewRawResults()
	require.NoError(t, json.Unmarshal([]byte(body), raw))
	return raw
}

func TestNormalize_MixedSuccessAndFailure(t *testing.T) {
	raw := rawFromJSON(t, `{
		"mpnet": {"overall": 7.5, "criteria": {"task_response": 7, "coherence": 8, "lexical": 7, "grammar": 8}},
		"deberta": {"error": "timeout"}
	}`)

	set := Normalize(raw)

	require.Equal(t, 2, set.Len())
	assert.Equal(t, []models.ModelID{models.ModelMPNet, models.ModelDeBERTa}, set.IDs())

	r, ok := set.Get(models.ModelMPNet)
	require.True(t, ok)
	s, ok := r.(models.Success)
	require.True(t, ok)
	assert.Equal(t, 7.5, s.Overall)
	assert.Equal(t, models.ScoreCriteria{TaskResponse: 7, Coherence: 8, Lexical: 7, Grammar: 8}, s.Criteria)

	r, ok = set.Get(models.ModelDeBERTa)
	require.True(t, ok)
	f, ok := r.(models.Failure)
	require.True(t, ok)
	assert.Equal(t, "timeout", f.Error)
	assert.False(t, f.Malformed)
}

func TestNormalize_PreservesKeyOrder(t *testing.T) {
	raw := rawFromJSON(t, `{
		"longformer": {"error": "oom"},
		"deberta": {"overall": 6, "criteria": {"task_response": 6, "coherence": 6, "lexical": 6, "grammar": 6}},
		"mpnet": {"overall": 5, "criteria": {"task_response": 5, "coherence": 5, "lexical": 5, "grammar": 5}}
	}`)

	set := Normalize(raw)

	assert.Equal(t, []models.ModelID{models.ModelLongformer, models.ModelDeBERTa, models.ModelMPNet}, set.IDs())
}

func TestNormalize_MalformedPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"missing criteria", `{"overall": 7}`, "missing criteria"},
		{"missing overall", `{"criteria": {"task_response": 7, "coherence": 8, "lexical": 7, "grammar": 8}}`, "missing overall"},
		{"missing one criterion", `{"overall": 7, "criteria": {"task_response": 7, "coherence": 8, "lexical": 7}}`, "missing criteria.grammar"},
		{"string score", `{"overall": "7.5", "criteria": {"task_response": 7, "coherence": 8, "lexical": 7, "grammar": 8}}`, "overall"},
		{"null payload", `null`, "payload is null"},
		{"array payload", `[1, 2]`, "payload is an array"},
		{"empty object", `{}`, "missing overall, criteria"},
		{"non-string error", `{"error": 42}`, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := models.NewRawResults()
			raw.Set("mpnet", json.RawMessage(tt.payload))

			set := Normalize(raw)

			require.Equal(t, 1, set.Len())
			r, _ := set.Get(models.ModelMPNet)
			f, ok := r.(models.Failure)
			require.True(t, ok, "expected a Failure, got %T", r)
			assert.True(t, f.Malformed)
			assert.True(t, strings.HasPrefix(f.Error, MalformedPrefix), f.Error)
			assert.Contains(t, f.Error, tt.want)
		})
	}
}

func TestNormalize_InvalidJSONPayload(t *testing.T) {
	raw := models.NewRawResults()
	raw.Set("mpnet", json.RawMessage(`{"overall":`))
	raw.Set("deberta", json.RawMessage(`{"error": "boom"}`))

	set := Normalize(raw)

	require.Equal(t, 2, set.Len())
	r, _ := set.Get(models.ModelMPNet)
	assert.True(t, r.(models.Failure).Malformed)
	r, _ = set.Get(models.ModelDeBERTa)
	assert.Equal(t, "boom", r.(models.Failure).Error)
}

func TestNormalize_EmptyErrorMessage(t *testing.T) {
	raw := rawFromJSON(t, `{"deberta": {"error": "  "}}`)

	set := Normalize(raw)

	r, _ := set.Get(models.ModelDeBERTa)
	assert.Equal(t, "unspecified model error", r.(models.Failure).Error)
}

func TestNormalize_ErrorWinsOverScores(t *testing.T) {
	raw := rawFromJSON(t, `{"mpnet": {"error": "partial", "overall": 5}}`)

	set := Normalize(raw)

	r, _ := set.Get(models.ModelMPNet)
	assert.IsType(t, models.Failure{}, r)
}

func TestNormalize_ValuesPassThroughUnclamped(t *testing.T) {
	raw := rawFromJSON(t, `{"mpnet": {"overall": 11.25, "criteria": {"task_response": -1, "coherence": 0, "lexical": 9.5, "grammar": 12}}}`)

	set := Normalize(raw)

	s := set.Successes()
	require.Len(t, s, 1)
	assert.Equal(t, 11.25, s[0].Overall)
	assert.Equal(t, -1.0, s[0].Criteria.TaskResponse)
	assert.Equal(t, 0.0, s[0].Criteria.Coherence)
	assert.Equal(t, 12.0, s[0].Criteria.Grammar)
}

func TestNormalize_UnknownModelPassesThrough(t *testing.T) {
	raw := rawFromJSON(t, `{"roberta": {"overall": 6, "criteria": {"task_response": 6, "coherence": 6, "lexical": 6, "grammar": 6}}}`)

	set := Normalize(raw)

	assert.Equal(t, []models.ModelID{"roberta"}, set.IDs())
}

func TestNormalize_EmptyAndNil(t *testing.T) {
	assert.Equal(t, 0, Normalize(nil).Len())
	assert.Equal(t, 0, Normalize(rawFromJSON(t, `{}`)).Len())
}
