// Package normalize turns the raw per-model payloads of a scoring response
// into a models.NormalizedSet.
package normalize

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BuseDenizH/EssayEval-NLP/internal/models"
	"github.com/go-viper/mapstructure/v2"
)

// MalformedPrefix starts the error message of every synthetic failure.
const MalformedPrefix = "malformed response"

// payloadShape accepts both the success and the error shape. Pointer fields
// tell a missing key apart from a zero score.
type payloadShape struct {
	Overall  *float64       `mapstructure:"overall"`
	Criteria *criteriaShape `mapstructure:"criteria"`
	Error    *string        `mapstructure:"error"`
}

type criteriaShape struct {
	TaskResponse *float64 `mapstructure:"task_response"`
	Coherence    *float64 `mapstructure:"coherence"`
	Lexical      *float64 `mapstructure:"lexical"`
	Grammar      *float64 `mapstructure:"grammar"`
}

// Normalize converts raw into one ModelResult per key, in key order. A payload
// that is neither a complete success nor an error becomes a malformed
// Failure; Normalize never fails as a whole.
func Normalize(raw *models.RawResults) *models.NormalizedSet {
	if raw == nil {
		return models.NewNormalizedSet()
	}

	results := make([]models.ModelResult, 0, raw.Len())
	for pair := raw.Oldest(); pair != nil; pair = pair.Next() {
		id := models.ModelID(pair.Key)
		r := decodePayload(id, pair.Value)
		if f, ok := r.(models.Failure); ok {
			slog.Warn("model returned no assessment", "model", id, "error", f.Error, "malformed", f.Malformed)
		} else {
			slog.Debug("model assessment decoded", "model", id)
		}
		results = append(results, r)
	}
	return models.NewNormalizedSet(results...)
}

func decodePayload(id models.ModelID, payload json.RawMessage) models.ModelResult {
	var generic any
	if err := json.Unmarshal(payload, &generic); err != nil {
		return malformed(id, "invalid JSON: %v", err)
	}
	obj, ok := generic.(map[string]any)
	if !ok {
		return malformed(id, "payload is %s, not an object", describe(generic))
	}

	var shape payloadShape
	if err := mapstructure.Decode(obj, &shape); err != nil {
		return malformed(id, "%v", err)
	}

	if shape.Error != nil {
		msg := strings.TrimSpace(*shape.Error)
		if msg == "" {
			msg = "unspecified model error"
		}
		return models.Failure{ModelID: id, Error: msg}
	}

	if missing := missingFields(shape); len(missing) > 0 {
		return malformed(id, "missing %s", strings.Join(missing, ", "))
	}

	return models.Success{
		ModelID: id,
		Overall: *shape.Overall,
		Criteria: models.ScoreCriteria{
			TaskResponse: *shape.Criteria.TaskResponse,
			Coherence:    *shape.Criteria.Coherence,
			Lexical:      *shape.Criteria.Lexical,
			Grammar:      *shape.Criteria.Grammar,
		},
	}
}

func missingFields(shape payloadShape) []string {
	var missing []string
	if shape.Overall == nil {
		missing = append(missing, "overall")
	}
	if shape.Criteria == nil {
		return append(missing, "criteria")
	}
	fields := []struct {
		name  models.Criterion
		value *float64
	}{
		{models.CriterionTaskResponse, shape.Criteria.TaskResponse},
		{models.CriterionCoherence, shape.Criteria.Coherence},
		{models.CriterionLexical, shape.Criteria.Lexical},
		{models.CriterionGrammar, shape.Criteria.Grammar},
	}
	for _, f := range fields {
		if f.value == nil {
			missing = append(missing, "criteria."+string(f.name))
		}
	}
	return missing
}

func malformed(id models.ModelID, format string, args ...any) models.Failure {
	return models.Failure{
		ModelID:   id,
		Error:     MalformedPrefix + ": " + fmt.Sprintf(format, args...),
		Malformed: true,
	}
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "an array"
	case string:
		return "a string"
	case float64:
		return "a number"
	case bool:
		return "a boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
