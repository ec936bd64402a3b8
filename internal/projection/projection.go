// Package projection derives the read-only views the dashboard and the
// exporters consume. Every function is a pure function of a NormalizedSet and
// is recomputed on each call; nothing here caches derived state.
package projection

import (
	"github.com/BuseDenizH/EssayEval-NLP/internal/models"
	"github.com/samber/lo"
)

// RankedEntry is one bar of the overall-score comparison.
type RankedEntry struct {
	ModelID  models.ModelID `json:"model_id"`
	Overall  float64        `json:"overall"`
	ColorKey string         `json:"color_key"`
}

// CriterionRow is one axis of the multi-criterion comparison.
type CriterionRow struct {
	Criterion models.Criterion           `json:"criterion"`
	Label     string                     `json:"label"`
	Values    map[models.ModelID]float64 `json:"values"`
}

// RankedOverall lists successful models with their overall score in arrival
// order. The order is positional for the color legend and is never sorted by score.
func RankedOverall(set *models.NormalizedSet) []RankedEntry {
	return lo.Map(set.Successes(), func(s models.Success, _ int) RankedEntry {
		return RankedEntry{
			ModelID:  s.ModelID,
			Overall:  s.Overall,
			ColorKey: models.ColorKey(s.ModelID),
		}
	})
}

// CriterionMatrix returns exactly one row per criterion in the fixed order,
// holding a value for every successful model.
func CriterionMatrix(set *models.NormalizedSet) []CriterionRow {
	successes := set.Successes()
	rows := make([]CriterionRow, 0, len(models.Criteria))
	for _, c := range models.Criteria {
		rows = append(rows, CriterionRow{
			Criterion: c,
			Label:     c.Label(),
			Values: lo.SliceToMap(successes, func(s models.Success) (models.ModelID, float64) {
				return s.ModelID, s.Criteria.Value(c)
			}),
		})
	}
	return rows
}

// FlatTable returns one ComparisonRow per successful model, in the same order
// as RankedOverall.
func FlatTable(set *models.NormalizedSet) []models.ComparisonRow {
	return lo.FilterMap(set.Results(), func(r models.ModelResult, _ int) (models.ComparisonRow, bool) {
		switch v := r.(type) {
		case models.Success:
			return models.ComparisonRow{
				ModelID:      v.ModelID,
				Overall:      v.Overall,
				TaskResponse: v.Criteria.TaskResponse,
				Coherence:    v.Criteria.Coherence,
				Lexical:      v.Criteria.Lexical,
				Grammar:      v.Criteria.Grammar,
			}, true
		case models.Failure:
			return models.ComparisonRow{}, false
		default:
			return models.ComparisonRow{}, false
		}
	})
}
