package projection

import (
	"github.com/BuseDenizH/EssayEval-NLP/internal/metrics"
	"github.com/BuseDenizH/EssayEval-NLP/internal/models"
	"github.com/samber/lo"
)

// FailedModel is a model that produced no assessment, kept for display.
type FailedModel struct {
	ModelID   models.ModelID `json:"model_id"`
	Error     string         `json:"error"`
	Malformed bool           `json:"malformed,omitempty"`
}

// Summary aggregates the overall bands of the successful models.
type Summary struct {
	Submitted   int           `json:"submitted"`
	Succeeded   int           `json:"succeeded"`
	Failed      []FailedModel `json:"failed"`
	MeanOverall float64       `json:"mean_overall"`
	MinOverall  float64       `json:"min_overall"`
	MaxOverall  float64       `json:"max_overall"`
	StdDev      float64       `json:"std_dev"`
	// ConsensusBand is the mean overall rounded to the nearest half band.
	ConsensusBand float64 `json:"consensus_band"`
}

// Summarize computes a Summary. With no successful models every statistic is zero.
func Summarize(set *models.NormalizedSet) Summary {
	overall := lo.Map(set.Successes(), func(s models.Success, _ int) float64 {
		return s.Overall
	})
	lowest, highest := metrics.Range(overall)
	mean := metrics.Mean(overall)

	return Summary{
		Submitted: set.Len(),
		Succeeded: len(overall),
		Failed: lo.Map(set.Failures(), func(f models.Failure, _ int) FailedModel {
			return FailedModel{ModelID: f.ModelID, Error: f.Error, Malformed: f.Malformed}
		}),
		MeanOverall:   mean,
		MinOverall:    lowest,
		MaxOverall:    highest,
		StdDev:        metrics.StdDev(overall),
		ConsensusBand: metrics.RoundHalf(mean),
	}
}

// Views bundles every projection of one set, as served to the rendering layer.
type Views struct {
	Ranked  []RankedEntry          `json:"ranked"`
	Matrix  []CriterionRow         `json:"matrix"`
	Table   []models.ComparisonRow `json:"table"`
	Summary Summary                `json:"summary"`
}

// All computes every view of set.
func All(set *models.NormalizedSet) Views {
	return Views{
		Ranked:  RankedOverall(set),
		Matrix:  CriterionMatrix(set),
		Table:   FlatTable(set),
		Summary: Summarize(set),
	}
}
