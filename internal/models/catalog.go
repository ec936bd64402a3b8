package models

import (
	"maps"
	"strings"
)

// ColorKeyDefault is the legend key for models outside KnownModels.
const ColorKeyDefault = "default"

// ModelSpec is the static reference information shown next to results.
type ModelSpec struct {
	ID             ModelID            `json:"id" yaml:"id"`
	DisplayName    string             `json:"display_name" yaml:"display_name"`
	Architecture   string             `json:"architecture" yaml:"architecture"`
	Description    string             `json:"description" yaml:"description"`
	MaxInputTokens int                `json:"max_input_tokens" yaml:"max_input_tokens"`
	ColorKey       string             `json:"color_key" yaml:"color_key"`
	Color          string             `json:"color" yaml:"color"`
	Metrics        map[string]float64 `json:"metrics" yaml:"metrics"`
}

// MetricNames is the column order of the evaluation metrics in reference tables.
var MetricNames = []string{"MAE", "MSE", "RMSE", "Pearson", "EvalLoss"}

var catalog = map[ModelID]ModelSpec{
	ModelMPNet: {
		ID:             ModelMPNet,
		DisplayName:    "MPNet",
		Architecture:   "microsoft/mpnet-base",
		Description:    "MPNet combines masked and permuted language modeling.",
		MaxInputTokens: 512,
		ColorKey:       "mpnet",
		Color:          "#3B82F6",
		Metrics:        map[string]float64{"MAE": 0.94, "RMSE": 1.17, "Pearson": 0.59},
	},
	ModelLongformer: {
		ID:             ModelLongformer,
		DisplayName:    "Longformer",
		Architecture:   "allenai/longformer-base-4096",
		Description:    "Longformer efficiently processes long texts beyond 512 tokens.",
		MaxInputTokens: 1024,
		ColorKey:       "longformer",
		Color:          "#10B981",
		Metrics:        map[string]float64{"MAE": 0.92, "EvalLoss": 1.32},
	},
	ModelDeBERTa: {
		ID:             ModelDeBERTa,
		DisplayName:    "DeBERTa",
		Architecture:   "microsoft/deberta-v3-base",
		Description:    "DeBERTa captures long-range dependencies and contextual relationships.",
		MaxInputTokens: 512,
		ColorKey:       "deberta",
		Color:          "#F59E0B",
		Metrics:        map[string]float64{"MAE": 0.84, "MSE": 1.23},
	},
}

// LookupSpec returns the reference spec for id. Unknown ids get a fallback
// spec using the default color key; ok reports whether id was known.
func LookupSpec(id ModelID) (spec ModelSpec, ok bool) {
	spec, ok = catalog[ModelID(strings.ToLower(string(id)))]
	if ok {
		spec.Metrics = maps.Clone(spec.Metrics)
		return spec, true
	}
	return ModelSpec{
		ID:          id,
		DisplayName: strings.ToUpper(string(id)),
		Description: "Unrecognized scoring model.",
		ColorKey:    ColorKeyDefault,
		Color:       "#6B7280",
		Metrics:     map[string]float64{},
	}, false
}

// ColorKey returns the legend key for id.
func ColorKey(id ModelID) string {
	spec, _ := LookupSpec(id)
	return spec.ColorKey
}

// Catalog returns the specs of KnownModels in legend order.
func Catalog() []ModelSpec {
	specs := make([]ModelSpec, 0, len(KnownModels))
	for _, id := range KnownModels {
		spec, _ := LookupSpec(id)
		specs = append(specs, spec)
	}
	return specs
}
