// Package tokens estimates whether an essay fits the input window of the
// scoring models.
package tokens

import (
	"math"
	"unicode/utf8"

	"github.com/BuseDenizH/EssayEval-NLP/internal/models"
)

const charsPerToken = 4

// Estimate approximates the token count of text as ~4 characters per token.
func Estimate(text string) int {
	return int(math.Ceil(float64(utf8.RuneCountInString(text)) / float64(charsPerToken)))
}

// Truncation is a model whose input window is smaller than the essay. The
// model only reads the first Limit tokens.
type Truncation struct {
	ModelID models.ModelID `json:"model_id"`
	Tokens  int            `json:"tokens"`
	Limit   int            `json:"limit"`
}

// CheckWindows returns the models in ids whose input window the essay
// overflows, in the order given. Models without a known window are skipped.
func CheckWindows(essay string, ids []models.ModelID) []Truncation {
	n := Estimate(essay)
	var out []Truncation
	for _, id := range ids {
		spec, ok := models.LookupSpec(id)
		if !ok || spec.MaxInputTokens <= 0 {
			continue
		}
		if n > spec.MaxInputTokens {
			out = append(out, Truncation{ModelID: spec.ID, Tokens: n, Limit: spec.MaxInputTokens})
		}
	}
	return out
}
