package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BuseDenizH/EssayEval-NLP/internal/models"
)

func TestEstimate(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"test", 1},
		{"testing", 2},
		{"The quick brown fox jumps over the lazy dog.", 11},
		{strings.Repeat("é", 8), 2},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Estimate(tt.input), "Estimate(%q)", tt.input)
	}
}

func TestCheckWindows(t *testing.T) {
	ids := []models.ModelID{models.ModelMPNet, models.ModelLongformer, models.ModelDeBERTa, "custom"}

	// 3200 characters ~ 800 tokens: over 512, under 1024.
	essay := strings.Repeat("abcd", 800)
	got := CheckWindows(essay, ids)
	require.Equal(t, []Truncation{
		{ModelID: models.ModelMPNet, Tokens: 800, Limit: 512},
		{ModelID: models.ModelDeBERTa, Tokens: 800, Limit: 512},
	}, got)

	require.Empty(t, CheckWindows("A short essay.", ids))
}

var benchInput = strings.Repeat("The quick brown fox jumps over the lazy dog. ", 100)

func BenchmarkEstimate(b *testing.B) {
	for b.Loop() {
		Estimate(benchInput)
	}
}
