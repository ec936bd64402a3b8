package reporting

import (
	"fmt"
	"strings"

	"github.com/BuseDenizH/EssayEval-NLP/internal/models"
	"github.com/BuseDenizH/EssayEval-NLP/internal/projection"
)

// InterpretBand returns the IELTS descriptor for an overall band (0–9).
func InterpretBand(band float64) string {
	switch {
	case band >= 9:
		return "Expert user"
	case band >= 8:
		return "Very good user"
	case band >= 7:
		return "Good user"
	case band >= 6:
		return "Competent user"
	case band >= 5:
		return "Modest user"
	case band >= 4:
		return "Limited user"
	case band >= 3:
		return "Extremely limited user"
	case band >= 2:
		return "Intermittent user"
	case band >= 1:
		return "Non user"
	default:
		return "Did not attempt"
	}
}

// InterpretAgreement explains how far apart the models' overall bands are.
func InterpretAgreement(succeeded int, stdDev float64) string {
	switch {
	case succeeded == 0:
		return "No model produced an assessment."
	case succeeded == 1:
		return "Only one model produced an assessment."
	case stdDev <= 0.25:
		return fmt.Sprintf("Models agree closely (σ=%.2f).", stdDev)
	case stdDev <= 0.75:
		return fmt.Sprintf("Models broadly agree (σ=%.2f).", stdDev)
	default:
		return fmt.Sprintf("Models disagree (σ=%.2f); review the essay manually.", stdDev)
	}
}

// FormatSummaryReport produces a plain-language report for a session.
func FormatSummaryReport(session *models.BenchmarkSession) string {
	var b strings.Builder

	b.WriteString("=== Interpretation ===\n\n")
	if !session.HasResults() {
		b.WriteString("No completed benchmark run.\n")
		return b.String()
	}

	sum := projection.Summarize(session.Results)
	if sum.Succeeded > 0 {
		b.WriteString(fmt.Sprintf("Consensus Band: %.1f — %s\n", sum.ConsensusBand, InterpretBand(sum.ConsensusBand)))
		b.WriteString(fmt.Sprintf("Band Range:     %.1f - %.1f\n", sum.MinOverall, sum.MaxOverall))
	}
	b.WriteString(fmt.Sprintf("Agreement:      %s\n", InterpretAgreement(sum.Succeeded, sum.StdDev)))
	b.WriteString(fmt.Sprintf("Elapsed:        %ss\n", formatElapsed(session.ElapsedSeconds)))
	b.WriteString(fmt.Sprintf("Models:         %d scored, %d failed out of %d\n", sum.Succeeded, len(sum.Failed), sum.Submitted))

	if len(session.Results.Successes()) > 0 {
		b.WriteString("\nPer-Model Interpretation:\n")
		for _, s := range session.Results.Successes() {
			b.WriteString(fmt.Sprintf("  ✓ %s: %.1f — %s\n", s.ModelID, s.Overall, InterpretBand(s.Overall)))
		}
	}
	for _, f := range sum.Failed {
		b.WriteString(fmt.Sprintf("  ✗ %s: %s\n", f.ModelID, f.Error))
	}

	return b.String()
}
