package reporting

import (
	"testing"

	"github.com/BuseDenizH/EssayEval-NLP/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMarkdown(t *testing.T) {
	md := FormatMarkdown(scenarioSession())

	assert.Contains(t, md, "## 📝 EssayEval Benchmark Results")
	assert.Contains(t, md, "**Topic:** Technology in education | **Elapsed:** 1.25s")
	assert.Contains(t, md, "- **Models:** 2 submitted, 1 scored, 1 failed")
	assert.Contains(t, md, "- **Consensus Band:** 7.5 (Good user)")
	assert.Contains(t, md, "| Model | Overall | Task Response | Coherence | Lexical | Grammar | Descriptor |")
	assert.Contains(t, md, "| mpnet | 7.5 | 7 | 8 | 7 | 8 | Good user |")
	assert.Contains(t, md, "### ⚠️ Failed Models")
	assert.Contains(t, md, "- **deberta**: timeout")
}

func TestFormatMarkdown_EscapesPipes(t *testing.T) {
	s := scenarioSession()
	s.Topic = "a | b"
	assert.Contains(t, FormatMarkdown(s), `**Topic:** a \| b`)
}

func TestFormatMarkdown_NoResults(t *testing.T) {
	md := FormatMarkdown(&models.BenchmarkSession{State: models.StateRunning})
	assert.Contains(t, md, "_No completed benchmark run._")
	assert.NotContains(t, md, "### Scores")
}

func TestRenderHTML(t *testing.T) {
	page, err := RenderHTML(FormatMarkdown(scenarioSession()))
	require.NoError(t, err)

	html := string(page)
	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "<title>EssayEval Benchmark Report</title>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<td>mpnet</td>")
	assert.Contains(t, html, "<h3>Scores</h3>")
}

func TestRenderHTML_DropsRawHTML(t *testing.T) {
	page, err := RenderHTML("<script>alert(1)</script>\n")
	require.NoError(t, err)
	assert.NotContains(t, string(page), "<script>")
}
