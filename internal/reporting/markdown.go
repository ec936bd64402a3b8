package reporting

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/BuseDenizH/EssayEval-NLP/internal/models"
	"github.com/BuseDenizH/EssayEval-NLP/internal/projection"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// FormatMarkdown renders a session as a markdown summary.
func FormatMarkdown(session *models.BenchmarkSession) string {
	var b strings.Builder

	b.WriteString("## 📝 EssayEval Benchmark Results\n\n")

	if !session.HasResults() {
		b.WriteString("_No completed benchmark run._\n")
		return b.String()
	}

	sum := projection.Summarize(session.Results)
	topic := session.Topic
	if topic == "" {
		topic = "-"
	}
	b.WriteString(fmt.Sprintf("**Topic:** %s | **Elapsed:** %ss\n\n", escapeCell(topic), formatElapsed(session.ElapsedSeconds)))

	b.WriteString(fmt.Sprintf("- **Models:** %d submitted, %d scored, %d failed\n", sum.Submitted, sum.Succeeded, len(sum.Failed)))
	if sum.Succeeded > 0 {
		b.WriteString(fmt.Sprintf("- **Consensus Band:** %.1f (%s)\n", sum.ConsensusBand, InterpretBand(sum.ConsensusBand)))
		b.WriteString(fmt.Sprintf("- **Band Range:** %.1f - %.1f (σ=%.2f)\n", sum.MinOverall, sum.MaxOverall, sum.StdDev))
	}
	b.WriteString("\n")

	b.WriteString("### Scores\n\n")
	cols := append(header(), "Descriptor")
	b.WriteString("| " + strings.Join(cols, " | ") + " |\n")
	b.WriteString(strings.Repeat("|---", len(cols)) + "|\n")
	for _, r := range projection.FlatTable(session.Results) {
		cells := []string{escapeCell(string(r.ModelID)), formatNumber(r.Overall)}
		for _, c := range models.Criteria {
			cells = append(cells, formatNumber(r.Value(c)))
		}
		cells = append(cells, InterpretBand(r.Overall))
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	b.WriteString("\n")

	if len(sum.Failed) > 0 {
		b.WriteString("### ⚠️ Failed Models\n\n")
		for _, f := range sum.Failed {
			b.WriteString(fmt.Sprintf("- **%s**: %s\n", escapeCell(string(f.ModelID)), escapeCell(f.Error)))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// RenderHTML converts the markdown summary into a standalone HTML page.
func RenderHTML(md string) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(md), &body); err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	page.WriteString("<title>" + html.EscapeString(reportTitle) + "</title>\n")
	page.WriteString("<style>body{font-family:system-ui,sans-serif;max-width:860px;margin:2rem auto;color:#111827}" +
		"table{border-collapse:collapse}th,td{border:1px solid #d1d5db;padding:4px 10px;text-align:center}</style>\n")
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}
