package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/BuseDenizH/EssayEval-NLP/internal/models"
	"github.com/BuseDenizH/EssayEval-NLP/internal/projection"
)

const (
	colModel   = 14
	colScore   = 9
	colMetric  = 9
	colArchDef = 30
)

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// renderScores prints the comparison table of a completed run. Model names
// are colored with their legend color unless noColor is set.
func renderScores(w io.Writer, set *models.NormalizedSet, noColor bool) {
	header := []string{padRight("Model", colModel), padRight("Overall", colScore)}
	for _, c := range models.Criteria {
		header = append(header, padRight(c.Label(), colScore))
	}
	fmt.Fprintln(w, stylize(strings.TrimRight(strings.Join(header, "  "), " "), noColor, lipgloss.NewStyle().Bold(true))) //nolint:errcheck

	for _, r := range projection.FlatTable(set) {
		cells := []string{modelCell(r.ModelID, noColor), padRight(formatScore(r.Overall), colScore)}
		for _, c := range models.Criteria {
			cells = append(cells, padRight(formatScore(r.Value(c)), colScore))
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " ")) //nolint:errcheck
	}

	for _, f := range set.Failures() {
		msg := fmt.Sprintf("%s  failed: %s", modelCell(f.ModelID, noColor), f.Error)
		fmt.Fprintln(w, stylize(msg, noColor, lipgloss.NewStyle().Faint(true))) //nolint:errcheck
	}
	fmt.Fprintln(w) //nolint:errcheck
}

// renderCatalog prints the model reference table.
func renderCatalog(w io.Writer, specs []models.ModelSpec, noColor bool) {
	header := []string{padRight("Model", colModel), padRight("Architecture", colArchDef), padRight("Max tokens", 11)}
	for _, m := range models.MetricNames {
		header = append(header, padRight(m, colMetric))
	}
	fmt.Fprintln(w, stylize(strings.TrimRight(strings.Join(header, "  "), " "), noColor, lipgloss.NewStyle().Bold(true))) //nolint:errcheck

	for _, spec := range specs {
		cells := []string{
			modelCell(spec.ID, noColor),
			padRight(truncateName(spec.Architecture, colArchDef), colArchDef),
			padRight(fmt.Sprintf("%d", spec.MaxInputTokens), 11),
		}
		for _, m := range models.MetricNames {
			v, ok := spec.Metrics[m]
			cell := "-"
			if ok {
				cell = fmt.Sprintf("%.2f", v)
			}
			cells = append(cells, padRight(cell, colMetric))
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " ")) //nolint:errcheck
	}
}

func modelCell(id models.ModelID, noColor bool) string {
	spec, _ := models.LookupSpec(id)
	cell := padRight(truncateName(spec.DisplayName, colModel), colModel)
	return stylize(cell, noColor, lipgloss.NewStyle().Foreground(lipgloss.Color(spec.Color)))
}

func stylize(text string, noColor bool, style lipgloss.Style) string {
	if noColor {
		return text
	}
	return style.Render(text)
}

func formatScore(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

// truncateName shortens a name to maxLen runes, replacing the last rune with "…" if needed.
func truncateName(name string, maxLen int) string {
	runes := []rune(name)
	if len(runes) <= maxLen {
		return name
	}
	return string(runes[:maxLen-1]) + "…"
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
