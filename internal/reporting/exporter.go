// Package reporting produces the downloadable artifacts of a completed
// benchmark session: a workbook, a page document and a delimited text file,
// plus the markdown and HTML summaries served by the dashboard.
package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BuseDenizH/EssayEval-NLP/internal/models"
	"github.com/BuseDenizH/EssayEval-NLP/internal/projection"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	filenamePrefix = "essayeval-report"
	stampLayout    = "20060102-150405"
	reportTitle    = "EssayEval Benchmark Report"
)

// Input is everything an exporter reads. Exporters never modify it.
type Input struct {
	Rows []models.ComparisonRow
	Meta models.SessionMeta
	// Snapshot is a PNG or JPEG capture of the results view. Only the page
	// document uses it.
	Snapshot []byte
}

// NewInput builds the export input for session at now. It fails with
// models.ErrNoCompletedRun when the session holds no results.
func NewInput(session *models.BenchmarkSession, now time.Time, snapshot []byte) (Input, error) {
	if !session.HasResults() {
		return Input{}, models.ErrNoCompletedRun
	}
	return Input{
		Rows:     projection.FlatTable(session.Results),
		Meta:     session.Meta(now),
		Snapshot: snapshot,
	}, nil
}

// Artifact is one generated file.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Exporter renders an Input into an Artifact.
type Exporter interface {
	// Format is the short format name, e.g. "xlsx".
	Format() string
	Export(in Input) (*Artifact, error)
}

// Filename returns a report filename stamped with generatedAt. The random
// suffix keeps two exports made within the same second apart.
func Filename(generatedAt time.Time, ext string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%s-%s.%s", filenamePrefix, generatedAt.Format(stampLayout), suffix, ext)
}

// Result is the outcome of one exporter inside ExportAll.
type Result struct {
	Format   string
	Artifact *Artifact
	Err      error
}

// ExportAll runs every exporter concurrently over the same input. Each
// result carries its own error; one failing exporter never affects another.
func ExportAll(ctx context.Context, exporters []Exporter, in Input) []Result {
	results := make([]Result, len(exporters))
	var g errgroup.Group
	for i, e := range exporters {
		g.Go(func() error {
			results[i].Format = e.Format()
			if err := ctx.Err(); err != nil {
				results[i].Err = &models.ExportError{Format: e.Format(), Err: err}
				return nil
			}
			results[i].Artifact, results[i].Err = e.Export(in)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// ByFormat returns the exporters for the requested format names, in order.
func ByFormat(formats []string, delimiter string) ([]Exporter, error) {
	var out []Exporter
	for _, f := range formats {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case FormatWorkbook:
			out = append(out, NewWorkbook())
		case FormatPDF:
			out = append(out, NewPageDocument())
		case FormatDelimited, "txt", "tsv":
			out = append(out, NewDelimited(delimiter))
		default:
			return nil, fmt.Errorf("unknown export format %q (want %s, %s or %s)", f, FormatWorkbook, FormatPDF, FormatDelimited)
		}
	}
	return out, nil
}

func formatElapsed(elapsed *float64) string {
	if elapsed == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *elapsed)
}

func formatGenerated(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// header is the column order shared by the workbook and the delimited text.
func header() []string {
	h := []string{"Model", "Overall"}
	for _, c := range models.Criteria {
		h = append(h, c.Label())
	}
	return h
}
