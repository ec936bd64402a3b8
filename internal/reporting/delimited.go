package reporting

import (
	"strconv"
	"strings"

	"github.com/BuseDenizH/EssayEval-NLP/internal/models"
)

const (
	FormatDelimited = "csv"

	// DefaultDelimiter separates fields when none is configured.
	DefaultDelimiter = ","
)

// Delimited writes one line per row, fields joined by the delimiter.
//
// Fields are never quoted or escaped. Every field is a model id or a number,
// so this only matters for a model id containing the delimiter; such a line
// is ambiguous and is written as is.
type Delimited struct {
	delimiter string
}

// NewDelimited creates a delimited exporter. An empty delimiter means ",".
func NewDelimited(delimiter string) *Delimited {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	return &Delimited{delimiter: delimiter}
}

func (d *Delimited) Format() string { return FormatDelimited }

func (d *Delimited) Export(in Input) (*Artifact, error) {
	var b strings.Builder
	b.WriteString(strings.Join(header(), d.delimiter))
	b.WriteString("\n")
	for _, r := range in.Rows {
		fields := []string{string(r.ModelID), formatNumber(r.Overall)}
		for _, c := range models.Criteria {
			fields = append(fields, formatNumber(r.Value(c)))
		}
		b.WriteString(strings.Join(fields, d.delimiter))
		b.WriteString("\n")
	}

	ext, contentType := "csv", "text/csv; charset=utf-8"
	switch d.delimiter {
	case ",":
	case "\t":
		ext, contentType = "tsv", "text/tab-separated-values; charset=utf-8"
	default:
		ext, contentType = "txt", "text/plain; charset=utf-8"
	}
	return &Artifact{
		Filename:    Filename(in.Meta.GeneratedAt, ext),
		ContentType: contentType,
		Data:        []byte(b.String()),
	}, nil
}

// formatNumber renders v with the fewest digits that read back exactly.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
