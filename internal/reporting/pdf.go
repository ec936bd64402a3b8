package reporting

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg" // snapshot decoding
	"image/png"
	"math"

	"github.com/BuseDenizH/EssayEval-NLP/internal/models"
	"github.com/go-pdf/fpdf"
)

const FormatPDF = "pdf"

// Page geometry in millimetres (A4 portrait).
const (
	pageMargin   = 15.0
	footerHeight = 20.0
	// minSliceMM is the smallest image slice placed at the bottom of a page;
	// below it the image starts on a fresh page instead.
	minSliceMM = 25.0
)

// PageDocument writes a PDF with a title block, session metadata and the
// results snapshot, followed by the score table.
type PageDocument struct {
	// uncompressed leaves page streams readable as plain text.
	uncompressed bool
}

// NewPageDocument creates a page document exporter.
func NewPageDocument() *PageDocument { return &PageDocument{} }

func (p *PageDocument) Format() string { return FormatPDF }

func (p *PageDocument) Export(in Input) (*Artifact, error) {
	if len(in.Snapshot) == 0 {
		return nil, &models.ExportError{Format: FormatPDF, Err: models.ErrMissingSnapshot}
	}
	img, format, err := image.Decode(bytes.NewReader(in.Snapshot))
	if err != nil {
		return nil, &models.ExportError{
			Format: FormatPDF,
			Err:    fmt.Errorf("%w: %v", models.ErrMissingSnapshot, err),
		}
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, &models.ExportError{Format: FormatPDF, Err: fmt.Errorf("%w: empty image", models.ErrMissingSnapshot)}
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(!p.uncompressed)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, footerHeight)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-pageMargin)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 10, fmt.Sprintf("Generated by EssayEval - Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	writeTitleBlock(pdf, tr, in.Meta)

	if err := placeSnapshot(pdf, img, format, in.Snapshot); err != nil {
		return nil, &models.ExportError{Format: FormatPDF, Err: err}
	}
	writeScoreTable(pdf, tr, in.Rows)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &models.ExportError{Format: FormatPDF, Err: err}
	}
	return &Artifact{
		Filename:    Filename(in.Meta.GeneratedAt, FormatPDF),
		ContentType: "application/pdf",
		Data:        buf.Bytes(),
	}, nil
}

func writeTitleBlock(pdf *fpdf.Fpdf, tr func(string) string, meta models.SessionMeta) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(17, 24, 39)
	pdf.CellFormat(0, 10, reportTitle, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(75, 85, 99)
	pdf.CellFormat(0, 6, "Generated: "+formatGenerated(meta.GeneratedAt), "", 1, "L", false, 0, "")
	if meta.Topic != "" {
		pdf.MultiCell(0, 6, tr("Topic: "+meta.Topic), "", "L", false)
	}
	pdf.CellFormat(0, 6, "Elapsed (s): "+formatElapsed(meta.ElapsedSeconds), "", 1, "L", false, 0, "")
	pdf.Ln(4)
}

// placeSnapshot draws the image at content width, continuing it on new pages
// when it is taller than the space left.
func placeSnapshot(pdf *fpdf.Fpdf, img image.Image, format string, raw []byte) error {
	pageW, pageH := pdf.GetPageSize()
	contentW := pageW - 2*pageMargin
	bottom := pageH - footerHeight
	bounds := img.Bounds()
	mmPerPx := contentW / float64(bounds.Dx())

	y := pdf.GetY()
	if bottom-y < minSliceMM {
		pdf.AddPage()
		y = pdf.GetY()
	}

	heights := sliceHeights(bounds.Dy(), mmPerPx, bottom-y, bottom-pageMargin)
	if len(heights) == 1 {
		imageType := "PNG"
		if format == "jpeg" {
			imageType = "JPG"
		}
		placeImage(pdf, "snapshot", imageType, raw, y, contentW, float64(bounds.Dy())*mmPerPx)
		return pdf.Error()
	}

	top := bounds.Min.Y
	for i, h := range heights {
		if i > 0 {
			pdf.AddPage()
			y = pdf.GetY()
		}
		part, err := encodeSlice(img, image.Rect(bounds.Min.X, top, bounds.Max.X, top+h))
		if err != nil {
			return fmt.Errorf("slicing snapshot: %w", err)
		}
		placeImage(pdf, fmt.Sprintf("snapshot-%d", i), "PNG", part, y, contentW, float64(h)*mmPerPx)
		top += h
	}
	return pdf.Error()
}

func placeImage(pdf *fpdf.Fpdf, name, imageType string, data []byte, y, w, h float64) {
	opts := fpdf.ImageOptions{ImageType: imageType}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	pdf.ImageOptions(name, pageMargin, y, w, h, false, opts, 0, "")
	pdf.SetY(y + h + 4)
}

// sliceHeights splits an image of totalPx rows into per-page slices. The
// first slice fits firstMM, every following one fullMM.
func sliceHeights(totalPx int, mmPerPx, firstMM, fullMM float64) []int {
	capacity := func(mm float64) int {
		return max(1, int(math.Floor(mm/mmPerPx)))
	}
	var out []int
	remaining := totalPx
	room := capacity(firstMM)
	for remaining > 0 {
		h := min(room, remaining)
		out = append(out, h)
		remaining -= h
		room = capacity(fullMM)
	}
	return out
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

func encodeSlice(img image.Image, r image.Rectangle) ([]byte, error) {
	var part image.Image
	if si, ok := img.(subImager); ok {
		part = si.SubImage(r)
	} else {
		rgba := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, r.Min, draw.Src)
		part = rgba
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, part); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeScoreTable(pdf *fpdf.Fpdf, tr func(string) string, rows []models.ComparisonRow) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(17, 24, 39)
	pdf.CellFormat(0, 8, "Scores", "", 1, "L", false, 0, "")

	if len(rows) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 6, "No model produced an assessment.", "", 1, "L", false, 0, "")
		return
	}

	widths := []float64{40, 28, 28, 28, 28, 28}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(243, 244, 246)
	for i, h := range header() {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, r := range rows {
		pdf.CellFormat(widths[0], 6, tr(string(r.ModelID)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, formatNumber(r.Overall), "1", 0, "C", false, 0, "")
		for i, c := range models.Criteria {
			pdf.CellFormat(widths[i+2], 6, formatNumber(r.Value(c)), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

// IsMissingSnapshot reports whether err is a page export rejected for lack
// of a usable snapshot.
func IsMissingSnapshot(err error) bool {
	return errors.Is(err, models.ErrMissingSnapshot)
}
