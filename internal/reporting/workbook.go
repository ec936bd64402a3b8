package reporting

import (
	"fmt"
	"math"

	"github.com/BuseDenizH/EssayEval-NLP/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	FormatWorkbook = "xlsx"

	SheetResults = "Results"
	SheetSpecs   = "Model Specs"

	// headerRow is the 1-based row of the column header on the results sheet;
	// data starts right below it.
	headerRow = 6
)

// Workbook writes an xlsx file with a results sheet and a model reference sheet.
type Workbook struct{}

// NewWorkbook creates a workbook exporter.
func NewWorkbook() *Workbook { return &Workbook{} }

func (w *Workbook) Format() string { return FormatWorkbook }

func (w *Workbook) Export(in Input) (*Artifact, error) {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if err := writeResultsSheet(f, in); err != nil {
		return nil, &models.ExportError{Format: FormatWorkbook, Err: err}
	}
	if err := writeSpecsSheet(f); err != nil {
		return nil, &models.ExportError{Format: FormatWorkbook, Err: err}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, &models.ExportError{Format: FormatWorkbook, Err: err}
	}
	return &Artifact{
		Filename:    Filename(in.Meta.GeneratedAt, FormatWorkbook),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        buf.Bytes(),
	}, nil
}

func writeResultsSheet(f *excelize.File, in Input) error {
	if err := f.SetSheetName(f.GetSheetName(0), SheetResults); err != nil {
		return err
	}

	var elapsed any = "n/a"
	if in.Meta.ElapsedSeconds != nil {
		elapsed = math.Round(*in.Meta.ElapsedSeconds*100) / 100
	}
	meta := [][]any{
		{reportTitle},
		{"Generated", formatGenerated(in.Meta.GeneratedAt)},
		{"Topic", in.Meta.Topic},
		{"Elapsed (s)", elapsed},
	}
	for i, row := range meta {
		if err := setRow(f, SheetResults, i+1, row); err != nil {
			return err
		}
	}

	cols := header()
	headerCells := make([]any, len(cols))
	for i, h := range cols {
		headerCells[i] = h
	}
	if err := setRow(f, SheetResults, headerRow, headerCells); err != nil {
		return err
	}

	for i, r := range in.Rows {
		cells := []any{string(r.ModelID), r.Overall}
		for _, c := range models.Criteria {
			cells = append(cells, r.Value(c))
		}
		if err := setRow(f, SheetResults, headerRow+1+i, cells); err != nil {
			return err
		}
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetResults, "A1", "A1", titleStyle); err != nil {
		return err
	}
	if err := boldRange(f, SheetResults, headerRow, len(cols)); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetResults, "A", "A", 18); err != nil {
		return err
	}
	return f.SetColWidth(SheetResults, "B", "F", 14)
}

func writeSpecsSheet(f *excelize.File) error {
	if _, err := f.NewSheet(SheetSpecs); err != nil {
		return err
	}

	cols := []any{"Model", "Name", "Architecture", "Max Input Tokens", "Description"}
	for _, m := range models.MetricNames {
		cols = append(cols, m)
	}
	if err := setRow(f, SheetSpecs, 1, cols); err != nil {
		return err
	}

	for i, spec := range models.Catalog() {
		cells := []any{string(spec.ID), spec.DisplayName, spec.Architecture, spec.MaxInputTokens, spec.Description}
		for _, m := range models.MetricNames {
			if v, ok := spec.Metrics[m]; ok {
				cells = append(cells, v)
			} else {
				cells = append(cells, "")
			}
		}
		if err := setRow(f, SheetSpecs, i+2, cells); err != nil {
			return err
		}
	}

	if err := boldRange(f, SheetSpecs, 1, len(cols)); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetSpecs, "A", "D", 18); err != nil {
		return err
	}
	return f.SetColWidth(SheetSpecs, "E", "E", 60)
}

func setRow(f *excelize.File, sheet string, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}

func boldRange(f *excelize.File, sheet string, row, cols int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(cols, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}
