package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

const (
	XLSXFile = "Keno.xlsx"
	// XLSXNumberFormat shows ten decimals; cells keep the full float64.
	XLSXNumberFormat = "0.0000000000"
)

// XLSXSink writes both tables as sheets of one workbook in dir.
type XLSXSink struct {
	dir string
}

func NewXLSXSink(dir string) *XLSXSink {
	return &XLSXSink{dir: dir}
}

func (s *XLSXSink) Name() string { return "xlsx" }

func (s *XLSXSink) Path() string { return filepath.Join(s.dir, XLSXFile) }

func (s *XLSXSink) Write(_ context.Context, r *Report) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create report directory %s: %w", s.dir, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	numFmt := XLSXNumberFormat
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return fmt.Errorf("create number style: %w", err)
	}

	if err := f.SetSheetName(f.GetSheetName(0), ProbabilityTitle); err != nil {
		return err
	}
	if err := writeProbabilitySheet(f, r, style); err != nil {
		return fmt.Errorf("write sheet %q: %w", ProbabilityTitle, err)
	}

	if _, err := f.NewSheet(ExpectedValueTitle); err != nil {
		return err
	}
	if err := writeExpectedValueSheet(f, r, style); err != nil {
		return fmt.Errorf("write sheet %q: %w", ExpectedValueTitle, err)
	}

	if err := f.SaveAs(s.Path()); err != nil {
		return fmt.Errorf("save %s: %w", s.Path(), err)
	}
	return nil
}

// setCell writes v at the 1-based (col, row) of sheet.
func setCell(f *excelize.File, sheet string, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, v)
}

func styleRange(f *excelize.File, sheet string, fromCol, fromRow, toCol, toRow, style int) error {
	from, err := excelize.CoordinatesToCellName(fromCol, fromRow)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(toCol, toRow)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, from, to, style)
}

func writeProbabilitySheet(f *excelize.File, r *Report, style int) error {
	sheet := ProbabilityTitle
	if len(r.Probabilities) == 0 {
		return nil
	}
	columns := len(r.Probabilities[0])
	for caught := 0; caught < columns; caught++ {
		if err := setCell(f, sheet, caught+2, 1, columnLabel(caught)); err != nil {
			return err
		}
	}
	for i, row := range r.Probabilities {
		if err := setCell(f, sheet, 1, i+2, rowLabel(i+1)); err != nil {
			return err
		}
		for caught, p := range row {
			if err := setCell(f, sheet, caught+2, i+2, p); err != nil {
				return err
			}
		}
	}
	return styleRange(f, sheet, 2, 2, columns+1, len(r.Probabilities)+1, style)
}

func writeExpectedValueSheet(f *excelize.File, r *Report, style int) error {
	sheet := ExpectedValueTitle
	if err := setCell(f, sheet, 2, 1, ExpectedValueLabel); err != nil {
		return err
	}
	for i, ev := range r.ExpectedValues {
		if err := setCell(f, sheet, 1, i+2, rowLabel(i+1)); err != nil {
			return err
		}
		if err := setCell(f, sheet, 2, i+2, ev); err != nil {
			return err
		}
	}
	if len(r.ExpectedValues) == 0 {
		return nil
	}
	return styleRange(f, sheet, 2, 2, 2, len(r.ExpectedValues)+1, style)
}
