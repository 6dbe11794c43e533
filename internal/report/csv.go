package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

const (
	ProbabilityFile   = "keno_probability_matrix.csv"
	ExpectedValueFile = "keno_expected_values.csv"
)

// CSVSink writes one CSV file per table into dir.
type CSVSink struct {
	dir       string
	precision int32
}

func NewCSVSink(dir string, precision int32) *CSVSink {
	return &CSVSink{dir: dir, precision: precision}
}

func (s *CSVSink) Name() string { return "csv" }

func (s *CSVSink) Write(_ context.Context, r *Report) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create report directory %s: %w", s.dir, err)
	}

	probRecords := make([][]string, 0, len(r.Probabilities)+1)
	header := []string{""}
	if len(r.Probabilities) > 0 {
		for caught := range r.Probabilities[0] {
			header = append(header, columnLabel(caught))
		}
	}
	probRecords = append(probRecords, header)
	for i, row := range r.Probabilities {
		rec := []string{rowLabel(i + 1)}
		for _, p := range row {
			rec = append(rec, formatValue(p, s.precision))
		}
		probRecords = append(probRecords, rec)
	}
	if err := writeCSV(filepath.Join(s.dir, ProbabilityFile), probRecords); err != nil {
		return err
	}

	evRecords := [][]string{{"", ExpectedValueLabel}}
	for i, ev := range r.ExpectedValues {
		evRecords = append(evRecords, []string{rowLabel(i + 1), formatValue(ev, s.precision)})
	}
	return writeCSV(filepath.Join(s.dir, ExpectedValueFile), evRecords)
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
