package report

import (
	"context"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// ConsoleSink prints both tables as aligned text.
type ConsoleSink struct {
	w         io.Writer
	precision int32
}

func NewConsoleSink(w io.Writer, precision int32) *ConsoleSink {
	return &ConsoleSink{w: w, precision: precision}
}

func (s *ConsoleSink) Name() string { return "console" }

func (s *ConsoleSink) Write(_ context.Context, r *Report) error {
	if _, err := fmt.Fprintf(s.w, "%s\n", ProbabilityTitle); err != nil {
		return err
	}
	header := []string{""}
	if len(r.Probabilities) > 0 {
		for caught := range r.Probabilities[0] {
			header = append(header, columnLabel(caught))
		}
	}
	prob := newTable(s.w, header)
	for i, row := range r.Probabilities {
		cells := make([]string, 0, len(row)+1)
		cells = append(cells, rowLabel(i+1))
		for _, p := range row {
			cells = append(cells, formatValue(p, s.precision))
		}
		prob.Append(cells)
	}
	prob.Render()

	fmt.Fprintf(s.w, "\n%s\n", ExpectedValueTitle)
	ev := newTable(s.w, []string{"", ExpectedValueLabel, "$1 Bet Returns"})
	for i, v := range r.ExpectedValues {
		ev.Append([]string{rowLabel(i + 1), formatValue(v, s.precision), formatDollars(v)})
	}
	ev.Render()

	footer := fmt.Sprintf("\nreport %s generated %s", r.ID, r.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"))
	if r.PayoutName != "" {
		footer += " payout " + r.PayoutName
	}
	_, err := fmt.Fprintln(s.w, footer)
	return err
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetAlignment(tablewriter.ALIGN_RIGHT)
	t.SetHeaderAlignment(tablewriter.ALIGN_RIGHT)
	t.SetBorder(false)
	return t
}
