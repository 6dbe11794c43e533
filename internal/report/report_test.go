package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fystack/keno-odds/internal/expectedvalue"
	"github.com/fystack/keno-odds/internal/payout"
	"github.com/fystack/keno-odds/internal/probability"
	"github.com/fystack/keno-odds/pkg/common/constant"
	"github.com/fystack/keno-odds/pkg/infra"
	"github.com/fystack/keno-odds/pkg/kvstore"
	"github.com/fystack/keno-odds/pkg/retry"
)

var fixedTime = time.Date(2014, time.October, 1, 12, 0, 0, 0, time.UTC)

func newTestReport(t *testing.T) *Report {
	t.Helper()
	m := probability.NewMatrix()
	tbl := payout.Default()
	return New(m, expectedvalue.Compute(m, tbl), tbl, fixedTime)
}

func TestNew(t *testing.T) {
	r := newTestReport(t)

	assert.Equal(t, 80, r.TotalBalls)
	assert.Equal(t, 20, r.BallsDrawn)
	assert.Len(t, r.Probabilities, probability.MaxSpots)
	assert.Len(t, r.Probabilities[0], probability.Columns)
	assert.Len(t, r.ExpectedValues, expectedvalue.MaxSpots)
	assert.Len(t, r.Payouts, payout.MaxSpots)
	assert.Len(t, r.ID, 64)

	p, err := r.Probability(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.25, p)

	ev, err := r.ExpectedValue(1)
	require.NoError(t, err)
	assert.Equal(t, 0.375, ev)

	_, err = r.Probability(21, 0)
	assert.Error(t, err)
	_, err = r.Probability(1, 21)
	assert.Error(t, err)
	_, err = r.ExpectedValue(10)
	assert.Error(t, err)
}

func TestNew_StableID(t *testing.T) {
	a := newTestReport(t)
	m := probability.NewMatrix(probability.WithWorkers(4))
	b := New(m, expectedvalue.Compute(m, payout.Default()), payout.Default(), fixedTime.Add(time.Hour))
	assert.Equal(t, a.ID, b.ID)

	other, err := payout.FromRows([][]float64{{2}})
	require.NoError(t, err)
	c := New(m, expectedvalue.Compute(m, other), other, fixedTime)
	assert.NotEqual(t, a.ID, c.ID)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "0.25", formatValue(0.25, 10))
	assert.Equal(t, "0.0326014806", formatValue(0.03260148059870619, 10))
	assert.Equal(t, "0", formatValue(2.8286013464534583e-19, 10))
	assert.Equal(t, "0.03", formatValue(0.03260148059870619, 2))
	assert.Equal(t, "$0.38", formatDollars(0.375))
}

func TestConsoleSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsoleSink(&buf, 10)
	require.NoError(t, s.Write(context.Background(), newTestReport(t)))

	out := buf.String()
	assert.Contains(t, out, ProbabilityTitle)
	assert.Contains(t, out, ExpectedValueTitle)
	assert.Contains(t, out, "1 Spot(s) Marked")
	assert.Contains(t, out, "20 Spot(s) Marked")
	assert.Contains(t, out, "0 Ball(s) Caught")
	assert.Contains(t, out, "20 Ball(s) Caught")
	assert.Contains(t, out, "0.0326014806")
	assert.Contains(t, out, "$0.38")
	assert.Equal(t, "console", s.Name())
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Data")
	r := newTestReport(t)
	require.NoError(t, NewCSVSink(dir, 10).Write(context.Background(), r))

	prob := readCSV(t, filepath.Join(dir, ProbabilityFile))
	require.Len(t, prob, probability.MaxSpots+1)
	require.Len(t, prob[0], probability.Columns+1)
	assert.Equal(t, "5 Ball(s) Caught", prob[0][6])
	assert.Equal(t, "9 Spot(s) Marked", prob[9][0])
	assert.Equal(t, "0.0326014806", prob[9][6])
	assert.Equal(t, "0", prob[1][3])

	ev := readCSV(t, filepath.Join(dir, ExpectedValueFile))
	require.Len(t, ev, expectedvalue.MaxSpots+1)
	assert.Equal(t, []string{"", ExpectedValueLabel}, ev[0])
	assert.Equal(t, []string{"1 Spot(s) Marked", "0.375"}, ev[1])
}

func rawCell(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

func rawFloat(t *testing.T, f *excelize.File, sheet, cell string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(rawCell(t, f, sheet, cell), 64)
	require.NoError(t, err)
	return v
}

func TestXLSXSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Data")
	r := newTestReport(t)
	s := NewXLSXSink(dir)
	assert.Equal(t, "xlsx", s.Name())
	require.NoError(t, s.Write(context.Background(), r))
	assert.Equal(t, filepath.Join(dir, XLSXFile), s.Path())

	f, err := excelize.OpenFile(s.Path())
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ProbabilityTitle, ExpectedValueTitle}, f.GetSheetList())

	assert.Equal(t, "0 Ball(s) Caught", rawCell(t, f, ProbabilityTitle, "B1"))
	assert.Equal(t, "5 Ball(s) Caught", rawCell(t, f, ProbabilityTitle, "G1"))
	assert.Equal(t, "20 Ball(s) Caught", rawCell(t, f, ProbabilityTitle, "V1"))
	assert.Equal(t, "1 Spot(s) Marked", rawCell(t, f, ProbabilityTitle, "A2"))
	assert.Equal(t, "9 Spot(s) Marked", rawCell(t, f, ProbabilityTitle, "A10"))

	// cells hold the unrounded values
	for i, row := range r.Probabilities {
		for caught, p := range row {
			cell, err := excelize.CoordinatesToCellName(caught+2, i+2)
			require.NoError(t, err)
			assert.Equal(t, p, rawFloat(t, f, ProbabilityTitle, cell), cell)
		}
	}

	styleID, err := f.GetCellStyle(ProbabilityTitle, "G10")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.CustomNumFmt)
	assert.Equal(t, XLSXNumberFormat, *style.CustomNumFmt)

	assert.Equal(t, ExpectedValueLabel, rawCell(t, f, ExpectedValueTitle, "B1"))
	assert.Equal(t, "1 Spot(s) Marked", rawCell(t, f, ExpectedValueTitle, "A2"))
	for i, ev := range r.ExpectedValues {
		cell, err := excelize.CoordinatesToCellName(2, i+2)
		require.NoError(t, err)
		assert.Equal(t, ev, rawFloat(t, f, ExpectedValueTitle, cell), cell)
	}
}

func TestKVSink_RoundTrip(t *testing.T) {
	store, err := kvstore.NewInMemoryBadgerStore("keno", infra.JSON)
	require.NoError(t, err)
	defer store.Close()

	_, err = LoadLatest(store)
	assert.ErrorIs(t, err, ErrNoReport)

	r := newTestReport(t)
	s := NewKVSink(store)
	assert.Equal(t, "kvstore:badger", s.Name())
	require.NoError(t, s.Write(context.Background(), r))

	latest, err := LoadLatest(store)
	require.NoError(t, err)
	assert.Equal(t, r, latest)

	byID, err := Load(store, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r, byID)

	_, err = Load(store, "missing")
	assert.ErrorIs(t, err, ErrNoReport)

	ids, err := IDs(store)
	require.NoError(t, err)
	assert.Equal(t, []string{r.ID}, ids)

	pointer, err := store.Get(constant.LatestReportKey)
	require.NoError(t, err)
	assert.Equal(t, r.ID, pointer)
}

func TestKVSink_Delete(t *testing.T) {
	store, err := kvstore.NewInMemoryBadgerStore("keno", infra.JSON)
	require.NoError(t, err)
	defer store.Close()

	m := probability.NewMatrix()
	first := newTestReport(t)
	other, err := payout.FromRows([][]float64{{2}})
	require.NoError(t, err)
	second := New(m, expectedvalue.Compute(m, other), other, fixedTime)

	s := NewKVSink(store)
	require.NoError(t, s.Write(context.Background(), first))
	require.NoError(t, s.Write(context.Background(), second))

	ids, err := IDs(store)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{first.ID, second.ID}, ids)

	// older report: latest still points at second
	require.NoError(t, Delete(store, first.ID))
	latest, err := LoadLatest(store)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	require.NoError(t, Delete(store, second.ID))
	_, err = LoadLatest(store)
	assert.ErrorIs(t, err, ErrNoReport)

	ids, err = IDs(store)
	require.NoError(t, err)
	assert.Empty(t, ids)

	assert.ErrorIs(t, Delete(store, "missing"), ErrNoReport)
}

type fakeQueue struct {
	mu       sync.Mutex
	failures int
	calls    int
	topic    string
	data     []byte
	opts     *infra.EnqueueOptions
}

func (q *fakeQueue) Enqueue(_ context.Context, topic string, message []byte, options *infra.EnqueueOptions) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.calls++
	if q.calls <= q.failures {
		return errors.New("nats: no responders available for request")
	}
	q.topic = topic
	q.data = message
	q.opts = options
	return nil
}

func (q *fakeQueue) Close() {}

func fastRetry() retry.ExponentialConfig {
	return retry.ExponentialConfig{
		InitialInterval: time.Millisecond,
		MaxElapsedTime:  time.Second,
		MaxAttempts:     3,
	}
}

func TestQueueSink(t *testing.T) {
	q := &fakeQueue{failures: 2}
	s := NewQueueSink(q, "keno.report").WithRetry(fastRetry())
	r := newTestReport(t)

	require.NoError(t, s.Write(context.Background(), r))
	assert.Equal(t, 3, q.calls)
	assert.Equal(t, "keno.report", q.topic)
	require.NotNil(t, q.opts)
	assert.Equal(t, r.ID, q.opts.IdempotententKey)

	var got Report
	require.NoError(t, json.Unmarshal(q.data, &got))
	assert.Equal(t, *r, got)
}

func TestQueueSink_GivesUp(t *testing.T) {
	q := &fakeQueue{failures: 100}
	s := NewQueueSink(q, "keno.report").WithRetry(fastRetry())

	assert.Error(t, s.Write(context.Background(), newTestReport(t)))
	assert.Equal(t, 4, q.calls)
}

func TestQueueSink_EncodeErrorNotRetried(t *testing.T) {
	q := &fakeQueue{}
	r := newTestReport(t)
	r.ExpectedValues[0] = math.NaN()

	err := NewQueueSink(q, "keno.report").WithRetry(fastRetry()).Write(context.Background(), r)
	assert.ErrorContains(t, err, "encode report")
	assert.Equal(t, 0, q.calls)
}

type funcSink struct {
	name  string
	err   error
	calls int
}

func (s *funcSink) Name() string { return s.name }

func (s *funcSink) Write(context.Context, *Report) error {
	s.calls++
	return s.err
}

func TestMultiSink(t *testing.T) {
	errDisk := errors.New("disk full")
	a := &funcSink{name: "a"}
	b := &funcSink{name: "b", err: errDisk}
	c := &funcSink{name: "c"}
	m := NewMultiSink(a, b, c)

	assert.Equal(t, "multi[a,b,c]", m.Name())

	err := m.Write(context.Background(), newTestReport(t))
	assert.ErrorIs(t, err, errDisk)
	assert.Contains(t, err.Error(), "b: disk full")
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, c.calls, "a failing sink does not stop the others")

	assert.NoError(t, NewMultiSink(a, c).Write(context.Background(), newTestReport(t)))
}

func TestMultiSink_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := &funcSink{name: "a"}
	err := NewMultiSink(a).Write(ctx, newTestReport(t))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, a.calls)
}
