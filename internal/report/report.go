package report

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fystack/keno-odds/internal/expectedvalue"
	"github.com/fystack/keno-odds/internal/payout"
	"github.com/fystack/keno-odds/internal/probability"
)

const (
	ProbabilityTitle   = "Keno Probability Matrix"
	ExpectedValueTitle = "Expected 'Pay Out' Values"
	ExpectedValueLabel = "Expected Value"
)

var ErrNoReport = errors.New("no report stored")

// Report is what the pipeline hands to sinks: both computed tables plus the
// payout schedule they were priced with.
type Report struct {
	ID             string      `json:"id"`
	GeneratedAt    time.Time   `json:"generated_at"`
	TotalBalls     int         `json:"total_balls"`
	BallsDrawn     int         `json:"balls_drawn"`
	Probabilities  [][]float64 `json:"probabilities"`   // [marked-1][caught]
	ExpectedValues []float64   `json:"expected_values"` // [spots-1]
	Payouts        [][]float64 `json:"payouts"`         // [spots-1][caught-1]
	PayoutName     string      `json:"payout_name,omitempty"`
}

// Sink persists or displays a report.
type Sink interface {
	Name() string
	Write(ctx context.Context, r *Report) error
}

func New(m probability.Matrix, ev expectedvalue.Vector, t payout.Table, now time.Time) *Report {
	r := &Report{
		GeneratedAt:    now.UTC(),
		TotalBalls:     probability.TotalBalls,
		BallsDrawn:     probability.BallsDrawn,
		Probabilities:  m.Rows(),
		ExpectedValues: ev.Values(),
		Payouts:        t.Rows(),
		PayoutName:     t.Name(),
	}
	r.ID = r.digest()
	return r
}

// digest covers the tables only, so identical inputs give identical IDs.
func (r *Report) digest() string {
	payload, err := json.Marshal(struct {
		P  [][]float64 `json:"p"`
		EV []float64   `json:"ev"`
		PO [][]float64 `json:"po"`
	}{r.Probabilities, r.ExpectedValues, r.Payouts})
	if err != nil {
		// float tables always marshal
		panic(err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Probability returns the stored chance of catching caught with marked spots.
func (r *Report) Probability(marked, caught int) (float64, error) {
	if marked < 1 || marked > len(r.Probabilities) {
		return 0, fmt.Errorf("spots marked %d outside 1..%d", marked, len(r.Probabilities))
	}
	row := r.Probabilities[marked-1]
	if caught < 0 || caught >= len(row) {
		return 0, fmt.Errorf("caught %d outside 0..%d", caught, len(row)-1)
	}
	return row[caught], nil
}

// ExpectedValue returns the stored EV of a $1 bet with spots marked.
func (r *Report) ExpectedValue(spots int) (float64, error) {
	if spots < 1 || spots > len(r.ExpectedValues) {
		return 0, fmt.Errorf("spots marked %d outside 1..%d", spots, len(r.ExpectedValues))
	}
	return r.ExpectedValues[spots-1], nil
}

func rowLabel(spots int) string {
	return fmt.Sprintf("%d Spot(s) Marked", spots)
}

func columnLabel(caught int) string {
	return fmt.Sprintf("%d Ball(s) Caught", caught)
}
