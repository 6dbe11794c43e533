// Package expectedvalue prices a $1 Keno bet for 1..9 spots marked.
//
// For s spots marked:
//
//	EV(s) = sum over caught 1..9 with Payout(s, caught) > 0 of
//	        P(s, caught) * Payout(s, caught) / (s + 1)
//
// The divisor is s+1 because a row has s+1 outcomes (catch 0..s); the catch
// zero outcome pays nothing and never enters the sum. Payout columns are
// 1-based on catches while the probability matrix is indexed by the catch
// count itself, so column c of the schedule pairs with matrix catch c.
package expectedvalue

import (
	"fmt"

	"github.com/fystack/keno-odds/internal/payout"
	"github.com/fystack/keno-odds/internal/probability"
	"github.com/fystack/keno-odds/pkg/common/logger"
)

// MaxSpots is the number of spots-marked scenarios priced.
const MaxSpots = payout.MaxSpots

// Vector holds EV(s) for s in 1..MaxSpots.
type Vector struct {
	values [MaxSpots]float64
}

// Term is one payout that contributes to EV(Spots).
type Term struct {
	Spots       int
	Caught      int
	Probability float64
	Payout      float64
	// Share is Probability * Payout / (Spots + 1).
	Share float64
}

// Contributions returns the strictly positive payout terms for spots marked,
// in ascending catch order.
func Contributions(m probability.Matrix, t payout.Table, spots int) []Term {
	if spots < 1 || spots > MaxSpots {
		panic(fmt.Sprintf("expectedvalue: spots marked %d outside 1..%d", spots, MaxSpots))
	}

	var terms []Term
	for caught := 1; caught <= MaxSpots; caught++ {
		pay := t.At(spots, caught)
		if pay <= 0 {
			continue
		}
		p := m.At(spots, caught)
		terms = append(terms, Term{
			Spots:       spots,
			Caught:      caught,
			Probability: p,
			Payout:      pay,
			Share:       p * pay / float64(spots+1),
		})
	}
	return terms
}

// Compute prices every spots-marked scenario. m must be complete.
func Compute(m probability.Matrix, t payout.Table) Vector {
	var v Vector
	for spots := 1; spots <= MaxSpots; spots++ {
		for _, term := range Contributions(m, t, spots) {
			v.values[spots-1] += term.Share
			logger.Debug("Expected value term",
				"spots", term.Spots,
				"caught", term.Caught,
				"kp", term.Probability,
				"po", term.Payout,
				"ev", v.values[spots-1],
			)
		}
	}
	return v
}

// At returns EV for spots marked (1..9).
func (v Vector) At(spots int) float64 {
	if spots < 1 || spots > MaxSpots {
		panic(fmt.Sprintf("expectedvalue: spots marked %d outside 1..%d", spots, MaxSpots))
	}
	return v.values[spots-1]
}

// Values returns a copy indexed by spots-1.
func (v Vector) Values() []float64 {
	out := make([]float64, MaxSpots)
	copy(out, v.values[:])
	return out
}
