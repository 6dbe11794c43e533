package probability

import (
	"fmt"

	"github.com/fystack/keno-odds/internal/combinatorics"
)

const (
	// TotalBalls is the number of balls in the machine (1..80).
	TotalBalls = 80
	// BallsDrawn is the number of balls the casino draws per game.
	BallsDrawn = 20
	// MaxSpots is the largest number of spots a player may mark.
	MaxSpots = 20
	// Columns is the number of catch outcomes tracked per row (0..MaxSpots).
	Columns = MaxSpots + 1
)

// Probability returns the chance of catching exactly caught balls out of
// numMarked spots marked:
//
//	C(numMarked, caught) * P1 * P2 / P3
//	P1 = 20 * 19 * ...  (caught terms)
//	P2 = 60 * 59 * ...  (numMarked - caught terms)
//	P3 = 80 * 79 * ...  (numMarked terms)
//
// A catch larger than the marked count is impossible and returns 0 without
// evaluating the formula.
func Probability(numMarked, caught int) float64 {
	if numMarked < 1 || numMarked > MaxSpots {
		panic(fmt.Sprintf("probability: spots marked %d outside 1..%d", numMarked, MaxSpots))
	}
	if caught < 0 || caught > numMarked {
		return 0.0
	}

	combos := combinatorics.Combinations(uint(numMarked), uint(caught))
	p1 := combinatorics.PartialFactorial(BallsDrawn, uint(caught))
	p2 := combinatorics.PartialFactorial(TotalBalls-BallsDrawn, uint(numMarked-caught))
	p3 := combinatorics.PartialFactorial(TotalBalls, uint(numMarked))

	return float64(combos) * p1 * p2 / p3
}
