package expectedvalue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fystack/keno-odds/internal/payout"
	"github.com/fystack/keno-odds/internal/probability"
)

func TestCompute_OneSpot(t *testing.T) {
	m := probability.NewMatrix()
	v := Compute(m, payout.Default())

	assert.Equal(t, m.At(1, 1)*3.0/2, v.At(1))
	assert.Equal(t, 0.375, v.At(1))
}

func TestCompute_Reference(t *testing.T) {
	want := []float64{
		0.375,
		0.24050632911392408,
		0.18037974683544303,
		0.14199724326306606,
		0.11811764185181906,
		0.10140925981793975,
		0.06880758225694934,
		0.07836927302854127,
		0.2299858897119171,
	}

	v := Compute(probability.NewMatrix(), payout.Default())
	got := v.Values()
	require.Len(t, got, MaxSpots)
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-12, "spots %d", i+1)
	}
}

func TestCompute_DivisorIsSpotsPlusOne(t *testing.T) {
	m := probability.NewMatrix()
	tbl, err := payout.FromRows([][]float64{nil, {0, 1}})
	require.NoError(t, err)

	v := Compute(m, tbl)
	assert.Equal(t, m.At(2, 2)/3, v.At(2))
	assert.Equal(t, 0.0, v.At(1))
}

func TestCompute_NineSpots(t *testing.T) {
	m := probability.NewMatrix()
	terms := Contributions(m, payout.Default(), 9)
	require.Len(t, terms, 5)

	five := terms[0]
	assert.Equal(t, 5, five.Caught)
	assert.Equal(t, 4.0, five.Payout)
	assert.Equal(t, m.At(9, 5), five.Probability)
	assert.Equal(t, m.At(9, 5)*4.0/10, five.Share)

	six := terms[1]
	assert.Equal(t, 6, six.Caught)
	assert.Equal(t, 43.0, six.Payout)
	assert.Equal(t, m.At(9, 6)*43.0/10, six.Share)
}

func TestContributions_SkipsZeroPayouts(t *testing.T) {
	m := probability.NewMatrix()
	tbl := payout.Default()

	terms := Contributions(m, tbl, 6)
	require.Len(t, terms, 4)
	caught := make([]int, 0, len(terms))
	for _, term := range terms {
		assert.Greater(t, term.Payout, 0.0)
		caught = append(caught, term.Caught)
	}
	assert.Equal(t, []int{3, 4, 5, 6}, caught)

	empty, err := payout.FromRows(nil)
	require.NoError(t, err)
	assert.Empty(t, Contributions(m, empty, 6))
	assert.Equal(t, make([]float64, MaxSpots), Compute(m, empty).Values())
}

func TestCompute_Idempotent(t *testing.T) {
	a := Compute(probability.NewMatrix(), payout.Default())
	b := Compute(probability.NewMatrix(probability.WithWorkers(4)), payout.Default())
	assert.Equal(t, a, b)
}

func TestVector_IndexChecks(t *testing.T) {
	v := Compute(probability.NewMatrix(), payout.Default())
	assert.Panics(t, func() { v.At(0) })
	assert.Panics(t, func() { v.At(10) })
	assert.Panics(t, func() { Contributions(probability.NewMatrix(), payout.Default(), 10) })
}
