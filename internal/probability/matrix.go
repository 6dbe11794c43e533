package probability

import (
	"fmt"
	"sync"
)

// Matrix is the catch distribution for every spots-marked count. Row marked
// (1..MaxSpots) holds the probability of catching 0..MaxSpots balls; cells
// where caught > marked are always zero.
//
// Matrix is a value: copies are independent and nothing mutates it after
// NewMatrix returns.
type Matrix struct {
	cells [MaxSpots][Columns]float64
}

// TraceFunc receives every computed cell.
type TraceFunc func(marked, caught int, p float64)

type options struct {
	workers int
	trace   TraceFunc
}

type Option func(*options)

// WithWorkers fills rows on n goroutines. Values below 2 keep the fill sequential.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithTrace registers fn to observe each computed cell. With more than one
// worker fn is called concurrently.
func WithTrace(fn TraceFunc) Option {
	return func(o *options) { o.trace = fn }
}

// NewMatrix computes the full probability matrix. It returns only after all
// rows are filled.
func NewMatrix(opts ...Option) Matrix {
	o := options{workers: 1}
	for _, opt := range opts {
		opt(&o)
	}

	var m Matrix
	if o.workers < 2 {
		for marked := 1; marked <= MaxSpots; marked++ {
			m.fillRow(marked, o.trace)
		}
		return m
	}

	rows := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < o.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for marked := range rows {
				m.fillRow(marked, o.trace)
			}
		}()
	}
	for marked := 1; marked <= MaxSpots; marked++ {
		rows <- marked
	}
	close(rows)
	wg.Wait()

	return m
}

// fillRow writes only row marked-1, so workers never share a cell.
func (m *Matrix) fillRow(marked int, trace TraceFunc) {
	for caught := 0; caught < Columns; caught++ {
		if caught > marked {
			// impossible catch, cell stays 0
			continue
		}
		p := Probability(marked, caught)
		m.cells[marked-1][caught] = p
		if trace != nil {
			trace(marked, caught, p)
		}
	}
}

// At returns the probability of catching caught balls with marked spots.
func (m Matrix) At(marked, caught int) float64 {
	checkIndex(marked, caught)
	return m.cells[marked-1][caught]
}

// Row returns the marked+1 possible outcomes (catch 0..marked) for marked spots.
func (m Matrix) Row(marked int) []float64 {
	checkIndex(marked, 0)
	out := make([]float64, marked+1)
	copy(out, m.cells[marked-1][:marked+1])
	return out
}

// Rows returns a MaxSpots x Columns copy, zero padded.
func (m Matrix) Rows() [][]float64 {
	out := make([][]float64, MaxSpots)
	for i := range m.cells {
		out[i] = make([]float64, Columns)
		copy(out[i], m.cells[i][:])
	}
	return out
}

func checkIndex(marked, caught int) {
	if marked < 1 || marked > MaxSpots {
		panic(fmt.Sprintf("probability: spots marked %d outside 1..%d", marked, MaxSpots))
	}
	if caught < 0 || caught >= Columns {
		panic(fmt.Sprintf("probability: caught %d outside 0..%d", caught, MaxSpots))
	}
}
