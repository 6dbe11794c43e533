package payout

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MaxSpots is the largest spots-marked count the payout schedule covers.
const MaxSpots = 9

var (
	ErrTooManyRows    = errors.New("payout table has more than 9 rows")
	ErrTooManyColumns = errors.New("payout row has more than 9 catches")
	ErrNegativePayout = errors.New("payout must not be negative")
	ErrSpotsRange     = errors.New("spots marked must be in 1..9")
)

// Table holds the dollar payout of a $1 bet for catching 1..9 balls with
// 1..9 spots marked.
type Table struct {
	name  string
	cells [MaxSpots][MaxSpots]float64
}

// DefaultName labels the reference schedule.
const DefaultName = "reference"

// reference schedule
var defaultRows = [MaxSpots][MaxSpots]float64{
	// catch 1   2     3     4      5      6       7       8        9
	{3.0, 0, 0, 0, 0, 0, 0, 0, 0},                  // 1 spot
	{0, 12.0, 0, 0, 0, 0, 0, 0, 0},                 // 2 spots
	{0, 1.0, 42.0, 0, 0, 0, 0, 0, 0},               // 3 spots
	{0, 1.0, 3.0, 120.0, 0, 0, 0, 0, 0},            // 4 spots
	{0, 0, 1.0, 9.0, 800.0, 0, 0, 0, 0},            // 5 spots
	{0, 0, 1.0, 4.0, 88.0, 1500.0, 0, 0, 0},        // 6 spots
	{0, 0, 0, 2.0, 20.0, 350.0, 700.0, 0, 0},       // 7 spots
	{0, 0, 0, 0, 9.0, 90.0, 1500.0, 20000.0, 0},    // 8 spots
	{0, 0, 0, 0, 4.0, 43.0, 3000.0, 4000.0, 25000}, // 9 spots
}

// Default returns the reference payout schedule.
func Default() Table {
	return Table{name: DefaultName, cells: defaultRows}
}

// FromRows builds a table from up to 9 rows. Row i is spots marked i+1,
// entry j is the payout for catching j+1. Missing entries are zero.
func FromRows(rows [][]float64) (Table, error) {
	var t Table
	if len(rows) > MaxSpots {
		return t, ErrTooManyRows
	}
	for i, row := range rows {
		if err := t.setRow(i+1, row); err != nil {
			return Table{}, err
		}
	}
	return t, nil
}

func (t *Table) setRow(spots int, row []float64) error {
	if spots < 1 || spots > MaxSpots {
		return fmt.Errorf("%w: got %d", ErrSpotsRange, spots)
	}
	if len(row) > MaxSpots {
		return fmt.Errorf("spots %d: %w", spots, ErrTooManyColumns)
	}
	for j, v := range row {
		if v < 0 {
			return fmt.Errorf("spots %d catch %d: %w", spots, j+1, ErrNegativePayout)
		}
		t.cells[spots-1][j] = v
	}
	return nil
}

// Name is the schedule's label from its YAML file, or DefaultName.
func (t Table) Name() string { return t.name }

// At returns the payout for caught balls (1..9) with spots marked (1..9).
func (t Table) At(spots, caught int) float64 {
	if spots < 1 || spots > MaxSpots || caught < 1 || caught > MaxSpots {
		panic(fmt.Sprintf("payout: index (%d, %d) outside 1..%d", spots, caught, MaxSpots))
	}
	return t.cells[spots-1][caught-1]
}

// Rows returns a 9x9 copy of the table.
func (t Table) Rows() [][]float64 {
	out := make([][]float64, MaxSpots)
	for i := range t.cells {
		out[i] = make([]float64, MaxSpots)
		copy(out[i], t.cells[i][:])
	}
	return out
}

// File is the YAML layout of a payout schedule:
//
//	name: reference
//	rows:
//	  1: [3]
//	  2: [0, 12]
//
// Keys are spots marked, values are payouts for catch 1..n.
type File struct {
	Name string            `yaml:"name"`
	Rows map[int][]float64 `yaml:"rows"`
}

// Parse decodes a YAML payout schedule.
func Parse(data []byte) (Table, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Table{}, err
	}

	t := Table{name: f.Name}
	for spots, row := range f.Rows {
		if err := t.setRow(spots, row); err != nil {
			return Table{}, err
		}
	}
	return t, nil
}

// Load reads a YAML payout schedule from path.
func Load(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("load payout table %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return Table{}, fmt.Errorf("load payout table %s: %w", path, err)
	}
	return t, nil
}
