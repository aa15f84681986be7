package accumulators

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"

	"github.com/go-sif/skyshade"
)

// Range is an inclusive interval of values along one axis
type Range struct {
	Min float64
	Max float64
}

// Span returns the width of this Range
func (r Range) Span() float64 {
	return r.Max - r.Min
}

// IsValid returns true iff this Range is finite and non-inverted
func (r Range) IsValid() bool {
	return !math.IsNaN(r.Min) && !math.IsNaN(r.Max) && !math.IsInf(r.Min, 0) && !math.IsInf(r.Max, 0) && r.Min <= r.Max
}

// Ranger returns a new Extent Accumulator over the given columns
func Ranger(colNames ...string) skyshade.AccumulatorFactory {
	return func() skyshade.Accumulator {
		e := &Extent{Cols: colNames, Ranges: make([]Range, len(colNames)), Seen: make([]uint64, len(colNames))}
		for i := range e.Ranges {
			e.Ranges[i] = Range{Min: math.Inf(1), Max: math.Inf(-1)}
		}
		return e
	}
}

// Extent tracks the minimum and maximum of the non-nil, non-NaN values of numeric columns
type Extent struct {
	Cols   []string
	Ranges []Range
	Seen   []uint64 // the number of values which contributed to each Range
}

// Name returns the registered name of this Accumulator
func (a *Extent) Name() string {
	return "extent"
}

// Get returns the Range of a column. ok is false when no values were observed.
func (a *Extent) Get(colName string) (r Range, ok bool) {
	for i, c := range a.Cols {
		if c == colName {
			return a.Ranges[i], a.Seen[i] > 0
		}
	}
	return Range{}, false
}

// Accumulate adds a row to this Accumulator
func (a *Extent) Accumulate(row skyshade.Row) error {
	for i, col := range a.Cols {
		v, ok, err := numericValue(row, col)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if v < a.Ranges[i].Min {
			a.Ranges[i].Min = v
		}
		if v > a.Ranges[i].Max {
			a.Ranges[i].Max = v
		}
		a.Seen[i]++
	}
	return nil
}

// Merge merges another Accumulator into this one
func (a *Extent) Merge(o skyshade.Accumulator) error {
	ea, ok := o.(*Extent)
	if !ok {
		return fmt.Errorf("Incoming accumulator is not an Extent Accumulator")
	}
	if len(ea.Cols) != len(a.Cols) {
		return fmt.Errorf("Cannot merge Extent over %d columns into one over %d", len(ea.Cols), len(a.Cols))
	}
	for i := range a.Cols {
		if ea.Cols[i] != a.Cols[i] {
			return fmt.Errorf("Cannot merge Extent of column %s into Extent of column %s", ea.Cols[i], a.Cols[i])
		}
		if ea.Seen[i] == 0 {
			continue
		}
		a.Ranges[i].Min = math.Min(a.Ranges[i].Min, ea.Ranges[i].Min)
		a.Ranges[i].Max = math.Max(a.Ranges[i].Max, ea.Ranges[i].Max)
		a.Seen[i] += ea.Seen[i]
	}
	return nil
}

// ToBytes serializes this Accumulator
func (a *Extent) ToBytes() ([]byte, error) {
	buff := new(bytes.Buffer)
	if err := gob.NewEncoder(buff).Encode(a); err != nil {
		return nil, err
	}
	return buff.Bytes(), nil
}

// FromBytes produce a new Accumulator from serialized data
func (a *Extent) FromBytes(buff []byte) (skyshade.Accumulator, error) {
	res := &Extent{}
	if err := gob.NewDecoder(bytes.NewReader(buff)).Decode(res); err != nil {
		return nil, err
	}
	if len(res.Ranges) != len(res.Cols) || len(res.Seen) != len(res.Cols) {
		return nil, fmt.Errorf("serialized Extent Accumulator is malformed")
	}
	return res, nil
}
