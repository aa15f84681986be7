package accumulators

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/go-sif/skyshade"
)

// CanvasSpec describes the binning of a Canvas
type CanvasSpec struct {
	X      string // column binned along the horizontal axis
	Y      string // column binned along the vertical axis
	Width  int
	Height int
	XRange Range
	YRange Range
}

// Binner returns a new Canvas Accumulator for the given CanvasSpec
func Binner(spec CanvasSpec) skyshade.AccumulatorFactory {
	return func() skyshade.Accumulator {
		c, err := NewCanvas(spec)
		if err != nil {
			panic(err)
		}
		return c
	}
}

// NewCanvas validates a CanvasSpec and produces an empty Canvas
func NewCanvas(spec CanvasSpec) (*Canvas, error) {
	if spec.Width <= 0 || spec.Height <= 0 {
		return nil, fmt.Errorf("canvas dimensions must be positive, not %dx%d", spec.Width, spec.Height)
	}
	if !spec.XRange.IsValid() {
		return nil, fmt.Errorf("invalid x range [%g, %g]", spec.XRange.Min, spec.XRange.Max)
	}
	if !spec.YRange.IsValid() {
		return nil, fmt.Errorf("invalid y range [%g, %g]", spec.YRange.Min, spec.YRange.Max)
	}
	return &Canvas{spec: spec, counts: make([]uint32, spec.Width*spec.Height)}, nil
}

// Canvas counts rows per cell of a fixed grid over two numeric columns.
// Cells are half-open [lo, hi) except the last along each axis, which includes the range maximum.
// Rows with nil or NaN values, or which fall outside the ranges, are skipped.
// Cell (0, 0) holds the minimum x and minimum y.
type Canvas struct {
	spec    CanvasSpec
	counts  []uint32
	total   uint64
	skipped uint64
}

type serializedCanvas struct {
	Spec    CanvasSpec
	Counts  []uint32
	Total   uint64
	Skipped uint64
}

// Name returns the registered name of this Accumulator
func (c *Canvas) Name() string {
	return "canvas"
}

// Spec returns the CanvasSpec of this Canvas
func (c *Canvas) Spec() CanvasSpec {
	return c.spec
}

// Width returns the number of cells along the x axis
func (c *Canvas) Width() int {
	return c.spec.Width
}

// Height returns the number of cells along the y axis
func (c *Canvas) Height() int {
	return c.spec.Height
}

// At returns the count of the cell at column i (x) and row j (y)
func (c *Canvas) At(i, j int) uint32 {
	return c.counts[j*c.spec.Width+i]
}

// Counts returns the cell counts in row-major order, starting at the minimum y
func (c *Canvas) Counts() []uint32 {
	return c.counts
}

// Total returns the number of rows binned into this Canvas
func (c *Canvas) Total() uint64 {
	return c.total
}

// Skipped returns the number of rows which were not binned, because of nil, NaN or out-of-range values
func (c *Canvas) Skipped() uint64 {
	return c.skipped
}

// MaxCount returns the largest cell count
func (c *Canvas) MaxCount() uint32 {
	var m uint32
	for _, v := range c.counts {
		if v > m {
			m = v
		}
	}
	return m
}

// bin maps a value onto one of n cells of r, returning false if it falls outside r
func bin(v float64, r Range, n int) (int, bool) {
	if v < r.Min || v > r.Max {
		return 0, false
	}
	span := r.Span()
	if span == 0 {
		return 0, true
	}
	idx := int((v - r.Min) / span * float64(n))
	if idx >= n {
		idx = n - 1
	}
	return idx, true
}

// Accumulate adds a row to this Accumulator
func (c *Canvas) Accumulate(row skyshade.Row) error {
	x, xok, err := numericValue(row, c.spec.X)
	if err != nil {
		return err
	}
	y, yok, err := numericValue(row, c.spec.Y)
	if err != nil {
		return err
	}
	if !xok || !yok {
		c.skipped++
		return nil
	}
	i, iok := bin(x, c.spec.XRange, c.spec.Width)
	j, jok := bin(y, c.spec.YRange, c.spec.Height)
	if !iok || !jok {
		c.skipped++
		return nil
	}
	c.counts[j*c.spec.Width+i]++
	c.total++
	return nil
}

// Merge merges another Accumulator into this one
func (c *Canvas) Merge(o skyshade.Accumulator) error {
	ca, ok := o.(*Canvas)
	if !ok {
		return fmt.Errorf("Incoming accumulator is not a Canvas Accumulator")
	}
	if ca.spec != c.spec {
		return fmt.Errorf("Cannot merge Canvas %+v into Canvas %+v", ca.spec, c.spec)
	}
	for i, v := range ca.counts {
		c.counts[i] += v
	}
	c.total += ca.total
	c.skipped += ca.skipped
	return nil
}

// ToBytes serializes this Accumulator
func (c *Canvas) ToBytes() ([]byte, error) {
	buff := new(bytes.Buffer)
	err := gob.NewEncoder(buff).Encode(serializedCanvas{
		Spec:    c.spec,
		Counts:  c.counts,
		Total:   c.total,
		Skipped: c.skipped,
	})
	if err != nil {
		return nil, err
	}
	return buff.Bytes(), nil
}

// FromBytes produce a new Accumulator from serialized data
func (c *Canvas) FromBytes(buff []byte) (skyshade.Accumulator, error) {
	var s serializedCanvas
	if err := gob.NewDecoder(bytes.NewReader(buff)).Decode(&s); err != nil {
		return nil, err
	}
	res, err := NewCanvas(s.Spec)
	if err != nil {
		return nil, err
	}
	if len(s.Counts) != 0 {
		if len(s.Counts) != len(res.counts) {
			return nil, fmt.Errorf("serialized Canvas has %d cells, expected %d", len(s.Counts), len(res.counts))
		}
		res.counts = s.Counts
	}
	res.total = s.Total
	res.skipped = s.Skipped
	return res, nil
}
