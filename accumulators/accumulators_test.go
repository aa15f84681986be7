package accumulators

import (
	"math"
	"testing"

	"github.com/go-sif/skyshade"
	"github.com/go-sif/skyshade/internal/partition"
	"github.com/go-sif/skyshade/schema"
	"github.com/stretchr/testify/require"
)

type point struct {
	ra, dec float64
	nilDec  bool
}

func createPointPartition(t *testing.T, points []point) skyshade.Partition {
	s := schema.CreateSchema()
	s.CreateColumn("ra", &skyshade.Float64ColumnType{})
	s.CreateColumn("dec", &skyshade.Float64ColumnType{})
	part := partition.CreateBuildablePartition(len(points), s)
	tempRow := partition.CreateTempRow()
	for _, p := range points {
		row, err := part.AppendEmptyRowData(tempRow)
		require.Nil(t, err)
		require.Nil(t, row.SetFloat64("ra", p.ra))
		if p.nilDec {
			require.Nil(t, row.SetNil("dec"))
		} else {
			require.Nil(t, row.SetFloat64("dec", p.dec))
		}
	}
	return part
}

func accumulateAll(t *testing.T, acc skyshade.Accumulator, part skyshade.Partition) {
	require.Nil(t, part.ForEachRow(acc.Accumulate))
}

// roundTrip ships an Accumulator the way workers do: by name and serialized form
func roundTrip(t *testing.T, acc skyshade.Accumulator) skyshade.Accumulator {
	buf, err := acc.ToBytes()
	require.Nil(t, err)
	res, err := Instantiate(acc.Name(), buf)
	require.Nil(t, err)
	return res
}

func TestCount(t *testing.T) {
	part := createPointPartition(t, []point{{1, 1, false}, {2, 2, true}, {3, 3, false}})
	a := Counter()
	accumulateAll(t, a, part)
	b := roundTrip(t, a)
	require.Nil(t, a.Merge(b))
	require.EqualValues(t, 6, a.(*Count).GetCount())
	_, err := (&Count{}).FromBytes([]byte{1})
	require.NotNil(t, err)
}

func TestSumSkipsNil(t *testing.T) {
	part := createPointPartition(t, []point{{1, 10, false}, {2, 20, true}, {3, math.NaN(), false}})
	a := Adder("dec")()
	accumulateAll(t, a, part)
	require.Equal(t, 10.0, a.(*Sum).GetSum())
	b := roundTrip(t, a)
	require.Nil(t, a.Merge(b))
	require.Equal(t, 20.0, a.(*Sum).GetSum())
	require.NotNil(t, a.Merge(Adder("ra")()))

	missing := Adder("parallax")()
	require.NotNil(t, missing.Accumulate(part.GetRow(0)))
}

func TestExtent(t *testing.T) {
	a := Ranger("ra", "dec")()
	_, ok := a.(*Extent).Get("ra")
	require.False(t, ok)

	accumulateAll(t, a, createPointPartition(t, []point{{10, -5, false}, {20, 0, true}}))
	b := Ranger("ra", "dec")()
	accumulateAll(t, b, createPointPartition(t, []point{{-3, 80, false}}))
	require.Nil(t, a.Merge(roundTrip(t, b)))

	ra, ok := a.(*Extent).Get("ra")
	require.True(t, ok)
	require.Equal(t, Range{Min: -3, Max: 20}, ra)
	dec, ok := a.(*Extent).Get("dec")
	require.True(t, ok)
	require.Equal(t, Range{Min: -5, Max: 80}, dec)
	require.Nil(t, a.Merge(Ranger("ra", "dec")()))
	dec, _ = a.(*Extent).Get("dec")
	require.Equal(t, Range{Min: -5, Max: 80}, dec)
}

func TestCanvasBinning(t *testing.T) {
	spec := CanvasSpec{X: "ra", Y: "dec", Width: 4, Height: 2, XRange: Range{0, 4}, YRange: Range{-1, 1}}
	a := Binner(spec)()
	part := createPointPartition(t, []point{
		{0, -1, false},   // min corner
		{4, 1, false},    // max corner, upper edges are inclusive
		{1.5, 0, false},  // cell (1, 1)
		{0.99, 0, false}, // cell (0, 1)
		{5, 0, false},    // out of range
		{2, -1.5, false}, // out of range
		{2, 0, true},     // nil
		{math.NaN(), 0, false},
	})
	accumulateAll(t, a, part)
	c := a.(*Canvas)
	require.EqualValues(t, 4, c.Total())
	require.EqualValues(t, 4, c.Skipped())
	require.EqualValues(t, 1, c.At(0, 0))
	require.EqualValues(t, 1, c.At(3, 1))
	require.EqualValues(t, 1, c.At(1, 1))
	require.EqualValues(t, 1, c.At(0, 1))
	require.EqualValues(t, 1, c.MaxCount())

	merged := roundTrip(t, c)
	require.Nil(t, merged.Merge(c))
	require.EqualValues(t, 2, merged.(*Canvas).At(0, 0))
	require.EqualValues(t, 8, merged.(*Canvas).Total())

	other := spec
	other.Width = 5
	require.NotNil(t, c.Merge(Binner(other)()))
}

func TestCanvasValidation(t *testing.T) {
	_, err := NewCanvas(CanvasSpec{X: "ra", Y: "dec", Width: 0, Height: 2, XRange: Range{0, 1}, YRange: Range{0, 1}})
	require.NotNil(t, err)
	_, err = NewCanvas(CanvasSpec{X: "ra", Y: "dec", Width: 2, Height: 2, XRange: Range{1, 0}, YRange: Range{0, 1}})
	require.NotNil(t, err)
	_, err = NewCanvas(CanvasSpec{X: "ra", Y: "dec", Width: 2, Height: 2, XRange: Range{0, 1}, YRange: Range{0, math.Inf(1)}})
	require.NotNil(t, err)
	// a degenerate range bins everything at its single value into the first cell
	c, err := NewCanvas(CanvasSpec{X: "ra", Y: "dec", Width: 2, Height: 2, XRange: Range{1, 1}, YRange: Range{0, 1}})
	require.Nil(t, err)
	accumulateAll(t, c, createPointPartition(t, []point{{1, 1, false}, {1.1, 1, false}}))
	require.EqualValues(t, 1, c.At(0, 1))
	require.EqualValues(t, 1, c.Total())
}

func TestComposed(t *testing.T) {
	spec := CanvasSpec{X: "ra", Y: "dec", Width: 2, Height: 2, XRange: Range{0, 2}, YRange: Range{0, 2}}
	a := Compose(Counter, Adder("ra"), Binner(spec))()
	accumulateAll(t, a, createPointPartition(t, []point{{0.5, 0.5, false}, {1.5, 1.5, false}}))
	b := roundTrip(t, a)
	require.Nil(t, a.Merge(b))
	results := a.(*Composed).GetResults()
	require.Len(t, results, 3)
	require.EqualValues(t, 4, results[0].(*Count).GetCount())
	require.Equal(t, 4.0, results[1].(*Sum).GetSum())
	require.EqualValues(t, 2, results[2].(*Canvas).At(1, 1))
}

func TestRegistry(t *testing.T) {
	require.Equal(t, []string{"canvas", "composed", "count", "extent", "sum"}, Registered())
	_, err := Instantiate("median", nil)
	require.NotNil(t, err)
}
