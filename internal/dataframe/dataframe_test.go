package dataframe

import (
	"math"
	"testing"

	"github.com/go-sif/skyshade"
	"github.com/go-sif/skyshade/internal/partition"
	"github.com/go-sif/skyshade/schema"
	"github.com/stretchr/testify/require"
)

type staticSource struct{}

func (s *staticSource) Analyze() (skyshade.PartitionMap, error) { return nil, nil }
func (s *staticSource) String() string                         { return "static" }

func createPointSchema() skyshade.Schema {
	s := schema.CreateSchema()
	s.CreateColumn("ra", &skyshade.Float64ColumnType{})
	s.CreateColumn("dec", &skyshade.Float32ColumnType{})
	return s
}

func TestDataFrameIsImmutable(t *testing.T) {
	df := CreateDataFrame(&staticSource{}, createPointSchema())
	filtered := df.Where(skyshade.Filter{Column: "ra", Min: 0, Max: 10})
	dropped := filtered.DropNil()
	require.Len(t, df.GetFilters(), 0)
	require.False(t, df.DropsNil())
	require.Len(t, filtered.GetFilters(), 1)
	require.False(t, filtered.DropsNil())
	require.Len(t, dropped.GetFilters(), 1)
	require.True(t, dropped.DropsNil())

	_, err := df.Where(skyshade.Filter{Column: "parallax"}).AnalyzeSource()
	require.NotNil(t, err)
	_, err = filtered.AnalyzeSource()
	require.Nil(t, err)
}

func TestCompileFilter(t *testing.T) {
	s := createPointSchema()
	require.Nil(t, CompileFilter(s, nil, false))

	part := partition.CreateBuildablePartition(5, s)
	tempRow := partition.CreateTempRow()
	add := func(ra float64, dec float32, nilDec bool) {
		row, err := part.AppendEmptyRowData(tempRow)
		require.Nil(t, err)
		require.Nil(t, row.SetFloat64("ra", ra))
		if nilDec {
			require.Nil(t, row.SetNil("dec"))
		} else {
			require.Nil(t, row.SetFloat32("dec", dec))
		}
	}
	add(5, 1, false)
	add(10, 2, false) // inclusive upper bound
	add(11, 3, false) // out of range
	add(6, 0, true)   // nil dec
	add(math.NaN(), 4, false)

	ranged, err := part.FilterRows(CompileFilter(s, []skyshade.Filter{{Column: "ra", Min: 0, Max: 10}}, false))
	require.Nil(t, err)
	require.Equal(t, 3, ranged.GetNumRows())

	noNil, err := part.FilterRows(CompileFilter(s, nil, true))
	require.Nil(t, err)
	require.Equal(t, 3, noNil.GetNumRows())

	both, err := part.FilterRows(CompileFilter(s, []skyshade.Filter{{Column: "ra", Min: 0, Max: 10}}, true))
	require.Nil(t, err)
	require.Equal(t, 2, both.GetNumRows())
}

func TestEmptyPartitionIterator(t *testing.T) {
	ended := false
	it := CreateEmptyPartitionIterator()
	it.OnEnd(func() { ended = true })
	require.False(t, it.HasNextPartition())
	require.True(t, ended)
	_, err := it.NextPartition()
	require.NotNil(t, err)
}
