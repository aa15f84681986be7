package parquet

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-sif/skyshade"
	"github.com/go-sif/skyshade/datasource"
	pq "github.com/segmentio/parquet-go"
	"github.com/stretchr/testify/require"
)

type star struct {
	RA  float64  `parquet:"ra"`
	Dec *float32 `parquet:"dec,optional"`
	Mag int64    `parquet:"phot_g_mean_mag"`
}

// writeStars writes numGroups row groups of groupSize stars each. Every 7th star has a nil dec.
func writeStars(t *testing.T, path string, numGroups int, groupSize int) {
	f, err := os.Create(path)
	require.Nil(t, err)
	defer f.Close()
	w := pq.NewGenericWriter[star](f)
	idx := 0
	for g := 0; g < numGroups; g++ {
		batch := make([]star, groupSize)
		for i := range batch {
			batch[i] = star{RA: float64(idx), Mag: int64(idx * 2)}
			if idx%7 != 0 {
				dec := float32(-idx)
				batch[i].Dec = &dec
			}
			idx++
		}
		_, err := w.Write(batch)
		require.Nil(t, err)
		require.Nil(t, w.Flush())
	}
	require.Nil(t, w.Close())
}

func loadAll(t *testing.T, df skyshade.DataFrame) (rows int, partitions int, loaders int) {
	pm, err := df.AnalyzeSource()
	require.Nil(t, err)
	for pm.HasNext() {
		loaders++
		pl := pm.Next()
		// workers receive loaders in serialized form
		buf, err := pl.GobEncode()
		require.Nil(t, err)
		pl, err = datasource.DeserializeLoader(pl.Kind(), buf)
		require.Nil(t, err)
		it, err := pl.Load(df.GetSchema())
		require.Nil(t, err)
		for it.HasNextPartition() {
			part, err := it.NextPartition()
			require.Nil(t, err)
			partitions++
			rows += part.GetNumRows()
		}
	}
	return
}

func TestParquetDataSource(t *testing.T) {
	dir := t.TempDir()
	writeStars(t, filepath.Join(dir, "part.0.parquet"), 3, 10)
	writeStars(t, filepath.Join(dir, "part.1.parquet"), 1, 10)
	require.Nil(t, os.WriteFile(filepath.Join(dir, "_metadata"), []byte("not parquet"), 0644))
	require.Nil(t, os.WriteFile(filepath.Join(dir, ".part.0.parquet.crc"), []byte("crc"), 0644))

	df, err := CreateDataFrame(dir, &Conf{PartitionSize: 4}, "ra", "dec")
	require.Nil(t, err)
	require.Equal(t, []string{"ra", "dec"}, df.GetSchema().ColumnNames())
	require.IsType(t, &skyshade.Float64ColumnType{}, df.GetSchema().ColumnTypes()[0])
	require.IsType(t, &skyshade.Float32ColumnType{}, df.GetSchema().ColumnTypes()[1])

	rows, partitions, loaders := loadAll(t, df)
	require.Equal(t, 4, loaders)
	require.Equal(t, 40, rows)
	require.Equal(t, 12, partitions)
}

func TestParquetValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stars.parq")
	writeStars(t, path, 1, 8)
	df, err := CreateDataFrame(path, nil, "dec", "ra")
	require.Nil(t, err)
	pm, err := df.AnalyzeSource()
	require.Nil(t, err)
	require.True(t, pm.HasNext())
	it, err := pm.Next().Load(df.GetSchema())
	require.Nil(t, err)
	part, err := it.NextPartition()
	require.Nil(t, err)
	require.False(t, it.HasNextPartition())
	require.Equal(t, 8, part.GetNumRows())

	first := part.GetRow(0)
	require.True(t, first.IsNil("dec"))
	ra, err := first.GetFloat64("ra")
	require.Nil(t, err)
	require.Equal(t, 0.0, ra)

	row := part.GetRow(3)
	require.False(t, row.IsNil("dec"))
	dec, err := row.GetFloat32("dec")
	require.Nil(t, err)
	require.Equal(t, float32(-3), dec)
	ra, err = row.GetFloat64("ra")
	require.Nil(t, err)
	require.Equal(t, 3.0, ra)
}

func TestParquetInt64Column(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stars.parquet")
	writeStars(t, path, 1, 5)
	f, closer, err := openFile(path)
	require.Nil(t, err)
	defer closer.Close()
	s, err := InferSchema(f.Schema(), "phot_g_mean_mag")
	require.Nil(t, err)
	require.IsType(t, &skyshade.Int64ColumnType{}, s.ColumnTypes()[0])

	it, err := LoadRowGroup(f, 0, s, 10, nil)
	require.Nil(t, err)
	part, err := it.NextPartition()
	require.Nil(t, err)
	mag, err := part.GetRow(4).GetInt64("phot_g_mean_mag")
	require.Nil(t, err)
	require.Equal(t, int64(8), mag)
}

func TestParquetErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := CreateDataFrame(dir, nil, "ra")
	require.NotNil(t, err, "empty directories contain no part files")

	path := filepath.Join(dir, "stars.parquet")
	writeStars(t, path, 1, 5)
	_, err = CreateDataFrame(path, nil, "parallax")
	require.NotNil(t, err)

	f, closer, err := openFile(path)
	require.Nil(t, err)
	defer closer.Close()
	ended := false
	_, err = LoadRowGroup(f, 3, nil, 10, func() { ended = true })
	require.NotNil(t, err)
	require.True(t, ended)
}

func TestNumericWidening(t *testing.T) {
	v, err := numeric("x", pq.ValueOf(int32(7)))
	require.Nil(t, err)
	require.Equal(t, 7.0, v)
	v, err = numeric("x", pq.ValueOf(float32(1.5)))
	require.Nil(t, err)
	require.Equal(t, 1.5, v)
	_, err = integral("x", pq.ValueOf(math.Pi))
	require.NotNil(t, err)
}
