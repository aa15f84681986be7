package partition

import (
	"bytes"
	"testing"

	"github.com/go-sif/skyshade"
	errors "github.com/go-sif/skyshade/errors"
	"github.com/go-sif/skyshade/schema"
	"github.com/stretchr/testify/require"
)

func createPartitionTestSchema() skyshade.Schema {
	schema := schema.CreateSchema()
	schema.CreateColumn("col1", &skyshade.Uint8ColumnType{})
	return schema
}

func createPointSchema() skyshade.Schema {
	schema := schema.CreateSchema()
	schema.CreateColumn("ra", &skyshade.Float64ColumnType{})
	schema.CreateColumn("dec", &skyshade.Float64ColumnType{})
	return schema
}

func TestCreatePartitionImpl(t *testing.T) {
	schema := createPartitionTestSchema()
	part := createPartitionImpl(4, 4, schema)
	require.Equal(t, part.GetMaxRows(), 4)
	require.Equal(t, part.GetNumRows(), 0)
	require.Nil(t, part.CanInsertRowData(make([]byte, 1)))
	require.NotNil(t, part.CanInsertRowData(make([]byte, 18))) // rows are padded to at least 16bytes
}

func TestAppendRowData(t *testing.T) {
	// make partition
	schema := createPartitionTestSchema()
	part := createPartitionImpl(4, 4, schema)
	require.Equal(t, part.GetNumRows(), 0)
	r := []byte{byte(uint8(1))}
	// append and validate row
	err := part.AppendRowData(r, []byte{0})
	require.Nil(t, err)
	require.Equal(t, part.GetNumRows(), 1)
	val, err := part.GetRow(0).GetUint8("col1")
	require.Nil(t, err)
	require.Equal(t, val, uint8(1))
	// append and validate another row
	r = []byte{byte(uint8(2))}
	err = part.AppendRowData(r, []byte{0})
	require.Nil(t, err)
	require.Equal(t, part.GetNumRows(), 2)
	val, err = part.GetRow(1).GetUint8("col1")
	require.Nil(t, err)
	require.Equal(t, val, uint8(2))
}

func TestPartitionGrowsAndFills(t *testing.T) {
	schema := createPartitionTestSchema()
	part := CreateBuildablePartition(5, schema)
	tempRow := CreateTempRow()
	for i := 0; i < 5; i++ {
		row, err := part.AppendEmptyRowData(tempRow)
		require.Nil(t, err)
		require.Nil(t, row.SetUint8("col1", uint8(i)))
	}
	_, err := part.AppendEmptyRowData(tempRow)
	require.ErrorAs(t, err, &errors.PartitionFullError{})
	for i := 0; i < 5; i++ {
		val, err := part.GetRow(i).GetUint8("col1")
		require.Nil(t, err)
		require.Equal(t, uint8(i), val)
	}
}

func TestTruncateLastRow(t *testing.T) {
	part := CreateBuildablePartition(4, createPointSchema())
	tempRow := CreateTempRow()
	row, err := part.AppendEmptyRowData(tempRow)
	require.Nil(t, err)
	require.Nil(t, row.SetFloat64("ra", 10))
	row, err = part.AppendEmptyRowData(tempRow)
	require.Nil(t, err)
	require.Nil(t, row.SetNil("ra"))
	part.TruncateLastRow()
	require.Equal(t, 1, part.GetNumRows())
	row, err = part.AppendEmptyRowData(tempRow)
	require.Nil(t, err)
	require.False(t, row.IsNil("ra"))
}

func TestFilterRows(t *testing.T) {
	part := CreateBuildablePartition(10, createPointSchema())
	tempRow := CreateTempRow()
	for i := 0; i < 10; i++ {
		row, err := part.AppendEmptyRowData(tempRow)
		require.Nil(t, err)
		require.Nil(t, row.SetFloat64("ra", float64(i)))
		require.Nil(t, row.SetFloat64("dec", -float64(i)))
	}
	filtered, err := part.FilterRows(func(row skyshade.Row) (bool, error) {
		ra, err := row.GetFloat64("ra")
		return ra >= 5, err
	})
	require.Nil(t, err)
	require.Equal(t, 5, filtered.GetNumRows())
	require.Equal(t, part.ID(), filtered.ID())
	dec, err := filtered.GetRow(0).GetFloat64("dec")
	require.Nil(t, err)
	require.Equal(t, -5.0, dec)
}

func TestPartitionSerialization(t *testing.T) {
	schema := createPointSchema()
	part := CreateBuildablePartition(8, schema)
	tempRow := CreateTempRow()
	for i := 0; i < 3; i++ {
		row, err := part.AppendEmptyRowData(tempRow)
		require.Nil(t, err)
		require.Nil(t, row.SetFloat64("ra", float64(i)*1.5))
		if i == 1 {
			require.Nil(t, row.SetNil("dec"))
		} else {
			require.Nil(t, row.SetFloat64("dec", float64(i)))
		}
	}
	buf, err := part.ToBytes()
	require.Nil(t, err)
	rebuilt, err := FromBytes(buf, schema)
	require.Nil(t, err)
	require.Equal(t, part.ID(), rebuilt.ID())
	require.Equal(t, 3, rebuilt.GetNumRows())
	require.Equal(t, 8, rebuilt.GetMaxRows())
	require.True(t, rebuilt.GetRow(1).IsNil("dec"))
	ra, err := rebuilt.GetRow(2).GetFloat64("ra")
	require.Nil(t, err)
	require.Equal(t, 3.0, ra)

	_, err = FromBytes(buf[:len(buf)-1], schema)
	require.NotNil(t, err)
}

func TestLZ4PartitionSerializer(t *testing.T) {
	schema := createPointSchema()
	part := CreateBuildablePartition(100, schema)
	tempRow := CreateTempRow()
	for i := 0; i < 100; i++ {
		row, err := part.AppendEmptyRowData(tempRow)
		require.Nil(t, err)
		require.Nil(t, row.SetFloat64("ra", float64(i)))
		require.Nil(t, row.SetFloat64("dec", float64(i)))
	}
	serializer := NewLZ4PartitionSerializer()
	var buf bytes.Buffer
	require.Nil(t, serializer.Compress(&buf, part))
	rebuilt, err := serializer.Decompress(&buf, schema)
	require.Nil(t, err)
	require.Equal(t, 100, rebuilt.GetNumRows())
	sum := 0.0
	require.Nil(t, rebuilt.ForEachRow(func(row skyshade.Row) error {
		ra, err := row.GetFloat64("ra")
		sum += ra
		return err
	}))
	require.Equal(t, 4950.0, sum)
}
