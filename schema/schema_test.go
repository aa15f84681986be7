package schema

import (
	"testing"

	"github.com/go-sif/skyshade"
	"github.com/go-sif/skyshade/errors"
	"github.com/stretchr/testify/require"
)

func TestSchemaEqualityBasic(t *testing.T) {
	schema1 := CreateSchema()
	_, err := schema1.CreateColumn("col1", &skyshade.Int64ColumnType{})
	require.Nil(t, err)
	_, err = schema1.CreateColumn("col2", &skyshade.Float64ColumnType{})
	require.Nil(t, err)

	schema2 := CreateSchema()
	_, err = schema2.CreateColumn("col1", &skyshade.Int64ColumnType{})
	require.Nil(t, err)
	_, err = schema2.CreateColumn("col2", &skyshade.Float64ColumnType{})
	require.Nil(t, err)

	require.Nil(t, schema1.Equals(schema2))
}

func TestSchemaEqualityDifferentType(t *testing.T) {
	schema1 := CreateSchema()
	_, err := schema1.CreateColumn("col1", &skyshade.Int64ColumnType{})
	require.Nil(t, err)

	schema2 := CreateSchema()
	_, err = schema2.CreateColumn("col1", &skyshade.Float64ColumnType{})
	require.Nil(t, err)

	require.NotNil(t, schema1.Equals(schema2))
}

func TestSchemaEqualityOrder(t *testing.T) {
	schema1 := CreateSchema()
	_, err := schema1.CreateColumn("col1", &skyshade.Int64ColumnType{})
	require.Nil(t, err)
	_, err = schema1.CreateColumn("col2", &skyshade.Int32ColumnType{})
	require.Nil(t, err)

	schema2 := CreateSchema()
	_, err = schema2.CreateColumn("col2", &skyshade.Int32ColumnType{})
	require.Nil(t, err)
	_, err = schema2.CreateColumn("col1", &skyshade.Int64ColumnType{})
	require.Nil(t, err)

	require.NotNil(t, schema1.Equals(schema2))
}

func TestSchemaPadding(t *testing.T) {
	s := CreateSchema()
	s.CreateColumn("ra", &skyshade.Float64ColumnType{})
	s.CreateColumn("dec", &skyshade.Float64ColumnType{})
	require.Equal(t, 16, s.RowWidth())
	require.Equal(t, 32, s.Size())
	s.CreateColumn("flag", &skyshade.BoolColumnType{})
	require.Equal(t, 17, s.RowWidth())
	require.Equal(t, 32, s.Size())
}

func TestSchemaProject(t *testing.T) {
	s := CreateSchema()
	s.CreateColumn("source_id", &skyshade.Int64ColumnType{})
	s.CreateColumn("ra", &skyshade.Float64ColumnType{})
	s.CreateColumn("phot_g_mean_mag", &skyshade.Float32ColumnType{})
	s.CreateColumn("dec", &skyshade.Float64ColumnType{})

	projected, err := s.Project("ra", "dec")
	require.Nil(t, err)
	require.Equal(t, []string{"ra", "dec"}, projected.ColumnNames())
	dec, err := projected.GetOffset("dec")
	require.Nil(t, err)
	require.Equal(t, 8, dec.Start())
	require.Equal(t, 1, dec.Index())

	_, err = s.Project("ra", "parallax")
	require.ErrorAs(t, err, &errors.MissingColumnError{})
	_, err = s.Project()
	require.NotNil(t, err)
}

func TestSchemaSerialization(t *testing.T) {
	s := CreateSchema()
	s.CreateColumn("ra", &skyshade.Float64ColumnType{})
	s.CreateColumn("count", &skyshade.Int32ColumnType{})
	s.CreateColumn("ok", &skyshade.BoolColumnType{})
	buf, err := ToBytes(s)
	require.Nil(t, err)
	rebuilt, err := FromBytes(buf)
	require.Nil(t, err)
	require.Nil(t, s.Equals(rebuilt))
	require.Equal(t, s.ColumnNames(), rebuilt.ColumnNames())
}
