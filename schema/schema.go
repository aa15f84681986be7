package schema

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"reflect"

	"github.com/go-sif/skyshade"
	"github.com/go-sif/skyshade/errors"
)

// Column describes the byte offsets of the start
// and end of a field in a Row.
type column struct {
	idx     int
	start   int
	colType skyshade.ColumnType
}

// Clone returns a copy of this Column
func (c *column) Clone() skyshade.Column {
	return &column{c.idx, c.start, c.colType}
}

// Index returns the index of this Column within a Schema
func (c *column) Index() int {
	return c.idx
}

// Start returns the Start position of this Column within a Row
func (c *column) Start() int {
	return c.start
}

// Type returns the ColumnType of this Column
func (c *column) Type() skyshade.ColumnType {
	return c.colType
}

// Schema is a mapping from column names to byte offsets
// within a Row. It allows one to obtain offsets by name,
// define new columns and select projections.
type schema struct {
	schema map[string]skyshade.Column
	size   int
}

// CreateSchema is a factory for Schemas
func CreateSchema() skyshade.Schema {
	return &schema{
		schema: make(map[string]skyshade.Column),
		size:   0,
	}
}

// Equals returns nil iff this and another Schema are equivalent
func (s *schema) Equals(otherSchema skyshade.Schema) error {
	if s.Size() != otherSchema.Size() {
		return fmt.Errorf("Schemas have unequal sizes")
	}
	if s.NumColumns() != otherSchema.NumColumns() {
		return fmt.Errorf("Schemas have unequal numbers of columns")
	}
	return s.ForEachColumn(func(name string, offset skyshade.Column) error {
		otherOffset, err := otherSchema.GetOffset(name)
		if err != nil {
			return err
		}
		if offset.Start() != otherOffset.Start() {
			return fmt.Errorf("Column %s offsets do not match", name)
		}
		if offset.Index() != otherOffset.Index() {
			return fmt.Errorf("Column %s indices do not match", name)
		}
		if reflect.TypeOf(offset.Type()) != reflect.TypeOf(otherOffset.Type()) {
			return fmt.Errorf("Column %s types do not match", name)
		}
		return nil
	})
}

// Clone returns a copy of this Schema
func (s *schema) Clone() skyshade.Schema {
	newSchema := make(map[string]skyshade.Column)
	for k, v := range s.schema {
		newSchema[k] = v.Clone()
	}
	return &schema{schema: newSchema, size: s.size}
}

// RowWidth returns the current byte size of a Row respecting this Schema, without padding
func (s *schema) RowWidth() int {
	return s.size
}

// Size returns the current byte size of a Row respecting this Schema, padded so rows fit neatly into 64 bit chunks
func (s *schema) Size() int {
	if s.size < 16 {
		return 16
	} else if s.size < 32 {
		return 32
	} else if s.size < 64 {
		return 64
	} else if s.size%64 != 0 {
		return ((s.size / 64) + 1) * 64
	} else {
		return (s.size / 64) * 64
	}
}

// NumColumns returns the number of columns in this Schema
func (s *schema) NumColumns() int {
	return len(s.schema)
}

// GetOffset returns the byte offset of a particular column within a row.
func (s *schema) GetOffset(colName string) (offset skyshade.Column, err error) {
	offset, ok := s.schema[colName]
	if !ok {
		err = errors.MissingColumnError{Name: colName}
	}
	return
}

// HasColumn returns true iff this schema contains a column with the given name
func (s *schema) HasColumn(colName string) bool {
	_, err := s.GetOffset(colName)
	return err == nil
}

// CreateColumn defines a new column within the Schema
func (s *schema) CreateColumn(colName string, columnType skyshade.ColumnType) (newSchema skyshade.Schema, err error) {
	_, containsOffset := s.schema[colName]
	if containsOffset {
		err = fmt.Errorf("Schema already contains column with name %s", colName)
	} else {
		s.schema[colName] = &column{len(s.schema), s.size, columnType}
		s.size += columnType.Size()
		newSchema = s
	}
	return
}

// Project produces a new, tightly-packed Schema containing only the given columns, in the given order
func (s *schema) Project(colNames ...string) (skyshade.Schema, error) {
	if len(colNames) == 0 {
		return nil, fmt.Errorf("a projection must contain at least one column")
	}
	projected := CreateSchema()
	for _, name := range colNames {
		col, err := s.GetOffset(name)
		if err != nil {
			return nil, err
		}
		if _, err = projected.CreateColumn(name, col.Type()); err != nil {
			return nil, err
		}
	}
	return projected, nil
}

// ColumnNames returns the names in the schema, in index order
func (s *schema) ColumnNames() []string {
	names := make([]string, len(s.schema))
	for k, v := range s.schema {
		names[v.Index()] = k
	}
	return names
}

// ColumnTypes returns the types in the schema, in index order
func (s *schema) ColumnTypes() []skyshade.ColumnType {
	types := make([]skyshade.ColumnType, len(s.schema))
	for _, v := range s.schema {
		types[v.Index()] = v.Type()
	}
	return types
}

// ForEachColumn iterates over the columns in this Schema. Does not necessarily iterate in order of column index.
func (s *schema) ForEachColumn(fn func(name string, col skyshade.Column) error) error {
	for k, v := range s.schema {
		err := fn(k, v)
		if err != nil {
			return err
		}
	}
	return nil
}

type serializedColumn struct {
	Name string
	Type string
}

// ToBytes serializes a Schema as an ordered list of column names and type names
func ToBytes(s skyshade.Schema) ([]byte, error) {
	names := s.ColumnNames()
	types := s.ColumnTypes()
	cols := make([]serializedColumn, len(names))
	for i := range names {
		cols[i] = serializedColumn{Name: names[i], Type: types[i].Name()}
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(cols); err != nil {
		return nil, fmt.Errorf("unable to serialize schema: %w", err)
	}
	return buf.Bytes(), nil
}

// FromBytes rebuilds a Schema serialized with ToBytes
func FromBytes(buf []byte) (skyshade.Schema, error) {
	var cols []serializedColumn
	if err := gob.NewDecoder(bytes.NewReader(buf)).Decode(&cols); err != nil {
		return nil, fmt.Errorf("unable to deserialize schema: %w", err)
	}
	s := CreateSchema()
	for _, c := range cols {
		colType, err := skyshade.ColumnTypeFromName(c.Type)
		if err != nil {
			return nil, err
		}
		if _, err = s.CreateColumn(c.Name, colType); err != nil {
			return nil, err
		}
	}
	return s, nil
}
