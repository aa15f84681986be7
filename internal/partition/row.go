package partition

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/go-sif/skyshade"
	errors "github.com/go-sif/skyshade/errors"
)

const (
	colValueIsNilFlag = 1 << iota
)

// Row is a representation of a single row of columnar data,
// (a slice of a Partition), along with a reference to the
// Schema for that row (a mapping of column names to byte
// offsets). In practice, users of Row will call its
// getter and setter methods to retrieve, manipulate and store data
type rowImpl struct {
	partID string
	meta   []byte
	data   []byte          // likely a slice of a partition array
	schema skyshade.Schema // schema lets us pick the values we need out of the row
}

// CreateRow builds a new row from individual internal components
func CreateRow(partID string, meta []byte, data []byte, schema skyshade.Schema) skyshade.Row {
	return &rowImpl{partID: partID, meta: meta, data: data, schema: schema}
}

// CreateTempRow builds an empty row struct which cannot be used until passed to a function which populates it with data
func CreateTempRow() skyshade.Row {
	return &rowImpl{}
}

// Schema returns a read-only copy of the schema for a row
func (r *rowImpl) Schema() skyshade.Schema {
	return r.schema.Clone()
}

// ToString returns a string representation of this row
func (r *rowImpl) ToString() string {
	var res strings.Builder
	fmt.Fprint(&res, "{")
	for i, name := range r.schema.ColumnNames() {
		col, _ := r.schema.GetOffset(name)
		var val string
		if r.IsNil(name) {
			val = "nil"
		} else {
			v, err := r.Get(name)
			if err != nil {
				val = "?"
			} else {
				val = col.Type().ToString(v)
			}
		}
		if i > 0 {
			fmt.Fprint(&res, ", ")
		}
		fmt.Fprintf(&res, "\"%s\": %s", name, val)
	}
	fmt.Fprint(&res, "}")
	return res.String()
}

// IsNil returns true iff the given column value is nil in this row. If an error occurs, this function will return false.
func (r *rowImpl) IsNil(colName string) bool {
	offset, e := r.schema.GetOffset(colName)
	if e != nil {
		return false
	}
	return r.meta[offset.Index()]&colValueIsNilFlag > 0
}

// SetNil sets the given column value to nil within this row
func (r *rowImpl) SetNil(colName string) error {
	offset, err := r.schema.GetOffset(colName)
	if err != nil {
		return err
	}
	r.meta[offset.Index()] = r.meta[offset.Index()] | colValueIsNilFlag
	return nil
}

// checkIsNil returns a NilValueError if the given column is nil
func (r *rowImpl) checkIsNil(colName string, offset skyshade.Column) error {
	if r.meta[offset.Index()]&colValueIsNilFlag > 0 {
		return errors.NilValueError{Name: colName}
	}
	return nil
}

func (r *rowImpl) setNotNil(offset skyshade.Column) {
	r.meta[offset.Index()] = r.meta[offset.Index()] &^ colValueIsNilFlag
}

// fetch looks up a column and confirms it is non-nil and of the expected type
func (r *rowImpl) fetch(colName string, expected skyshade.ColumnType) (skyshade.Column, error) {
	offset, err := r.schema.GetOffset(colName)
	if err != nil {
		return nil, err
	}
	if offset.Type().Name() != expected.Name() {
		return nil, fmt.Errorf("column %s is of type %s, not %s", colName, offset.Type().Name(), expected.Name())
	}
	if err = r.checkIsNil(colName, offset); err != nil {
		return nil, err
	}
	return offset, nil
}

// place looks up a column for writing and confirms it is of the expected type
func (r *rowImpl) place(colName string, expected skyshade.ColumnType) (skyshade.Column, error) {
	offset, err := r.schema.GetOffset(colName)
	if err != nil {
		return nil, err
	}
	if offset.Type().Name() != expected.Name() {
		return nil, fmt.Errorf("column %s is of type %s, not %s", colName, offset.Type().Name(), expected.Name())
	}
	r.setNotNil(offset)
	return offset, nil
}

// Get returns the value of any column as an interface{}, if it exists
func (r *rowImpl) Get(colName string) (col interface{}, err error) {
	offset, err := r.schema.GetOffset(colName)
	if err != nil {
		return nil, err
	}
	switch offset.Type().(type) {
	case *skyshade.BoolColumnType:
		return r.GetBool(colName)
	case *skyshade.Uint8ColumnType:
		return r.GetUint8(colName)
	case *skyshade.Int32ColumnType:
		return r.GetInt32(colName)
	case *skyshade.Int64ColumnType:
		return r.GetInt64(colName)
	case *skyshade.Float32ColumnType:
		return r.GetFloat32(colName)
	case *skyshade.Float64ColumnType:
		return r.GetFloat64(colName)
	default:
		return nil, fmt.Errorf("Cannot fetch value for unknown column type")
	}
}

// GetBool retrieves a single bool from the column with the given name.
func (r *rowImpl) GetBool(colName string) (col bool, err error) {
	offset, err := r.fetch(colName, &skyshade.BoolColumnType{})
	if err != nil {
		return
	}
	col = r.data[offset.Start()] > 0
	return
}

// GetUint8 retrieves a single uint8 from the column with the given name.
func (r *rowImpl) GetUint8(colName string) (col uint8, err error) {
	offset, err := r.fetch(colName, &skyshade.Uint8ColumnType{})
	if err != nil {
		return
	}
	col = uint8(r.data[offset.Start()])
	return
}

// GetInt32 retrieves a single int32 from the column with the given name
func (r *rowImpl) GetInt32(colName string) (col int32, err error) {
	offset, err := r.fetch(colName, &skyshade.Int32ColumnType{})
	if err != nil {
		return
	}
	col = int32(binary.LittleEndian.Uint32(r.data[offset.Start():]))
	return
}

// GetInt64 retrieves a single int64 from the column with the given name
func (r *rowImpl) GetInt64(colName string) (col int64, err error) {
	offset, err := r.fetch(colName, &skyshade.Int64ColumnType{})
	if err != nil {
		return
	}
	col = int64(binary.LittleEndian.Uint64(r.data[offset.Start():]))
	return
}

// GetFloat32 retrieves a single float32 from the column with the given name
func (r *rowImpl) GetFloat32(colName string) (col float32, err error) {
	offset, err := r.fetch(colName, &skyshade.Float32ColumnType{})
	if err != nil {
		return
	}
	col = math.Float32frombits(binary.LittleEndian.Uint32(r.data[offset.Start():]))
	return
}

// GetFloat64 retrieves a single float64 from the column with the given name
func (r *rowImpl) GetFloat64(colName string) (col float64, err error) {
	offset, err := r.fetch(colName, &skyshade.Float64ColumnType{})
	if err != nil {
		return
	}
	col = math.Float64frombits(binary.LittleEndian.Uint64(r.data[offset.Start():]))
	return
}

// SetBool modifies a single bool from the column with the given name.
func (r *rowImpl) SetBool(colName string, value bool) (err error) {
	offset, err := r.place(colName, &skyshade.BoolColumnType{})
	if err != nil {
		return
	}
	if value {
		r.data[offset.Start()] = 1
	} else {
		r.data[offset.Start()] = 0
	}
	return
}

// SetUint8 modifies a single uint8 from the column with the given name.
func (r *rowImpl) SetUint8(colName string, value uint8) (err error) {
	offset, err := r.place(colName, &skyshade.Uint8ColumnType{})
	if err != nil {
		return
	}
	r.data[offset.Start()] = value
	return
}

// SetInt32 modifies a single int32 from the column with the given name.
func (r *rowImpl) SetInt32(colName string, value int32) (err error) {
	offset, err := r.place(colName, &skyshade.Int32ColumnType{})
	if err != nil {
		return
	}
	binary.LittleEndian.PutUint32(r.data[offset.Start():], uint32(value))
	return
}

// SetInt64 modifies a single int64 from the column with the given name.
func (r *rowImpl) SetInt64(colName string, value int64) (err error) {
	offset, err := r.place(colName, &skyshade.Int64ColumnType{})
	if err != nil {
		return
	}
	binary.LittleEndian.PutUint64(r.data[offset.Start():], uint64(value))
	return
}

// SetFloat32 modifies a single float32 from the column with the given name.
func (r *rowImpl) SetFloat32(colName string, value float32) (err error) {
	offset, err := r.place(colName, &skyshade.Float32ColumnType{})
	if err != nil {
		return
	}
	binary.LittleEndian.PutUint32(r.data[offset.Start():], math.Float32bits(value))
	return
}

// SetFloat64 modifies a single float64 from the column with the given name.
func (r *rowImpl) SetFloat64(colName string, value float64) (err error) {
	offset, err := r.place(colName, &skyshade.Float64ColumnType{})
	if err != nil {
		return
	}
	binary.LittleEndian.PutUint64(r.data[offset.Start():], math.Float64bits(value))
	return
}
