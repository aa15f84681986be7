package partition

import (
	"github.com/go-sif/skyshade"
	errors "github.com/go-sif/skyshade/errors"
)

// CreateBuildablePartition creates a new Partition containing an empty byte array and a schema
func CreateBuildablePartition(maxRows int, schema skyshade.Schema) skyshade.BuildablePartition {
	return createPartitionImpl(maxRows, defaultCapacity, schema)
}

// CanInsertRowData checks if a Row can be inserted into this Partition
func (p *partitionImpl) CanInsertRowData(row []byte) error {
	if len(row) > p.schema.Size() {
		return errors.IncompatibleRowError{}
	} else if p.numRows >= p.maxRows {
		return errors.PartitionFullError{}
	} else {
		return nil
	}
}

// AppendEmptyRowData is a convenient way to add an empty Row to the end of this Partition, returning the Row so that Row methods can be used to populate it
func (p *partitionImpl) AppendEmptyRowData(tempRow skyshade.Row) (skyshade.Row, error) {
	if p.numRows >= p.maxRows {
		return nil, errors.PartitionFullError{}
	}
	p.ensureCapacity()
	p.numRows++
	return p.getRow(tempRow.(*rowImpl), p.numRows-1), nil
}

// AppendRowData adds a Row to the end of this Partition, if it isn't full and if the Row fits within the schema
func (p *partitionImpl) AppendRowData(row []byte, meta []byte) error {
	if err := p.CanInsertRowData(row); err != nil {
		return err
	}
	p.ensureCapacity()
	copy(p.rows[p.numRows*p.schema.Size():(p.numRows+1)*p.schema.Size()], row)
	copy(p.rowMeta[p.numRows*p.schema.NumColumns():(p.numRows+1)*p.schema.NumColumns()], meta)
	p.numRows++
	return nil
}

// TruncateLastRow zeroes out and discards the last row of the Partition
func (p *partitionImpl) TruncateLastRow() {
	if p.numRows == 0 {
		return
	}
	p.numRows--
	rowWidth := p.schema.Size()
	numCols := p.schema.NumColumns()
	for i := p.numRows * rowWidth; i < (p.numRows+1)*rowWidth; i++ {
		p.rows[i] = 0
	}
	for i := p.numRows * numCols; i < (p.numRows+1)*numCols; i++ {
		p.rowMeta[i] = 0
	}
}

// FilterRows produces a new Partition containing only the Rows for which fn returns true
func (p *partitionImpl) FilterRows(fn skyshade.FilterOperation) (skyshade.BuildablePartition, error) {
	result := createPartitionImpl(p.maxRows, p.numRows, p.schema)
	result.id = p.id
	row := &rowImpl{}
	for i := 0; i < p.numRows; i++ {
		keep, err := fn(p.getRow(row, i))
		if err != nil {
			return nil, err
		}
		if keep {
			if err = result.AppendRowData(row.data, row.meta); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}
