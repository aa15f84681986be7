package partition

import (
	"encoding/binary"
	"fmt"
	"log"

	"github.com/go-sif/skyshade"
	uuid "github.com/gofrs/uuid"
)

const defaultCapacity = 2

// partitionImpl is the internal implementation of Partition
type partitionImpl struct {
	id       string
	maxRows  int
	numRows  int
	capacity int
	rows     []byte
	rowMeta  []byte
	schema   skyshade.Schema
}

// createPartitionImpl creates a new Partition containing an empty byte array and a schema
func createPartitionImpl(maxRows int, initialCapacity int, schema skyshade.Schema) *partitionImpl {
	id, err := uuid.NewV4()
	if err != nil {
		log.Fatalf("failed to generate UUID for Partition: %v", err)
	}
	if initialCapacity > maxRows {
		initialCapacity = maxRows
	}
	return &partitionImpl{
		id:       id.String(),
		maxRows:  maxRows,
		numRows:  0,
		capacity: initialCapacity,
		rows:     make([]byte, initialCapacity*schema.Size()),
		rowMeta:  make([]byte, initialCapacity*schema.NumColumns()),
		schema:   schema,
	}
}

// CreatePartition creates a new Partition containing an empty byte array and a schema
func CreatePartition(maxRows int, initialCapacity int, schema skyshade.Schema) skyshade.Partition {
	return createPartitionImpl(maxRows, initialCapacity, schema)
}

// ID retrieves the ID of this Partition
func (p *partitionImpl) ID() string {
	return p.id
}

// GetMaxRows retrieves the maximum number of rows in this Partition
func (p *partitionImpl) GetMaxRows() int {
	return p.maxRows
}

// GetNumRows retrieves the number of rows in this Partition
func (p *partitionImpl) GetNumRows() int {
	return p.numRows
}

// GetSchema retrieves the Schema of this Partition
func (p *partitionImpl) GetSchema() skyshade.Schema {
	return p.schema
}

// getRow populates an existing row from this Partition, without allocation
func (p *partitionImpl) getRow(row *rowImpl, rowNum int) skyshade.Row {
	row.partID = p.id
	row.meta = p.getRowMeta(rowNum)
	row.data = p.getRowData(rowNum)
	row.schema = p.schema
	return row
}

// GetRow retrieves a specific row from this Partition
func (p *partitionImpl) GetRow(rowNum int) skyshade.Row {
	return &rowImpl{
		partID: p.id,
		meta:   p.getRowMeta(rowNum),
		data:   p.getRowData(rowNum),
		schema: p.schema,
	}
}

func (p *partitionImpl) getRowData(rowNum int) []byte {
	start := rowNum * p.schema.Size()
	end := start + p.schema.Size()
	return p.rows[start:end:end]
}

func (p *partitionImpl) getRowMeta(rowNum int) []byte {
	start := rowNum * p.schema.NumColumns()
	end := start + p.schema.NumColumns()
	return p.rowMeta[start:end:end]
}

// ForEachRow iterates over Rows in a Partition, reusing a single Row
func (p *partitionImpl) ForEachRow(fn skyshade.MapOperation) error {
	row := &rowImpl{}
	for i := 0; i < p.numRows; i++ {
		if err := fn(p.getRow(row, i)); err != nil {
			return err
		}
	}
	return nil
}

// ensureCapacity grows the backing arrays of this Partition (doubling) so that another row fits
func (p *partitionImpl) ensureCapacity() {
	if p.numRows < p.capacity {
		return
	}
	newCapacity := p.capacity * 2
	if newCapacity == 0 {
		newCapacity = defaultCapacity
	}
	if newCapacity > p.maxRows {
		newCapacity = p.maxRows
	}
	rows := make([]byte, newCapacity*p.schema.Size())
	copy(rows, p.rows)
	meta := make([]byte, newCapacity*p.schema.NumColumns())
	copy(meta, p.rowMeta)
	p.rows = rows
	p.rowMeta = meta
	p.capacity = newCapacity
}

const partitionHeaderSize = 4 + 4 + 2

// ToBytes serializes this Partition's rows and nil flags. The Schema is not included.
func (p *partitionImpl) ToBytes() ([]byte, error) {
	rowBytes := p.numRows * p.schema.Size()
	metaBytes := p.numRows * p.schema.NumColumns()
	buf := make([]byte, partitionHeaderSize+len(p.id)+rowBytes+metaBytes)
	binary.LittleEndian.PutUint32(buf[0:], uint32(p.numRows))
	binary.LittleEndian.PutUint32(buf[4:], uint32(p.maxRows))
	binary.LittleEndian.PutUint16(buf[8:], uint16(len(p.id)))
	offset := partitionHeaderSize
	offset += copy(buf[offset:], p.id)
	offset += copy(buf[offset:], p.rows[:rowBytes])
	copy(buf[offset:], p.rowMeta[:metaBytes])
	return buf, nil
}

// FromBytes deserializes a Partition produced by ToBytes, given its Schema
func FromBytes(buf []byte, schema skyshade.Schema) (skyshade.BuildablePartition, error) {
	if len(buf) < partitionHeaderSize {
		return nil, fmt.Errorf("serialized partition is too short: %d bytes", len(buf))
	}
	numRows := int(binary.LittleEndian.Uint32(buf[0:]))
	maxRows := int(binary.LittleEndian.Uint32(buf[4:]))
	idLen := int(binary.LittleEndian.Uint16(buf[8:]))
	rowBytes := numRows * schema.Size()
	metaBytes := numRows * schema.NumColumns()
	if len(buf) != partitionHeaderSize+idLen+rowBytes+metaBytes {
		return nil, fmt.Errorf("serialized partition has %d bytes, expected %d for %d rows", len(buf), partitionHeaderSize+idLen+rowBytes+metaBytes, numRows)
	}
	offset := partitionHeaderSize
	id := string(buf[offset : offset+idLen])
	offset += idLen
	rows := make([]byte, rowBytes)
	offset += copy(rows, buf[offset:offset+rowBytes])
	meta := make([]byte, metaBytes)
	copy(meta, buf[offset:offset+metaBytes])
	return &partitionImpl{
		id:       id,
		maxRows:  maxRows,
		numRows:  numRows,
		capacity: numRows,
		rows:     rows,
		rowMeta:  meta,
		schema:   schema,
	}, nil
}
