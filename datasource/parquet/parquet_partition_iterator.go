package parquet

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/go-sif/skyshade"
	"github.com/go-sif/skyshade/datasource"
	errors "github.com/go-sif/skyshade/errors"
	pq "github.com/segmentio/parquet-go"
)

// columnCursor reads the values of one column chunk, page by page
type columnCursor struct {
	name    string
	colType skyshade.ColumnType
	pages   pq.Pages
	values  pq.ValueReader
	buf     []pq.Value
}

// read fills the cursor's buffer with up to n values, crossing page boundaries as needed
func (c *columnCursor) read(n int) ([]pq.Value, error) {
	if cap(c.buf) < n {
		c.buf = make([]pq.Value, n)
	}
	c.buf = c.buf[:n]
	total := 0
	for total < n {
		if c.values == nil {
			page, err := c.pages.ReadPage()
			if err == io.EOF {
				break
			} else if err != nil {
				return nil, fmt.Errorf("column %s: %w", c.name, err)
			}
			c.values = page.Values()
		}
		read, err := c.values.ReadValues(c.buf[total:])
		total += read
		if err == io.EOF {
			c.values = nil
		} else if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.name, err)
		}
	}
	return c.buf[:total], nil
}

type parquetPartitionIterator struct {
	schema        skyshade.Schema
	partitionSize int
	remaining     int64
	cursors       []*columnCursor
	lock          sync.Mutex
	endListeners  []func()
}

// LoadRowGroup produces a PartitionIterator over the projected columns of a single row group.
// onEnd, if non-nil, fires once the row group is exhausted (or fails).
func LoadRowGroup(f *pq.File, rowGroup int, schema skyshade.Schema, partitionSize int, onEnd func()) (skyshade.PartitionIterator, error) {
	fail := func(err error) (skyshade.PartitionIterator, error) {
		if onEnd != nil {
			onEnd()
		}
		return nil, err
	}
	rowGroups := f.RowGroups()
	if rowGroup < 0 || rowGroup >= len(rowGroups) {
		return fail(fmt.Errorf("row group %d does not exist (file has %d)", rowGroup, len(rowGroups)))
	}
	rg := rowGroups[rowGroup]
	chunks := rg.ColumnChunks()
	colNames := schema.ColumnNames()
	colTypes := schema.ColumnTypes()
	cursors := make([]*columnCursor, len(colNames))
	for i, name := range colNames {
		leaf, ok := f.Schema().Lookup(strings.Split(name, ".")...)
		if !ok {
			for _, c := range cursors[:i] {
				c.pages.Close()
			}
			return fail(errors.MissingColumnError{Name: name})
		}
		cursors[i] = &columnCursor{
			name:    name,
			colType: colTypes[i],
			pages:   chunks[leaf.ColumnIndex].Pages(),
		}
	}
	iterator := &parquetPartitionIterator{
		schema:        schema,
		partitionSize: partitionSize,
		remaining:     rg.NumRows(),
		cursors:       cursors,
		endListeners:  []func(){},
	}
	if onEnd != nil {
		iterator.OnEnd(onEnd)
	}
	if iterator.remaining == 0 {
		iterator.finish()
	}
	return iterator, nil
}

// OnEnd registers a listener which fires when this iterator runs out of Partitions
func (pi *parquetPartitionIterator) OnEnd(onEnd func()) {
	pi.lock.Lock()
	defer pi.lock.Unlock()
	pi.endListeners = append(pi.endListeners, onEnd)
}

// HasNextPartition returns true iff this PartitionIterator can produce another Partition
func (pi *parquetPartitionIterator) HasNextPartition() bool {
	pi.lock.Lock()
	defer pi.lock.Unlock()
	return pi.remaining > 0
}

// finish releases column readers and notifies end listeners. Callers must hold the lock.
func (pi *parquetPartitionIterator) finish() {
	pi.remaining = 0
	for _, c := range pi.cursors {
		c.pages.Close()
	}
	pi.cursors = nil
	for _, l := range pi.endListeners {
		l()
	}
	pi.endListeners = []func(){}
}

// NextPartition returns the next Partition if one is available, or an error
func (pi *parquetPartitionIterator) NextPartition() (skyshade.Partition, error) {
	pi.lock.Lock()
	defer pi.lock.Unlock()
	if pi.remaining <= 0 {
		return nil, errors.NoMorePartitionsError{}
	}
	n := pi.partitionSize
	if int64(n) > pi.remaining {
		n = int(pi.remaining)
	}
	columns := make([][]pq.Value, len(pi.cursors))
	for i, c := range pi.cursors {
		values, err := c.read(n)
		if err != nil {
			pi.finish()
			return nil, err
		}
		if len(values) != n {
			pi.finish()
			return nil, fmt.Errorf("column %s ended after %d of %d expected values", c.name, len(values), n)
		}
		columns[i] = values
	}
	part := datasource.CreateBuildablePartition(n, pi.schema)
	tempRow := datasource.CreateTempRow()
	for r := 0; r < n; r++ {
		row, err := part.AppendEmptyRowData(tempRow)
		if err != nil {
			pi.finish()
			return nil, err
		}
		for i, c := range pi.cursors {
			if err := setValue(row, c.name, c.colType, columns[i][r]); err != nil {
				pi.finish()
				return nil, err
			}
		}
	}
	pi.remaining -= int64(n)
	if pi.remaining == 0 {
		pi.finish()
	}
	return part, nil
}
