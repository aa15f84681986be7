package dsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"sync"

	"github.com/go-sif/skyshade"
	"github.com/go-sif/skyshade/datasource"
	errors "github.com/go-sif/skyshade/errors"
	"github.com/hashicorp/go-multierror"
)

type dsvFilePartitionIterator struct {
	parser       *Parser
	reader       *csv.Reader
	hasNext      bool
	schema       skyshade.Schema
	colNames     []string
	colTypes     []skyshade.ColumnType // nil for file columns which are not part of the Schema
	lock         sync.Mutex
	endListeners []func()
}

// OnEnd registers a listener which fires when this iterator runs out of Partitions
func (dsvi *dsvFilePartitionIterator) OnEnd(onEnd func()) {
	dsvi.lock.Lock()
	defer dsvi.lock.Unlock()
	dsvi.endListeners = append(dsvi.endListeners, onEnd)
}

// HasNextPartition returns true iff this PartitionIterator can produce another Partition
func (dsvi *dsvFilePartitionIterator) HasNextPartition() bool {
	dsvi.lock.Lock()
	defer dsvi.lock.Unlock()
	return dsvi.hasNext
}

func (dsvi *dsvFilePartitionIterator) end() {
	dsvi.hasNext = false
	for _, l := range dsvi.endListeners {
		l()
	}
	dsvi.endListeners = []func(){}
}

// NextPartition returns the next Partition if one is available, or an error. Rows which
// cannot be parsed are discarded, and reported alongside the Partition as a *multierror.Error.
func (dsvi *dsvFilePartitionIterator) NextPartition() (skyshade.Partition, error) {
	dsvi.lock.Lock()
	defer dsvi.lock.Unlock()
	if !dsvi.hasNext {
		return nil, errors.NoMorePartitionsError{}
	}
	part := datasource.CreateBuildablePartition(dsvi.parser.PartitionSize(), dsvi.schema)
	var rowErrors *multierror.Error
	// parse lines
	tempRow := datasource.CreateTempRow()
	for part.GetNumRows() < part.GetMaxRows() {
		// grab another line from the file
		rowStrings, err := dsvi.reader.Read()
		if err == io.EOF {
			dsvi.end()
			break
		} else if parseErr, ok := err.(*csv.ParseError); ok && parseErr.Err == csv.ErrFieldCount {
			rowErrors = multierror.Append(rowErrors, err)
			continue
		} else if err != nil {
			dsvi.end()
			return nil, err
		}
		// create a new row to place values into
		row, err := part.AppendEmptyRowData(tempRow)
		if err != nil {
			return nil, err
		}
		if err = scanRow(dsvi.parser.conf, dsvi.colNames, dsvi.colTypes, rowStrings, row); err != nil {
			part.TruncateLastRow()
			line, _ := dsvi.reader.FieldPos(0)
			rowErrors = multierror.Append(rowErrors, fmt.Errorf("line %d: %w", line, err))
		}
	}
	return part, rowErrors.ErrorOrNil()
}
