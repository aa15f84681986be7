package jsonl

import (
	"bufio"
	"fmt"
	"strings"
	"sync"

	"github.com/go-sif/skyshade"
	"github.com/go-sif/skyshade/datasource"
	errors "github.com/go-sif/skyshade/errors"
	"github.com/hashicorp/go-multierror"
	"github.com/tidwall/gjson"
)

type jsonlFilePartitionIterator struct {
	parser       *Parser
	scanner      *bufio.Scanner
	hasNext      bool
	lineNum      int
	schema       skyshade.Schema
	lock         sync.Mutex
	endListeners []func()
}

// OnEnd registers a listener which fires when this iterator runs out of Partitions
func (jsonli *jsonlFilePartitionIterator) OnEnd(onEnd func()) {
	jsonli.lock.Lock()
	defer jsonli.lock.Unlock()
	jsonli.endListeners = append(jsonli.endListeners, onEnd)
}

// HasNextPartition returns true iff this PartitionIterator can produce another Partition
func (jsonli *jsonlFilePartitionIterator) HasNextPartition() bool {
	jsonli.lock.Lock()
	defer jsonli.lock.Unlock()
	return jsonli.hasNext
}

func (jsonli *jsonlFilePartitionIterator) end() {
	jsonli.hasNext = false
	for _, l := range jsonli.endListeners {
		l()
	}
	jsonli.endListeners = []func(){}
}

// NextPartition returns the next Partition if one is available, or an error. Rows which
// cannot be parsed are discarded, and reported alongside the Partition as a *multierror.Error.
func (jsonli *jsonlFilePartitionIterator) NextPartition() (skyshade.Partition, error) {
	jsonli.lock.Lock()
	defer jsonli.lock.Unlock()
	if !jsonli.hasNext {
		return nil, errors.NoMorePartitionsError{}
	}
	colNames := jsonli.schema.ColumnNames()
	colTypes := jsonli.schema.ColumnTypes()
	part := datasource.CreateBuildablePartition(jsonli.parser.PartitionSize(), jsonli.schema)
	var rowErrors *multierror.Error
	// parse lines
	tempRow := datasource.CreateTempRow()
	for part.GetNumRows() < part.GetMaxRows() {
		// grab another line from the file
		if !jsonli.scanner.Scan() {
			if err := jsonli.scanner.Err(); err != nil {
				jsonli.end()
				return nil, err
			}
			jsonli.end()
			break
		}
		jsonli.lineNum++
		rowString := jsonli.scanner.Text()
		if len(strings.TrimSpace(rowString)) == 0 {
			continue
		}
		// create a new row to place values into
		row, err := part.AppendEmptyRowData(tempRow)
		if err != nil {
			return nil, err
		}
		if err = parseJSONRow(colNames, colTypes, rowString, row); err != nil {
			part.TruncateLastRow()
			rowErrors = multierror.Append(rowErrors, fmt.Errorf("line %d: %w", jsonli.lineNum, err))
		}
	}
	return part, rowErrors.ErrorOrNil()
}

// parseJSONRow parses a line of JSON into a Row, according to a schema
func parseJSONRow(colNames []string, colTypes []skyshade.ColumnType, rowString string, row skyshade.Row) error {
	if !gjson.Valid(rowString) {
		return fmt.Errorf("invalid JSON: %s", rowString)
	}
	parsed := gjson.Parse(rowString)
	for i, colName := range colNames {
		if err := parseValue(parsed.Get(colName), colName, colTypes[i], row); err != nil {
			return err
		}
	}
	return nil
}

func parseValue(val gjson.Result, colName string, colType skyshade.ColumnType, row skyshade.Row) error {
	if !val.Exists() || val.Type == gjson.Null {
		return row.SetNil(colName)
	}
	switch colType.(type) {
	case *skyshade.BoolColumnType:
		if val.Type != gjson.True && val.Type != gjson.False {
			return fmt.Errorf("Column %s was not a boolean. Was: %s", colName, val.Raw)
		}
		return row.SetBool(colName, val.Bool())
	}
	if val.Type != gjson.Number {
		return fmt.Errorf("Column %s was not a number. Was: %s", colName, val.Raw)
	}
	switch colType.(type) {
	case *skyshade.Uint8ColumnType:
		return row.SetUint8(colName, uint8(val.Uint()))
	case *skyshade.Int32ColumnType:
		return row.SetInt32(colName, int32(val.Int()))
	case *skyshade.Int64ColumnType:
		return row.SetInt64(colName, val.Int())
	case *skyshade.Float32ColumnType:
		return row.SetFloat32(colName, float32(val.Float()))
	case *skyshade.Float64ColumnType:
		return row.SetFloat64(colName, val.Float())
	default:
		return fmt.Errorf("JSONL parsing does not support column type %T", colType)
	}
}
