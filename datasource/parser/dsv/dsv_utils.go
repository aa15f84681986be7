package dsv

import (
	"fmt"
	"strconv"

	"github.com/go-sif/skyshade"
)

// Parses a slice of strings into a Row, according to a schema
func scanRow(conf *ParserConf, names []string, colTypes []skyshade.ColumnType, rowStrings []string, row skyshade.Row) error {
	for i := 0; i < len(rowStrings); i++ {
		if colTypes[i] == nil {
			continue
		}
		colVal := rowStrings[i]
		// check for a nil value
		if len(colVal) == 0 || colVal == conf.NilValue {
			if err := row.SetNil(names[i]); err != nil {
				return err
			}
			continue
		}
		// otherwise, parse type
		var err error
		switch colTypes[i].(type) {
		case *skyshade.BoolColumnType:
			var bval bool
			if bval, err = strconv.ParseBool(colVal); err == nil {
				err = row.SetBool(names[i], bval)
			}
		case *skyshade.Uint8ColumnType:
			var ival uint64
			if ival, err = strconv.ParseUint(colVal, 10, 8); err == nil {
				err = row.SetUint8(names[i], uint8(ival))
			}
		case *skyshade.Int32ColumnType:
			var ival int64
			if ival, err = strconv.ParseInt(colVal, 10, 32); err == nil {
				err = row.SetInt32(names[i], int32(ival))
			}
		case *skyshade.Int64ColumnType:
			var ival int64
			if ival, err = strconv.ParseInt(colVal, 10, 64); err == nil {
				err = row.SetInt64(names[i], ival)
			}
		case *skyshade.Float32ColumnType:
			var fval float64
			if fval, err = strconv.ParseFloat(colVal, 32); err == nil {
				err = row.SetFloat32(names[i], float32(fval))
			}
		case *skyshade.Float64ColumnType:
			var fval float64
			if fval, err = strconv.ParseFloat(colVal, 64); err == nil {
				err = row.SetFloat64(names[i], fval)
			}
		default:
			return fmt.Errorf("DSV parsing does not support column type %T", colTypes[i])
		}
		if err != nil {
			return fmt.Errorf("column %s: %w", names[i], err)
		}
	}
	return nil
}
