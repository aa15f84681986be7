package parquet

import (
	"fmt"
	"math"

	"github.com/go-sif/skyshade"
	pq "github.com/segmentio/parquet-go"
)

// columnTypeFor maps a parquet physical type to the ColumnType used to hold it
func columnTypeFor(kind pq.Kind) (skyshade.ColumnType, error) {
	switch kind {
	case pq.Boolean:
		return &skyshade.BoolColumnType{}, nil
	case pq.Int32:
		return &skyshade.Int32ColumnType{}, nil
	case pq.Int64:
		return &skyshade.Int64ColumnType{}, nil
	case pq.Float:
		return &skyshade.Float32ColumnType{}, nil
	case pq.Double:
		return &skyshade.Float64ColumnType{}, nil
	default:
		return nil, fmt.Errorf("parquet type %s is not supported", kind)
	}
}

func numeric(colName string, v pq.Value) (float64, error) {
	switch v.Kind() {
	case pq.Double:
		return v.Double(), nil
	case pq.Float:
		return float64(v.Float()), nil
	case pq.Int32:
		return float64(v.Int32()), nil
	case pq.Int64:
		return float64(v.Int64()), nil
	default:
		return 0, fmt.Errorf("column %s has non-numeric parquet type %s", colName, v.Kind())
	}
}

func integral(colName string, v pq.Value) (int64, error) {
	switch v.Kind() {
	case pq.Int32:
		return int64(v.Int32()), nil
	case pq.Int64:
		return v.Int64(), nil
	default:
		return 0, fmt.Errorf("column %s has non-integer parquet type %s", colName, v.Kind())
	}
}

// setValue places a parquet value into a Row, widening numeric values as needed.
// Null values set the Row's nil flag for the column.
func setValue(row skyshade.Row, colName string, colType skyshade.ColumnType, v pq.Value) error {
	if v.IsNull() {
		return row.SetNil(colName)
	}
	switch colType.(type) {
	case *skyshade.Float64ColumnType:
		f, err := numeric(colName, v)
		if err != nil {
			return err
		}
		return row.SetFloat64(colName, f)
	case *skyshade.Float32ColumnType:
		f, err := numeric(colName, v)
		if err != nil {
			return err
		}
		return row.SetFloat32(colName, float32(f))
	case *skyshade.Int64ColumnType:
		i, err := integral(colName, v)
		if err != nil {
			return err
		}
		return row.SetInt64(colName, i)
	case *skyshade.Int32ColumnType:
		i, err := integral(colName, v)
		if err != nil {
			return err
		}
		if i < math.MinInt32 || i > math.MaxInt32 {
			return fmt.Errorf("column %s value %d overflows int32", colName, i)
		}
		return row.SetInt32(colName, int32(i))
	case *skyshade.Uint8ColumnType:
		i, err := integral(colName, v)
		if err != nil {
			return err
		}
		if i < 0 || i > math.MaxUint8 {
			return fmt.Errorf("column %s value %d overflows uint8", colName, i)
		}
		return row.SetUint8(colName, uint8(i))
	case *skyshade.BoolColumnType:
		if v.Kind() != pq.Boolean {
			return fmt.Errorf("column %s has non-boolean parquet type %s", colName, v.Kind())
		}
		return row.SetBool(colName, v.Boolean())
	default:
		return fmt.Errorf("parquet loading does not support column type %T", colType)
	}
}
