package dataframe

import (
	"math"

	"github.com/go-sif/skyshade"
	iutil "github.com/go-sif/skyshade/internal/util"
)

// CompileFilter produces a FilterOperation which keeps only Rows satisfying every Filter,
// and which have no nil or NaN values when dropNil is true. A nil FilterOperation
// is returned when there is nothing to filter.
func CompileFilter(schema skyshade.Schema, filters []skyshade.Filter, dropNil bool) skyshade.FilterOperation {
	if len(filters) == 0 && !dropNil {
		return nil
	}
	colNames := schema.ColumnNames()
	return iutil.SafeFilterOperation(func(row skyshade.Row) (bool, error) {
		if dropNil {
			for _, name := range colNames {
				if row.IsNil(name) {
					return false, nil
				}
				v, ok, err := floatValue(row, name)
				if err != nil {
					return false, err
				}
				if ok && math.IsNaN(v) {
					return false, nil
				}
			}
		}
		for _, f := range filters {
			if row.IsNil(f.Column) {
				return false, nil
			}
			v, ok, err := floatValue(row, f.Column)
			if err != nil {
				return false, err
			}
			if !ok || math.IsNaN(v) || v < f.Min || v > f.Max {
				return false, nil
			}
		}
		return true, nil
	})
}

// floatValue fetches a column as a float64. ok is false for non-numeric columns.
func floatValue(row skyshade.Row, colName string) (float64, bool, error) {
	raw, err := row.Get(colName)
	if err != nil {
		return 0, false, err
	}
	switch v := raw.(type) {
	case float64:
		return v, true, nil
	case float32:
		return float64(v), true, nil
	case int64:
		return float64(v), true, nil
	case int32:
		return float64(v), true, nil
	case uint8:
		return float64(v), true, nil
	default:
		return 0, false, nil
	}
}
