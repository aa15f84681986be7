package accumulators

import (
	"fmt"
	"math"

	"github.com/go-sif/skyshade"
)

// numericValue fetches a numeric column as a float64. ok is false when the value is nil or NaN.
func numericValue(row skyshade.Row, colName string) (v float64, ok bool, err error) {
	if row.IsNil(colName) {
		// IsNil is also false for missing columns, which the getters below report
		if _, err = row.Schema().GetOffset(colName); err != nil {
			return 0, false, err
		}
		return 0, false, nil
	}
	raw, err := row.Get(colName)
	if err != nil {
		return 0, false, err
	}
	switch tv := raw.(type) {
	case float64:
		v = tv
	case float32:
		v = float64(tv)
	case int64:
		v = float64(tv)
	case int32:
		v = float64(tv)
	case uint8:
		v = float64(tv)
	default:
		return 0, false, fmt.Errorf("column %s is not numeric", colName)
	}
	if math.IsNaN(v) {
		return 0, false, nil
	}
	return v, true, nil
}
