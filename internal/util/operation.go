package util

import (
	"fmt"

	"github.com/go-sif/skyshade"
)

// SafeFilterOperation wraps a FilterOperation such that panics are recovered and nice error messages are constructed
func SafeFilterOperation(filterOp skyshade.FilterOperation) (safeFilterOp skyshade.FilterOperation) {
	return func(row skyshade.Row) (shouldKeep bool, err error) {
		defer func() {
			if r := recover(); r != nil {
				if anErr, ok := r.(error); ok {
					err = fmt.Errorf("Filter Panic: %w\nRow: %s\n%s", anErr, row.ToString(), GetTrace())
				} else {
					err = fmt.Errorf("Filter Panic: %v\nRow: %s\n%s", r, row.ToString(), GetTrace())
				}
			} else if err != nil {
				err = fmt.Errorf("Filter Error: %w\nRow: %s", err, row.ToString())
			}
		}()
		shouldKeep, err = filterOp(row)
		return
	}
}

// SafeAccumulate wraps an Accumulator's Accumulate method such that panics are recovered and nice error messages are constructed
func SafeAccumulate(acc skyshade.Accumulator) (safeAccumulate skyshade.MapOperation) {
	return func(row skyshade.Row) (err error) {
		defer func() {
			if r := recover(); r != nil {
				if anErr, ok := r.(error); ok {
					err = fmt.Errorf("Accumulate Panic (%s): %w\nRow: %s\n%s", acc.Name(), anErr, row.ToString(), GetTrace())
				} else {
					err = fmt.Errorf("Accumulate Panic (%s): %v\nRow: %s\n%s", acc.Name(), r, row.ToString(), GetTrace())
				}
			} else if err != nil {
				err = fmt.Errorf("Accumulate Error (%s): %w\nRow: %s", acc.Name(), err, row.ToString())
			}
		}()
		err = acc.Accumulate(row)
		return
	}
}
