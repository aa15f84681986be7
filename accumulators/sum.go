package accumulators

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/go-sif/skyshade"
)

// Adder returns a new Sum Accumulator
func Adder(colName string) skyshade.AccumulatorFactory {
	return func() skyshade.Accumulator {
		return &Sum{colName: colName}
	}
}

// Sum Sums the non-nil values of a numeric column
type Sum struct {
	colName string
	sum     float64
}

type serializedSum struct {
	Col string
	Sum float64
}

// Name returns the registered name of this Accumulator
func (a *Sum) Name() string {
	return "sum"
}

// GetSum returns the row Sum from this Accumulator
func (a *Sum) GetSum() float64 {
	return a.sum
}

// Accumulate adds a row to this Accumulator
func (a *Sum) Accumulate(row skyshade.Row) error {
	v, ok, err := numericValue(row, a.colName)
	if err != nil {
		return err
	}
	if ok {
		a.sum += v
	}
	return nil
}

// Merge merges another Accumulator into this one
func (a *Sum) Merge(o skyshade.Accumulator) error {
	ca, ok := o.(*Sum)
	if !ok {
		return fmt.Errorf("Incoming accumulator is not a Sum Accumulator")
	}
	if ca.colName != a.colName {
		return fmt.Errorf("Cannot merge Sum of column %s into Sum of column %s", ca.colName, a.colName)
	}
	a.sum += ca.sum
	return nil
}

// ToBytes serializes this Accumulator
func (a *Sum) ToBytes() ([]byte, error) {
	buff := new(bytes.Buffer)
	if err := gob.NewEncoder(buff).Encode(serializedSum{Col: a.colName, Sum: a.sum}); err != nil {
		return nil, err
	}
	return buff.Bytes(), nil
}

// FromBytes produce a new Accumulator from serialized data
func (a *Sum) FromBytes(buff []byte) (skyshade.Accumulator, error) {
	var s serializedSum
	if err := gob.NewDecoder(bytes.NewReader(buff)).Decode(&s); err != nil {
		return nil, err
	}
	return &Sum{colName: s.Col, sum: s.Sum}, nil
}
