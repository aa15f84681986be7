package accumulators

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/go-sif/skyshade"
)

// Compose returns a new Composed Accumulator
func Compose(faccs ...skyshade.AccumulatorFactory) skyshade.AccumulatorFactory {
	return func() skyshade.Accumulator {
		accs := make([]skyshade.Accumulator, len(faccs))
		for i, f := range faccs {
			accs[i] = f()
		}
		return &Composed{accs: accs}
	}
}

// Composed composes other Accumulators
type Composed struct {
	accs []skyshade.Accumulator
}

type serializedComposed struct {
	Names []string
	Data  [][]byte
}

// Name returns the registered name of this Accumulator
func (c *Composed) Name() string {
	return "composed"
}

// GetResults returns the contained Accumulators, so that their results may be accessed
func (c *Composed) GetResults() []skyshade.Accumulator {
	return c.accs
}

// Accumulate adds a row to all contained Accumulators
func (c *Composed) Accumulate(row skyshade.Row) error {
	for _, a := range c.accs {
		err := a.Accumulate(row)
		if err != nil {
			return err
		}
	}
	return nil
}

// Merge merges another Composed Accumulator into this one, merging all contained Accumulators
func (c *Composed) Merge(o skyshade.Accumulator) error {
	compa, ok := o.(*Composed)
	if !ok {
		return fmt.Errorf("Incoming accumulator is not a Composed Accumulator")
	}
	if len(compa.accs) != len(c.accs) {
		return fmt.Errorf("Cannot merge Composed Accumulator of %d into one of %d", len(compa.accs), len(c.accs))
	}
	for i, a := range c.accs {
		err := a.Merge(compa.accs[i])
		if err != nil {
			return err
		}
	}
	return nil
}

// ToBytes serializes this Accumulator, along with the names of the contained Accumulators
func (c *Composed) ToBytes() ([]byte, error) {
	result := serializedComposed{
		Names: make([]string, len(c.accs)),
		Data:  make([][]byte, len(c.accs)),
	}
	for i, a := range c.accs {
		buff, err := a.ToBytes()
		if err != nil {
			return nil, err
		}
		result.Names[i] = a.Name()
		result.Data[i] = buff
	}
	buff := new(bytes.Buffer)
	e := gob.NewEncoder(buff)
	err := e.Encode(result)
	if err != nil {
		return nil, err
	}
	return buff.Bytes(), nil
}

// FromBytes produce a new Accumulator from serialized data. Contained Accumulators are rebuilt from the registry.
func (c *Composed) FromBytes(buff []byte) (skyshade.Accumulator, error) {
	var deser serializedComposed
	d := gob.NewDecoder(bytes.NewBuffer(buff))
	err := d.Decode(&deser)
	if err != nil {
		return nil, err
	}
	if len(deser.Names) != len(deser.Data) {
		return nil, fmt.Errorf("serialized Composed Accumulator is malformed")
	}
	newAcs := make([]skyshade.Accumulator, len(deser.Names))
	for i, name := range deser.Names {
		a, err := Instantiate(name, deser.Data[i])
		if err != nil {
			return nil, err
		}
		newAcs[i] = a
	}
	return &Composed{accs: newAcs}, nil
}
