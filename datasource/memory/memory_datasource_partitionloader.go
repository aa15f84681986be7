package memory

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/go-sif/skyshade"
	"github.com/go-sif/skyshade/datasource"
)

// PartitionLoader is capable of loading partitions of data from a buffer
type PartitionLoader struct {
	idx    int
	data   []byte
	parser skyshade.DataSourceParser
}

type serializedLoader struct {
	Idx        int
	Data       []byte
	Parser     string
	ParserConf []byte
}

// Kind identifies this PartitionLoader's type
func (pl *PartitionLoader) Kind() string {
	return Kind
}

// ToString returns a string representation of this PartitionLoader
func (pl *PartitionLoader) ToString() string {
	return fmt.Sprintf("Memory loader index: %d (%d bytes)", pl.idx, len(pl.data))
}

// Load is capable of loading partitions of data from a buffer
func (pl *PartitionLoader) Load(schema skyshade.Schema) (skyshade.PartitionIterator, error) {
	return pl.parser.Parse(bytes.NewReader(pl.data), schema, nil)
}

// GobEncode serializes a PartitionLoader, along with its data and the configuration of its parser
func (pl *PartitionLoader) GobEncode() ([]byte, error) {
	conf, err := pl.parser.GobEncode()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = gob.NewEncoder(&buf).Encode(serializedLoader{
		Idx:        pl.idx,
		Data:       pl.data,
		Parser:     pl.parser.Name(),
		ParserConf: conf,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode deserializes a PartitionLoader
func (pl *PartitionLoader) GobDecode(in []byte) error {
	var s serializedLoader
	if err := gob.NewDecoder(bytes.NewReader(in)).Decode(&s); err != nil {
		return err
	}
	parser, err := datasource.DeserializeParser(s.Parser, s.ParserConf)
	if err != nil {
		return err
	}
	pl.idx = s.Idx
	pl.data = s.Data
	pl.parser = parser
	return nil
}
