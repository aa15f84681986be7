package file

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"log"
	"os"

	"github.com/go-sif/skyshade"
	"github.com/go-sif/skyshade/datasource"
)

// PartitionLoader is capable of loading partitions of data from a file
type PartitionLoader struct {
	path   string
	parser skyshade.DataSourceParser
}

type serializedLoader struct {
	Path       string
	Parser     string
	ParserConf []byte
}

// Kind identifies this PartitionLoader's type
func (pl *PartitionLoader) Kind() string {
	return Kind
}

// ToString returns a string representation of this PartitionLoader
func (pl *PartitionLoader) ToString() string {
	return fmt.Sprintf("File loader filename: %s", pl.path)
}

// Load is capable of loading partitions of data from a file
func (pl *PartitionLoader) Load(schema skyshade.Schema) (skyshade.PartitionIterator, error) {
	f, err := os.Open(pl.path)
	if err != nil {
		return nil, err
	}
	pi, err := pl.parser.Parse(f, schema, func() {
		err := f.Close()
		if err != nil {
			log.Printf("WARNING: couldn't close file %v", err)
		}
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	return pi, nil
}

// GobEncode serializes a PartitionLoader, along with the configuration of its parser
func (pl *PartitionLoader) GobEncode() ([]byte, error) {
	conf, err := pl.parser.GobEncode()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = gob.NewEncoder(&buf).Encode(serializedLoader{
		Path:       pl.path,
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
	pl.path = s.Path
	pl.parser = parser
	return nil
}
