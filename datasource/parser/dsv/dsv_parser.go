package dsv

import (
	"bytes"
	"encoding/csv"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/go-sif/skyshade"
	"github.com/go-sif/skyshade/datasource"
)

// Name identifies DSV parsers
const Name = "dsv"

func init() {
	datasource.RegisterParser(Name, func() skyshade.DataSourceParser {
		return &Parser{conf: &ParserConf{}}
	})
}

// ParserConf configures a DSV Parser
type ParserConf struct {
	PartitionSize int      // The maximum number of rows per Partition. Defaults to 128.
	HeaderLines   int      // The number of lines to ignore from the beginning of each file. Defaults to 0.
	Delimiter     rune     // The delimiter separating columns in the file. Defaults to ,
	Comment       rune     // Lines beginning with the comment character are ignored. Cannot be equal to the Delimiter. Defaults to no comment character.
	NilValue      string   // A special string which represents nil values in the dataset. Defaults to "" (the empty string).
	Columns       []string // The names of the columns in the file, in order. Columns absent from the Schema are skipped. Defaults to the Schema's columns.
}

// Parser produces partitions from DSV data
type Parser struct {
	conf *ParserConf
}

// CreateParser returns a new DSV Parser
func CreateParser(conf *ParserConf) *Parser {
	if conf.PartitionSize == 0 {
		conf.PartitionSize = 128
	}
	if conf.Delimiter == 0 {
		conf.Delimiter = ','
	}
	return &Parser{conf: conf}
}

// Name returns the registered name of this Parser
func (p *Parser) Name() string {
	return Name
}

// PartitionSize returns the maximum size in rows of Partitions produced by this Parser
func (p *Parser) PartitionSize() int {
	return p.conf.PartitionSize
}

// Parse parses DSV data to produce Partitions
func (p *Parser) Parse(r io.Reader, schema skyshade.Schema, onIteratorEnd func()) (skyshade.PartitionIterator, error) {
	fileColumns := p.conf.Columns
	if len(fileColumns) == 0 {
		fileColumns = schema.ColumnNames()
	}
	colTypes := make([]skyshade.ColumnType, len(fileColumns))
	for i, name := range fileColumns {
		if !schema.HasColumn(name) {
			continue
		}
		offset, err := schema.GetOffset(name)
		if err != nil {
			return nil, err
		}
		colTypes[i] = offset.Type()
	}
	for _, name := range schema.ColumnNames() {
		found := false
		for _, fileCol := range fileColumns {
			found = found || fileCol == name
		}
		if !found {
			return nil, fmt.Errorf("column %s is not present in DSV columns %v", name, fileColumns)
		}
	}

	// start parsing by creating a reader
	reader := csv.NewReader(r)
	reader.Comma = p.conf.Delimiter
	reader.Comment = p.conf.Comment
	reader.FieldsPerRecord = len(fileColumns)
	reader.ReuseRecord = true

	// ignore header lines, if configured to do so
	for i := 0; i < p.conf.HeaderLines; i++ {
		_, err := reader.Read()
		if err != nil {
			return nil, err
		}
	}

	iterator := &dsvFilePartitionIterator{
		parser:       p,
		reader:       reader,
		hasNext:      true,
		schema:       schema,
		colNames:     fileColumns,
		colTypes:     colTypes,
		endListeners: []func(){},
	}
	if onIteratorEnd != nil {
		iterator.OnEnd(onIteratorEnd)
	}
	return iterator, nil
}

// GobEncode serializes the configuration of this Parser
func (p *Parser) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(p.conf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode deserializes the configuration of this Parser
func (p *Parser) GobDecode(in []byte) error {
	conf := &ParserConf{}
	if err := gob.NewDecoder(bytes.NewReader(in)).Decode(conf); err != nil {
		return err
	}
	p.conf = CreateParser(conf).conf
	return nil
}
