package parquet

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"log"
	"os"

	"github.com/go-sif/skyshade"
	pq "github.com/segmentio/parquet-go"
)

// PartitionLoader is capable of loading partitions of data from a single row group of a parquet file
type PartitionLoader struct {
	path          string
	rowGroup      int
	numRows       int64
	partitionSize int
}

type serializedLoader struct {
	Path          string
	RowGroup      int
	NumRows       int64
	PartitionSize int
}

// Kind identifies this PartitionLoader's type
func (pl *PartitionLoader) Kind() string {
	return Kind
}

// ToString returns a string representation of this PartitionLoader
func (pl *PartitionLoader) ToString() string {
	return fmt.Sprintf("Parquet loader file: %s row group: %d (%d rows)", pl.path, pl.rowGroup, pl.numRows)
}

// NumRows returns the number of rows in this PartitionLoader's row group
func (pl *PartitionLoader) NumRows() int64 {
	return pl.numRows
}

// Load reads the projected columns of a row group as Partitions
func (pl *PartitionLoader) Load(schema skyshade.Schema) (skyshade.PartitionIterator, error) {
	osFile, err := os.Open(pl.path)
	if err != nil {
		return nil, err
	}
	info, err := osFile.Stat()
	if err != nil {
		osFile.Close()
		return nil, err
	}
	f, err := pq.OpenFile(osFile, info.Size())
	if err != nil {
		osFile.Close()
		return nil, fmt.Errorf("unable to open parquet file %s: %w", pl.path, err)
	}
	return LoadRowGroup(f, pl.rowGroup, schema, pl.partitionSize, func() {
		if err := osFile.Close(); err != nil {
			log.Printf("WARNING: couldn't close file %s: %v", pl.path, err)
		}
	})
}

// GobEncode serializes a PartitionLoader
func (pl *PartitionLoader) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(serializedLoader{
		Path:          pl.path,
		RowGroup:      pl.rowGroup,
		NumRows:       pl.numRows,
		PartitionSize: pl.partitionSize,
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
	pl.path = s.Path
	pl.rowGroup = s.RowGroup
	pl.numRows = s.NumRows
	pl.partitionSize = s.PartitionSize
	return nil
}
