package objectstore

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"log"

	"github.com/go-sif/skyshade"
	"github.com/go-sif/skyshade/datasource/parquet"
)

// PartitionLoader is capable of loading partitions of data from a single row group of a parquet object
type PartitionLoader struct {
	cfg           Config
	bucket        string
	key           string
	rowGroup      int
	numRows       int64
	partitionSize int
}

type serializedLoader struct {
	Config        Config
	Bucket        string
	Key           string
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
	return fmt.Sprintf("Object loader: %s://%s/%s row group: %d (%d rows)", Scheme, pl.bucket, pl.key, pl.rowGroup, pl.numRows)
}

// Load reads the projected columns of a row group as Partitions
func (pl *PartitionLoader) Load(schema skyshade.Schema) (skyshade.PartitionIterator, error) {
	ctx := context.Background()
	mc, err := NewClient(pl.cfg)
	if err != nil {
		return nil, err
	}
	f, obj, err := openObject(ctx, mc, pl.bucket, pl.key)
	if err != nil {
		return nil, err
	}
	return parquet.LoadRowGroup(f, pl.rowGroup, schema, pl.partitionSize, func() {
		if err := obj.Close(); err != nil {
			log.Printf("WARNING: couldn't close object %s: %v", pl.key, err)
		}
	})
}

// GobEncode serializes a PartitionLoader
func (pl *PartitionLoader) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(serializedLoader{
		Config:        pl.cfg,
		Bucket:        pl.bucket,
		Key:           pl.key,
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
	pl.cfg = s.Config
	pl.bucket = s.Bucket
	pl.key = s.Key
	pl.rowGroup = s.RowGroup
	pl.numRows = s.NumRows
	pl.partitionSize = s.PartitionSize
	return nil
}
