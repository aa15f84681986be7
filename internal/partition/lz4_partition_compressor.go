package partition

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-sif/skyshade"
	"github.com/pierrec/lz4"
)

// LZ4PartitionSerializer is a partition compressor which uses the lz4 compression algorithm.
// It is not safe for concurrent use.
type LZ4PartitionSerializer struct {
	compressor         *lz4.Writer
	decompressor       *lz4.Reader
	reusableReadBuffer *bytes.Buffer
}

// NewLZ4PartitionSerializer instantiates a new LZ4PartitionSerializer
func NewLZ4PartitionSerializer() *LZ4PartitionSerializer {
	return &LZ4PartitionSerializer{
		compressor:         lz4.NewWriter(new(bytes.Buffer)),
		decompressor:       lz4.NewReader(new(bytes.Buffer)),
		reusableReadBuffer: new(bytes.Buffer),
	}
}

// Compress serializes and compresses partition data to a write stream
func (lz4pc *LZ4PartitionSerializer) Compress(w io.Writer, part skyshade.Partition) error {
	buf, err := part.ToBytes()
	if err != nil {
		return err
	}
	lz4pc.compressor.Reset(w)
	if _, err = lz4pc.compressor.Write(buf); err != nil {
		return fmt.Errorf("unable to compress partition %s: %w", part.ID(), err)
	}
	return lz4pc.compressor.Close()
}

// Decompress decompresses and deserializes partition data from a read stream
func (lz4pc *LZ4PartitionSerializer) Decompress(r io.Reader, schema skyshade.Schema) (skyshade.BuildablePartition, error) {
	lz4pc.decompressor.Reset(r)
	lz4pc.reusableReadBuffer.Reset()
	if _, err := lz4pc.reusableReadBuffer.ReadFrom(lz4pc.decompressor); err != nil {
		return nil, fmt.Errorf("unable to decompress partition data: %w", err)
	}
	return FromBytes(lz4pc.reusableReadBuffer.Bytes(), schema)
}
