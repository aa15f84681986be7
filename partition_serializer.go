package skyshade

import "io"

// A PartitionSerializer serializes and compresses partition data (and the inverse),
// for transfer between nodes
type PartitionSerializer interface {
	Compress(w io.Writer, part Partition) error                        // Compress serializes and compresses partition data to a write stream
	Decompress(r io.Reader, schema Schema) (BuildablePartition, error) // Decompress decompresses and deserializes partition data from a read stream
}
