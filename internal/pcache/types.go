package pcache

import (
	"github.com/go-sif/skyshade"
)

// PartitionCache is a cache for Partitions. Partitions are never silently dropped:
// those evicted from memory are compressed, and then swapped to disk.
type PartitionCache interface {
	Destroy()
	Add(key string, value skyshade.Partition) error
	Get(key string) (value skyshade.Partition, err error) // returns the partition if present, without removing it. Returns an error otherwise.
	Remove(key string)
	Keys() []string  // Keys returns the keys of all cached Partitions, in insertion order
	Len() int        // Len returns the number of cached Partitions across all tiers
	CurrentSize() int // CurrentSize returns the number of Partitions held in memory (compressed or not)
	Resize(size int)  // Resize changes the number of Partitions held in memory, evicting as necessary
}
