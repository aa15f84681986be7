package parquet

import "github.com/go-sif/skyshade"

// PartitionMap is an iterator producing a sequence of PartitionLoaders, one per row group
type PartitionMap struct {
	loaders []*PartitionLoader
}

// HasNext returns true iff there is another PartitionLoader remaining
func (pm *PartitionMap) HasNext() bool {
	return len(pm.loaders) > 0
}

// Next returns the next PartitionLoader for a row group
func (pm *PartitionMap) Next() skyshade.PartitionLoader {
	result := pm.loaders[0]
	pm.loaders = pm.loaders[1:]
	return result
}

// Len returns the number of PartitionLoaders remaining
func (pm *PartitionMap) Len() int {
	return len(pm.loaders)
}
