package memory

import "github.com/go-sif/skyshade"

// PartitionMap is an iterator producing a sequence of PartitionLoaders
type PartitionMap struct {
	idx    int
	source *DataSource
}

// HasNext returns true iff there is another PartitionLoader remaining
func (pm *PartitionMap) HasNext() bool {
	return pm.idx < len(pm.source.data)
}

// Next returns the next PartitionLoader for a buffer
func (pm *PartitionMap) Next() skyshade.PartitionLoader {
	result := &PartitionLoader{idx: pm.idx, data: pm.source.data[pm.idx], parser: pm.source.parser}
	pm.idx++
	return result
}
