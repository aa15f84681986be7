package dataframe

import (
	"sync"

	"github.com/go-sif/skyshade"
	errors "github.com/go-sif/skyshade/errors"
)

type emptyPartitionIterator struct {
	lock         sync.Mutex
	endListeners []func()
}

// CreateEmptyPartitionIterator produces an empty PartitionIterator
func CreateEmptyPartitionIterator() skyshade.PartitionIterator {
	return &emptyPartitionIterator{
		endListeners: []func(){},
	}
}

// OnEnd registers a listener which fires when this iterator runs out of Partitions
func (epi *emptyPartitionIterator) OnEnd(onEnd func()) {
	epi.lock.Lock()
	defer epi.lock.Unlock()
	epi.endListeners = append(epi.endListeners, onEnd)
}

// HasNextPartition returns true iff this PartitionIterator can produce another Partition
func (epi *emptyPartitionIterator) HasNextPartition() bool {
	epi.lock.Lock()
	defer epi.lock.Unlock()
	for _, l := range epi.endListeners {
		l()
	}
	epi.endListeners = []func(){}
	return false
}

// NextPartition returns the next Partition if one is available, or an error
func (epi *emptyPartitionIterator) NextPartition() (skyshade.Partition, error) {
	return nil, errors.NoMorePartitionsError{}
}
