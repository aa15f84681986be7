package skyshade

import "time"

// RuntimeStatistics facilitates the retrieval of statistics about a running skyshade cluster
type RuntimeStatistics interface {
	// GetStartTime returns the start time of the cluster client
	GetStartTime() time.Time
	// GetRuntime returns the running time of the cluster client
	GetRuntime() time.Duration
	// GetNumRowsPersisted returns the number of Rows which have been persisted so far
	GetNumRowsPersisted() int64
	// GetNumPartitionsPersisted returns the number of Partitions which have been persisted so far
	GetNumPartitionsPersisted() int64
	// GetNumAccumulations returns the number of accumulations which have completed
	GetNumAccumulations() int64
	// GetCurrentLoadTime returns a rolling average of PartitionLoader processing time
	GetCurrentLoadTime() time.Duration
	// GetPersistRuntimes returns the most recent persist runtimes
	GetPersistRuntimes() []time.Duration
	// GetAccumulateRuntimes returns the most recent accumulation runtimes
	GetAccumulateRuntimes() []time.Duration
}
