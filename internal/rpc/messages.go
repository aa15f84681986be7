package rpc

// MRegisterRequest is sent by a worker to join a cluster
type MRegisterRequest struct {
	Id   string
	Port int32
}

// MRegisterResponse acknowledges a worker registration
type MRegisterResponse struct {
	Time int64
}

// MWorkerDescriptor describes a registered worker
type MWorkerDescriptor struct {
	Id   string
	Host string
	Port int32
}

// MFilter is the wire form of a load-time range filter
type MFilter struct {
	Column string
	Min    float64
	Max    float64
}

// MAssignPartitionRequest asks a worker to load a PartitionLoader's partitions into a persisted dataset
type MAssignPartitionRequest struct {
	DatasetId string
	Kind      string // registered kind of the PartitionLoader
	Loader    []byte // gob-encoded PartitionLoader
	Schema    []byte // serialized projected Schema
	Filters   []MFilter
	DropNil   bool
}

// MAssignPartitionResponse reports the outcome of loading a PartitionLoader
type MAssignPartitionResponse struct {
	Rows       int64
	Partitions int32
	RowErrors  int32
}

// MAccumulateRequest asks a worker to run an Accumulator over a persisted dataset
type MAccumulateRequest struct {
	DatasetId   string
	Accumulator string // registered name of the Accumulator
	Config      []byte // serialized Accumulator prototype
}

// MAccumulatorChunk is a portion of a serialized, compressed Accumulator
type MAccumulatorChunk struct {
	Data           []byte
	TotalSizeBytes int32
	Checksum       uint64 // xxhash of the complete compressed payload, sent with the first chunk
}

// MHeadRequest asks a worker for the first N rows of a persisted dataset
type MHeadRequest struct {
	DatasetId string
	N         int32
}

// MPartitionChunk is a portion of a serialized, compressed Partition
type MPartitionChunk struct {
	PartitionId string
	Data        []byte
	Last        bool // Last is true for the final chunk of a Partition
}

// MReleaseRequest asks a worker to drop a persisted dataset
type MReleaseRequest struct {
	DatasetId string
}

// MReleaseResponse reports how many partitions were dropped
type MReleaseResponse struct {
	Partitions int32
}

// MStopRequest asks a node to stop
type MStopRequest struct {
	Graceful bool
}

// MStopResponse acknowledges a stop request
type MStopResponse struct {
	Time int64
}

// MLogMsg is a log message forwarded from a worker to the coordinator
type MLogMsg struct {
	Level   int32
	Source  string
	Message string
}

// MLogMsgAck acknowledges a stream of log messages
type MLogMsgAck struct {
	Time  int64
	Count int32
}

// MStatisticsRequest asks a worker for its statistics
type MStatisticsRequest struct {
	IncludeDatasets bool
}

// MDatasetStatistics describes a dataset persisted on a worker
type MDatasetStatistics struct {
	Id                 string
	Rows               int64
	Partitions         int32
	InMemoryPartitions int32
}

// MStatisticsResponse carries worker statistics
type MStatisticsResponse struct {
	WorkerId            string
	StartTime           int64
	RowsPersisted       int64
	PartitionsPersisted int64
	Accumulations       int64
	RecentLoadRuntimes  []int64
	RecentAccumRuntimes []int64
	Datasets            []MDatasetStatistics
}
