package skyshade

import "io"

// PartitionLoader is a description of how to load specific Partitions of data from a particular DataSource.
// DataSources implement this interface to implement data-loading logic. PartitionLoaders are assigned round-robin
// to workers, so an assumption is made that each PartitionLoader will produce a roughly equal number of Partitions.
// A PartitionLoader must be self-describing: workers rebuild it from Kind() and GobEncode() alone.
type PartitionLoader interface {
	Kind() string                                  // Kind identifies the registered loader type
	ToString() string                              // for logging
	Load(schema Schema) (PartitionIterator, error) // how to actually load data, projected onto the given Schema
	GobEncode() ([]byte, error)                    // how to serialize this PartitionLoader
	GobDecode([]byte) error                        // how to deserialize this PartitionLoader
}

// PartitionMap is an interface describing an iterator for PartitionLoaders.
// Returned by DataSource.Analyze(), a Coordinator will iterate through
// PartitionLoaders and assign them to Workers.
type PartitionMap interface {
	HasNext() bool
	Next() PartitionLoader
}

// DataSource is a source of data which will be loaded and persisted according to a DataFrame.
// It represents information about how to load data from the source as Partitions.
type DataSource interface {
	Analyze() (PartitionMap, error)
	String() string
}

// DataSourceParser is a parser for row-oriented text data (lines of JSON, delimited values...)
type DataSourceParser interface {
	Name() string                                                                      // Name identifies the registered parser type
	PartitionSize() int                                                                // PartitionSize returns the maximum size in rows of Partitions produced by this Parser
	Parse(r io.Reader, schema Schema, onIteratorEnd func()) (PartitionIterator, error) // Parse produces Partitions from a stream of data
	GobEncode() ([]byte, error)                                                        // GobEncode serializes the configuration of this Parser
	GobDecode([]byte) error                                                            // GobDecode deserializes the configuration of this Parser
}
