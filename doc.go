// Package skyshade contains the core components of skyshade, a cluster-backed pipeline for
// rendering density maps of very large columnar datasets. This root package defines the types
// which are employed during the regular use of the framework (DataFrames, Rows, Schemas,
// Accumulators), as well as in its extension (DataSources, Parsers, PartitionLoaders).
package skyshade
