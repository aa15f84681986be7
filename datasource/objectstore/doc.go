// Package objectstore provides a DataSource which reads parquet objects from an
// S3-compatible object store (s3://bucket/prefix). Credentials are never serialized
// with PartitionLoaders: each worker reads them from its own environment.
package objectstore
