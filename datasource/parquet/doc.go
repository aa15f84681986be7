// Package parquet provides a DataSource which reads a projection of columns from a
// directory (or glob) of parquet part files. Each row group of each file becomes a
// separate PartitionLoader, and only the column chunks named by the DataFrame's
// Schema are ever read.
package parquet
