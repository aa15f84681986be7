package skyshade

// A Partition is a portion of a columnar dataset, consisting of multiple Rows.
// Partitions are not generally interacted with directly, instead being
// loaded, persisted and accumulated in parallel by workers.
type Partition interface {
	ID() string                       // ID retrieves the ID of this Partition
	GetMaxRows() int                  // GetMaxRows retrieves the maximum number of rows in this Partition
	GetNumRows() int                  // GetNumRows retrieves the number of rows in this Partition
	GetRow(rowNum int) Row            // GetRow retrieves a specific row from this Partition
	ForEachRow(fn MapOperation) error // ForEachRow iterates over Rows in a Partition
	ToBytes() ([]byte, error)         // ToBytes serializes this Partition (without its Schema)
}

// A BuildablePartition can be built. Used in the implementation of DataSources and Parsers
type BuildablePartition interface {
	Partition
	AppendEmptyRowData(tempRow Row) (Row, error)               // AppendEmptyRowData is a convenient way to add an empty Row to the end of this Partition, returning the Row so that Row methods can be used to populate it
	AppendRowData(row []byte, meta []byte) error               // AppendRowData adds a Row to the end of this Partition, if it isn't full and if the Row fits within the schema
	TruncateLastRow()                                          // TruncateLastRow discards the most recently appended Row, typically because it could not be parsed
	FilterRows(fn FilterOperation) (BuildablePartition, error) // FilterRows filters the Rows in the current Partition, creating a new one
}
