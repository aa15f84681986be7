package datasource

import (
	"github.com/go-sif/skyshade"
	"github.com/go-sif/skyshade/internal/dataframe"
	"github.com/go-sif/skyshade/internal/partition"
)

// CreateDataFrame produces a fresh DataFrame (useful for the implementation of DataSources)
func CreateDataFrame(source skyshade.DataSource, schema skyshade.Schema) skyshade.DataFrame {
	return dataframe.CreateDataFrame(source, schema)
}

// CreateBuildablePartition produces a fresh, empty Partition with room for maxRows Rows
func CreateBuildablePartition(maxRows int, schema skyshade.Schema) skyshade.BuildablePartition {
	return partition.CreateBuildablePartition(maxRows, schema)
}

// CreateTempRow produces a Row which can be recycled by AppendEmptyRowData
func CreateTempRow() skyshade.Row {
	return partition.CreateTempRow()
}

// CreateEmptyPartitionIterator produces a PartitionIterator with no Partitions
func CreateEmptyPartitionIterator() skyshade.PartitionIterator {
	return dataframe.CreateEmptyPartitionIterator()
}
