package memory

import (
	"fmt"

	"github.com/go-sif/skyshade"
	"github.com/go-sif/skyshade/datasource"
)

// Kind identifies memory PartitionLoaders
const Kind = "memory"

func init() {
	datasource.RegisterLoader(Kind, func() skyshade.PartitionLoader {
		return &PartitionLoader{}
	})
}

// DataSource is a buffer containing data which will be loaded according to a DataFrame
type DataSource struct {
	data   [][]byte
	parser skyshade.DataSourceParser
}

// CreateDataFrame is a factory for DataSources. Each element of data becomes one
// PartitionLoader, which carries its own copy of that element to a worker.
func CreateDataFrame(data [][]byte, parser skyshade.DataSourceParser, schema skyshade.Schema) skyshade.DataFrame {
	source := &DataSource{data: data, parser: parser}
	return datasource.CreateDataFrame(source, schema)
}

// Analyze returns a PartitionMap, describing how the source data will be divided into Partitions
func (fs *DataSource) Analyze() (skyshade.PartitionMap, error) {
	return &PartitionMap{
		source: fs,
	}, nil
}

// String returns a string representation of this DataSource
func (fs *DataSource) String() string {
	return fmt.Sprintf("memory(%d buffers, %s)", len(fs.data), fs.parser.Name())
}
