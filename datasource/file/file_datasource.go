package file

import (
	"fmt"
	"path/filepath"

	"github.com/go-sif/skyshade"
	"github.com/go-sif/skyshade/datasource"
)

// Kind identifies file PartitionLoaders
const Kind = "file"

func init() {
	datasource.RegisterLoader(Kind, func() skyshade.PartitionLoader {
		return &PartitionLoader{}
	})
}

// DataSource is a set of files containing data which will be loaded according to a DataFrame
type DataSource struct {
	glob   string
	parser skyshade.DataSourceParser
}

// CreateDataFrame is a factory for DataSources
func CreateDataFrame(glob string, parser skyshade.DataSourceParser, schema skyshade.Schema) skyshade.DataFrame {
	source := &DataSource{glob: glob, parser: parser}
	return datasource.CreateDataFrame(source, schema)
}

// Analyze returns a PartitionMap, describing how the source files will be divided into Partitions
func (fs *DataSource) Analyze() (skyshade.PartitionMap, error) {
	matches, err := filepath.Glob(fs.glob)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("glob %s produced 0 files", fs.glob)
	}
	return &PartitionMap{
		files:  matches,
		source: fs,
	}, nil
}

// String returns a string representation of this DataSource
func (fs *DataSource) String() string {
	return fmt.Sprintf("%s(%s)", fs.parser.Name(), fs.glob)
}
