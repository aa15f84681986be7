package parquet

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-sif/skyshade"
	"github.com/go-sif/skyshade/datasource"
	"github.com/go-sif/skyshade/schema"
	pq "github.com/segmentio/parquet-go"
)

// Kind identifies parquet PartitionLoaders
const Kind = "parquet"

func init() {
	datasource.RegisterLoader(Kind, func() skyshade.PartitionLoader {
		return &PartitionLoader{}
	})
}

// Conf configures a parquet DataSource
type Conf struct {
	PartitionSize int // The maximum number of rows per Partition. Defaults to 4096.
}

// DataSource is a collection of parquet files containing data which will be loaded according to a DataFrame
type DataSource struct {
	path string
	conf *Conf
}

func ensureDefaultConf(conf *Conf) *Conf {
	if conf == nil {
		conf = &Conf{}
	}
	if conf.PartitionSize <= 0 {
		conf.PartitionSize = 4096
	}
	return conf
}

// CreateDataFrame produces a DataFrame over the parquet file(s) at path, projected onto the given
// columns. Column types are inferred from the first file. path may be a single file, a directory
// of part files or a glob.
func CreateDataFrame(path string, conf *Conf, columns ...string) (skyshade.DataFrame, error) {
	source := &DataSource{path: path, conf: ensureDefaultConf(conf)}
	files, err := source.files()
	if err != nil {
		return nil, err
	}
	f, closer, err := openFile(files[0])
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	s, err := InferSchema(f.Schema(), columns...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", files[0], err)
	}
	return datasource.CreateDataFrame(source, s), nil
}

// CreateDataFrameWithSchema produces a DataFrame over the parquet file(s) at path, with an explicit Schema
func CreateDataFrameWithSchema(path string, conf *Conf, s skyshade.Schema) skyshade.DataFrame {
	source := &DataSource{path: path, conf: ensureDefaultConf(conf)}
	return datasource.CreateDataFrame(source, s)
}

// InferSchema builds a Schema for the named leaf columns of a parquet schema. With no
// columns named, every supported top-level column is included.
func InferSchema(pqSchema *pq.Schema, columns ...string) (skyshade.Schema, error) {
	if len(columns) == 0 {
		for _, field := range pqSchema.Fields() {
			if field.Leaf() {
				columns = append(columns, field.Name())
			}
		}
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("parquet schema %s has no columns", pqSchema.Name())
	}
	s := schema.CreateSchema()
	for _, name := range columns {
		leaf, ok := pqSchema.Lookup(strings.Split(name, ".")...)
		if !ok {
			return nil, fmt.Errorf("parquet schema %s does not contain column %s", pqSchema.Name(), name)
		}
		colType, err := columnTypeFor(leaf.Node.Type().Kind())
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
		if _, err := s.CreateColumn(name, colType); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Analyze returns a PartitionMap with one PartitionLoader per row group of each parquet file
func (ds *DataSource) Analyze() (skyshade.PartitionMap, error) {
	files, err := ds.files()
	if err != nil {
		return nil, err
	}
	loaders := []*PartitionLoader{}
	for _, path := range files {
		f, closer, err := openFile(path)
		if err != nil {
			return nil, err
		}
		for i, rg := range f.RowGroups() {
			loaders = append(loaders, &PartitionLoader{
				path:          path,
				rowGroup:      i,
				numRows:       rg.NumRows(),
				partitionSize: ds.conf.PartitionSize,
			})
		}
		if err := closer.Close(); err != nil {
			return nil, err
		}
	}
	return &PartitionMap{loaders: loaders}, nil
}

// String returns a string representation of this DataSource
func (ds *DataSource) String() string {
	return fmt.Sprintf("parquet(%s)", ds.path)
}

// files lists the parquet part files described by this DataSource's path, in lexical order
func (ds *DataSource) files() ([]string, error) {
	var candidates []string
	info, err := os.Stat(ds.path)
	switch {
	case err == nil && info.IsDir():
		err = filepath.Walk(ds.path, func(path string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if path != ds.path && isHidden(fi.Name()) {
				if fi.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !fi.IsDir() && isPartFile(fi.Name()) {
				candidates = append(candidates, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	case err == nil:
		candidates = []string{ds.path}
	case os.IsNotExist(err):
		matches, globErr := filepath.Glob(ds.path)
		if globErr != nil {
			return nil, globErr
		}
		for _, m := range matches {
			if !isHidden(filepath.Base(m)) {
				candidates = append(candidates, m)
			}
		}
	default:
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%s contains no parquet files", ds.path)
	}
	sort.Strings(candidates)
	return candidates, nil
}

// isHidden matches dot-files and parquet metadata sidecars (_metadata, _common_metadata, _SUCCESS)
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

func isPartFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".parquet" || ext == ".parq"
}

func openFile(path string) (*pq.File, *os.File, error) {
	osFile, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	info, err := osFile.Stat()
	if err != nil {
		osFile.Close()
		return nil, nil, err
	}
	f, err := pq.OpenFile(osFile, info.Size())
	if err != nil {
		osFile.Close()
		return nil, nil, fmt.Errorf("unable to open parquet file %s: %w", path, err)
	}
	return f, osFile, nil
}
