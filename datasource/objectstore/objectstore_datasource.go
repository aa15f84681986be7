package objectstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-sif/skyshade"
	"github.com/go-sif/skyshade/datasource"
	"github.com/go-sif/skyshade/datasource/parquet"
	"github.com/minio/minio-go/v7"
	pq "github.com/segmentio/parquet-go"
)

// Kind identifies object store PartitionLoaders
const Kind = "s3parquet"

func init() {
	datasource.RegisterLoader(Kind, func() skyshade.PartitionLoader {
		return &PartitionLoader{}
	})
}

// DataSource is a collection of parquet objects in a bucket
type DataSource struct {
	cfg           Config
	bucket        string
	prefix        string
	partitionSize int
}

// CreateDataFrame produces a DataFrame over the parquet object(s) at an s3:// location, projected
// onto the given columns. Column types are inferred from the first object.
func CreateDataFrame(ctx context.Context, cfg Config, location string, conf *parquet.Conf, columns ...string) (skyshade.DataFrame, error) {
	bucket, prefix, err := ParseURL(location)
	if err != nil {
		return nil, err
	}
	partitionSize := 4096
	if conf != nil && conf.PartitionSize > 0 {
		partitionSize = conf.PartitionSize
	}
	source := &DataSource{cfg: cfg, bucket: bucket, prefix: prefix, partitionSize: partitionSize}
	mc, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	keys, err := source.keys(ctx, mc)
	if err != nil {
		return nil, err
	}
	f, obj, err := openObject(ctx, mc, bucket, keys[0])
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	s, err := parquet.InferSchema(f.Schema(), columns...)
	if err != nil {
		return nil, fmt.Errorf("%s://%s/%s: %w", Scheme, bucket, keys[0], err)
	}
	return datasource.CreateDataFrame(source, s), nil
}

// Analyze returns a PartitionMap with one PartitionLoader per row group of each parquet object
func (ds *DataSource) Analyze() (skyshade.PartitionMap, error) {
	ctx := context.Background()
	mc, err := NewClient(ds.cfg)
	if err != nil {
		return nil, err
	}
	keys, err := ds.keys(ctx, mc)
	if err != nil {
		return nil, err
	}
	loaders := []*PartitionLoader{}
	for _, key := range keys {
		f, obj, err := openObject(ctx, mc, ds.bucket, key)
		if err != nil {
			return nil, err
		}
		for i, rg := range f.RowGroups() {
			loaders = append(loaders, &PartitionLoader{
				cfg:           ds.cfg,
				bucket:        ds.bucket,
				key:           key,
				rowGroup:      i,
				numRows:       rg.NumRows(),
				partitionSize: ds.partitionSize,
			})
		}
		obj.Close()
	}
	return &PartitionMap{loaders: loaders}, nil
}

// String returns a string representation of this DataSource
func (ds *DataSource) String() string {
	return fmt.Sprintf("parquet(%s://%s/%s)", Scheme, ds.bucket, ds.prefix)
}

func (ds *DataSource) keys(ctx context.Context, mc *minio.Client) ([]string, error) {
	keys, err := listPartKeys(ctx, mc, ds.bucket, ds.prefix)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%s://%s/%s contains no parquet objects", Scheme, ds.bucket, ds.prefix)
	}
	sort.Strings(keys)
	return keys, nil
}

// openObject opens a parquet object for random access. The caller must close the returned object.
func openObject(ctx context.Context, mc *minio.Client, bucket string, key string) (*pq.File, *minio.Object, error) {
	obj, err := mc.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, err
	}
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, nil, err
	}
	f, err := pq.OpenFile(obj, info.Size)
	if err != nil {
		obj.Close()
		return nil, nil, fmt.Errorf("unable to open parquet object %s://%s/%s: %w", Scheme, bucket, key, err)
	}
	return f, obj, nil
}

// PartitionMap is an iterator producing a sequence of PartitionLoaders, one per row group
type PartitionMap struct {
	loaders []*PartitionLoader
}

// HasNext returns true iff there is another PartitionLoader remaining
func (pm *PartitionMap) HasNext() bool {
	return len(pm.loaders) > 0
}

// Next returns the next PartitionLoader for a row group
func (pm *PartitionMap) Next() skyshade.PartitionLoader {
	result := pm.loaders[0]
	pm.loaders = pm.loaders[1:]
	return result
}
