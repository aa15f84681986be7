package cluster

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-sif/skyshade"
	"github.com/go-sif/skyshade/accumulators"
	"github.com/go-sif/skyshade/datasource"
	errors "github.com/go-sif/skyshade/errors"
	"github.com/go-sif/skyshade/internal/dataframe"
	"github.com/go-sif/skyshade/internal/partition"
	"github.com/go-sif/skyshade/internal/pcache"
	pb "github.com/go-sif/skyshade/internal/rpc"
	"github.com/go-sif/skyshade/internal/stats"
	iutil "github.com/go-sif/skyshade/internal/util"
	"github.com/go-sif/skyshade/logging"
	"github.com/go-sif/skyshade/schema"
	"github.com/hashicorp/go-multierror"
	"github.com/pierrec/lz4"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// dataset is a persisted projection of a DataFrame held by a worker
type dataset struct {
	id       string
	schema   skyshade.Schema
	cache    pcache.PartitionCache
	diskPath string
	lock     sync.Mutex
	rows     int64
}

func (d *dataset) addRows(rows int64) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.rows += rows
}

func (d *dataset) numRows() int64 {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.rows
}

// keys lists the Partitions of this dataset in a stable order
func (d *dataset) keys() []string {
	keys := d.cache.Keys()
	sort.Strings(keys)
	return keys
}

type datasetServer struct {
	opts         *NodeOptions
	logger       *logging.Logger
	statsTracker *stats.RunStatistics
	loadLimit    *semaphore.Weighted
	lock         sync.Mutex
	datasets     map[string]*dataset
}

// createDatasetServer creates a new dataset server
func createDatasetServer(opts *NodeOptions, logger *logging.Logger, statsTracker *stats.RunStatistics) *datasetServer {
	return &datasetServer{
		opts:         opts,
		logger:       logger,
		statsTracker: statsTracker,
		loadLimit:    semaphore.NewWeighted(int64(opts.MaxConcurrentLoads)),
		datasets:     make(map[string]*dataset),
	}
}

func (s *datasetServer) getOrCreateDataset(id string, dsSchema skyshade.Schema) (*dataset, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if ds, ok := s.datasets[id]; ok {
		if err := ds.schema.Equals(dsSchema); err != nil {
			return nil, fmt.Errorf("dataset %s was persisted with a different schema: %w", id, err)
		}
		return ds, nil
	}
	diskPath, err := os.MkdirTemp(s.opts.TempDir, "skyshade-"+id+"-")
	if err != nil {
		return nil, fmt.Errorf("unable to create swap directory for dataset %s: %w", id, err)
	}
	ds := &dataset{
		id:       id,
		schema:   dsSchema,
		diskPath: diskPath,
		cache: pcache.NewLRU(&pcache.LRUConfig{
			Size:               s.opts.NumInMemoryPartitions,
			CompressedFraction: s.opts.CompressedFraction,
			DiskPath:           diskPath,
			Schema:             dsSchema,
		}),
	}
	s.datasets[id] = ds
	return ds, nil
}

func (s *datasetServer) getDataset(id string) (*dataset, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	ds, ok := s.datasets[id]
	if !ok {
		return nil, errors.UnknownDatasetError{ID: id}
	}
	return ds, nil
}

// AssignPartition loads all Partitions of a PartitionLoader into a dataset's cache
func (s *datasetServer) AssignPartition(ctx context.Context, req *pb.MAssignPartitionRequest) (*pb.MAssignPartitionResponse, error) {
	if err := s.loadLimit.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.loadLimit.Release(1)
	started := time.Now()
	dsSchema, err := schema.FromBytes(req.Schema)
	if err != nil {
		return nil, err
	}
	loader, err := datasource.DeserializeLoader(req.Kind, req.Loader)
	if err != nil {
		return nil, err
	}
	ds, err := s.getOrCreateDataset(req.DatasetId, dsSchema)
	if err != nil {
		return nil, err
	}
	filters := make([]skyshade.Filter, len(req.Filters))
	for i, f := range req.Filters {
		filters[i] = skyshade.Filter{Column: f.Column, Min: f.Min, Max: f.Max}
	}
	filter := dataframe.CompileFilter(dsSchema, filters, req.DropNil)

	s.logger.Debugf("Loading %s into dataset %s", loader.ToString(), req.DatasetId)
	it, err := loader.Load(dsSchema)
	if err != nil {
		return nil, fmt.Errorf("unable to load %s: %w", loader.ToString(), err)
	}
	res := &pb.MAssignPartitionResponse{}
	for it.HasNextPartition() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		part, err := it.NextPartition()
		if err != nil {
			// if this is a multierror, it's from row parsing, which we might want to ignore
			multierr, ok := err.(*multierror.Error)
			if !ok || !s.opts.IgnoreRowErrors || part == nil {
				return nil, fmt.Errorf("unable to load %s: %w", loader.ToString(), err)
			}
			multierr.ErrorFormat = iutil.FormatMultiError
			res.RowErrors += int32(len(multierr.Errors))
			s.logger.Errorf("Row errors while loading %s:\n%s", loader.ToString(), multierr.Error())
		}
		if filter != nil {
			buildable, ok := part.(skyshade.BuildablePartition)
			if !ok {
				return nil, fmt.Errorf("partition %s cannot be filtered", part.ID())
			}
			if part, err = buildable.FilterRows(filter); err != nil {
				return nil, err
			}
		}
		if part.GetNumRows() == 0 {
			continue
		}
		if err := ds.cache.Add(part.ID(), part); err != nil {
			return nil, err
		}
		res.Rows += int64(part.GetNumRows())
		res.Partitions++
	}
	ds.addRows(res.Rows)
	s.statsTracker.EndLoad(started, res.Rows, int64(res.Partitions))
	return res, nil
}

// Accumulate runs an Accumulator over every Partition of a dataset, streaming back the serialized result
func (s *datasetServer) Accumulate(req *pb.MAccumulateRequest, stream pb.DatasetService_AccumulateServer) error {
	started := time.Now()
	ds, err := s.getDataset(req.DatasetId)
	if err != nil {
		return err
	}
	keys := ds.keys()
	parallelism := runtime.NumCPU()
	if parallelism > len(keys) {
		parallelism = len(keys)
	}
	if parallelism < 1 {
		parallelism = 1
	}
	// each goroutine accumulates into its own Accumulator, which are merged afterwards
	accs := make([]skyshade.Accumulator, parallelism)
	for i := range accs {
		if accs[i], err = accumulators.Instantiate(req.Accumulator, req.Config); err != nil {
			return err
		}
	}
	g, gctx := errgroup.WithContext(stream.Context())
	for i := 0; i < parallelism; i++ {
		i := i
		g.Go(func() error {
			accumulate := iutil.SafeAccumulate(accs[i])
			for k := i; k < len(keys); k += parallelism {
				if err := gctx.Err(); err != nil {
					return err
				}
				part, err := ds.cache.Get(keys[k])
				if err != nil {
					return err
				}
				if err := part.ForEachRow(accumulate); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, acc := range accs[1:] {
		if err := accs[0].Merge(acc); err != nil {
			return err
		}
	}
	serialized, err := accs[0].ToBytes()
	if err != nil {
		return err
	}
	var compressed bytes.Buffer
	zw := lz4.NewWriter(&compressed)
	if _, err := zw.Write(serialized); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	payload := compressed.Bytes()
	checksum := xxhash.Sum64(payload)
	for _, chunk := range iutil.ChunkBytes(payload) {
		err := stream.Send(&pb.MAccumulatorChunk{
			Data:           chunk,
			TotalSizeBytes: int32(len(payload)),
			Checksum:       checksum,
		})
		if err != nil {
			return err
		}
	}
	s.statsTracker.EndAccumulate(started)
	return nil
}

// Head streams Partitions of a dataset until at least N rows have been sent
func (s *datasetServer) Head(req *pb.MHeadRequest, stream pb.DatasetService_HeadServer) error {
	ds, err := s.getDataset(req.DatasetId)
	if err != nil {
		return err
	}
	var serializer skyshade.PartitionSerializer = partition.NewLZ4PartitionSerializer()
	sent := 0
	for _, key := range ds.keys() {
		if sent >= int(req.N) {
			break
		}
		part, err := ds.cache.Get(key)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := serializer.Compress(&buf, part); err != nil {
			return err
		}
		chunks := iutil.ChunkBytes(buf.Bytes())
		for i, chunk := range chunks {
			err := stream.Send(&pb.MPartitionChunk{
				PartitionId: part.ID(),
				Data:        chunk,
				Last:        i == len(chunks)-1,
			})
			if err != nil {
				return err
			}
		}
		sent += part.GetNumRows()
	}
	return nil
}

// Release drops a dataset from this worker. Releasing an unknown dataset is not an error.
func (s *datasetServer) Release(ctx context.Context, req *pb.MReleaseRequest) (*pb.MReleaseResponse, error) {
	s.lock.Lock()
	ds, ok := s.datasets[req.DatasetId]
	delete(s.datasets, req.DatasetId)
	s.lock.Unlock()
	if !ok {
		return &pb.MReleaseResponse{}, nil
	}
	numPartitions := ds.cache.Len()
	s.destroy(ds)
	s.logger.Debugf("Released dataset %s (%d partitions)", ds.id, numPartitions)
	return &pb.MReleaseResponse{Partitions: int32(numPartitions)}, nil
}

func (s *datasetServer) destroy(ds *dataset) {
	ds.cache.Destroy()
	if err := os.RemoveAll(ds.diskPath); err != nil {
		s.logger.Warnf("Unable to remove swap directory %s: %v", ds.diskPath, err)
	}
}

// releaseAll drops every dataset held by this worker
func (s *datasetServer) releaseAll() {
	s.lock.Lock()
	datasets := s.datasets
	s.datasets = make(map[string]*dataset)
	s.lock.Unlock()
	for _, ds := range datasets {
		s.destroy(ds)
	}
}

// describe summarizes the datasets held by this worker
func (s *datasetServer) describe() []pb.MDatasetStatistics {
	s.lock.Lock()
	defer s.lock.Unlock()
	res := make([]pb.MDatasetStatistics, 0, len(s.datasets))
	for _, ds := range s.datasets {
		res = append(res, pb.MDatasetStatistics{
			Id:                 ds.id,
			Rows:               ds.numRows(),
			Partitions:         int32(ds.cache.Len()),
			InMemoryPartitions: int32(ds.cache.CurrentSize()),
		})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Id < res[j].Id })
	return res
}
