package cluster

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-sif/skyshade"
	"github.com/go-sif/skyshade/accumulators"
	"github.com/go-sif/skyshade/internal/partition"
	pb "github.com/go-sif/skyshade/internal/rpc"
	iutil "github.com/go-sif/skyshade/internal/util"
	uuid "github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/pierrec/lz4"
	"google.golang.org/grpc"
)

// Client drives a connected cluster: it persists DataFrames into worker memory
// and runs Accumulators over them. Clients are obtained from Coordinator.Connect.
type Client struct {
	opts    *NodeOptions
	workers []*pb.MWorkerDescriptor
	conns   []*grpc.ClientConn
	lock    sync.Mutex
	frames  map[string]*PersistedFrame
	closed  bool
}

// DatasetStatistics describes a dataset held by a single worker
type DatasetStatistics struct {
	ID                 string `json:"id"`
	Rows               int64  `json:"rows"`
	Partitions         int    `json:"partitions"`
	InMemoryPartitions int    `json:"in_memory_partitions"`
}

// WorkerStatistics describes the activity of a single worker
type WorkerStatistics struct {
	WorkerID            string              `json:"worker_id"`
	StartTime           time.Time           `json:"start_time"`
	RowsPersisted       int64               `json:"rows_persisted"`
	PartitionsPersisted int64               `json:"partitions_persisted"`
	Accumulations       int64               `json:"accumulations"`
	Datasets            []DatasetStatistics `json:"datasets"`
}

func createClient(opts *NodeOptions, workers []*pb.MWorkerDescriptor, conns []*grpc.ClientConn) *Client {
	return &Client{
		opts:    opts,
		workers: workers,
		conns:   conns,
		frames:  make(map[string]*PersistedFrame),
	}
}

// Workers returns the IDs of the workers this Client is connected to
func (c *Client) Workers() []string {
	ids := make([]string, len(c.workers))
	for i, w := range c.workers {
		ids[i] = w.Id
	}
	return ids
}

// Persist begins loading a DataFrame into worker memory, returning immediately.
// Use PersistedFrame.Wait to block until loading has finished; any failure to persist
// is returned from Wait and from every later operation on the PersistedFrame.
func (c *Client) Persist(ctx context.Context, frame skyshade.DataFrame) *PersistedFrame {
	pf := &PersistedFrame{
		id:      uuid.Must(uuid.NewV4()).String(),
		frame:   frame,
		client:  c,
		done:    make(chan struct{}),
		started: time.Now(),
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.closed || len(c.workers) == 0 {
		pf.err = fmt.Errorf("persist %s: no workers are connected", frame.GetDataSource().String())
		close(pf.done)
		return pf
	}
	c.frames[pf.id] = pf
	log.Printf("Persisting %s as dataset %s across %d workers", frame.GetDataSource().String(), pf.id, len(c.workers))
	go pf.persist(ctx, c.workers, c.conns)
	return pf
}

// Count returns the number of rows in a PersistedFrame
func (c *Client) Count(ctx context.Context, pf *PersistedFrame) (uint64, error) {
	acc, err := c.Accumulate(ctx, pf, accumulators.Counter)
	if err != nil {
		return 0, err
	}
	return acc.(*accumulators.Count).GetCount(), nil
}

// Accumulate runs an Accumulator over every row of a PersistedFrame. Each worker
// accumulates its own Partitions, and the results are merged into a single Accumulator.
func (c *Client) Accumulate(ctx context.Context, pf *PersistedFrame, factory skyshade.AccumulatorFactory) (skyshade.Accumulator, error) {
	if err := pf.Wait(ctx); err != nil {
		return nil, err
	}
	proto, err := newAccumulator(factory)
	if err != nil {
		return nil, err
	}
	config, err := proto.ToBytes()
	if err != nil {
		return nil, fmt.Errorf("unable to serialize accumulator %s: %w", proto.Name(), err)
	}
	req := &pb.MAccumulateRequest{
		DatasetId:   pf.id,
		Accumulator: proto.Name(),
		Config:      config,
	}
	// workers which received no PartitionLoaders never created the dataset
	holders := pf.holderIndices()
	results := make([]skyshade.Accumulator, len(holders))
	var wg sync.WaitGroup
	asyncErrors := iutil.CreateAsyncErrorChannel()
	for r, i := range holders {
		wg.Add(1)
		go func(r int, i int) {
			defer wg.Done()
			acc, err := c.accumulateFrom(ctx, req, c.workers[i], c.conns[i])
			if err != nil {
				asyncErrors <- fmt.Errorf("worker %s: %w", c.workers[i].Id, err)
				return
			}
			results[r] = acc
		}(r, i)
	}
	if err := iutil.WaitAndFetchError(&wg, asyncErrors); err != nil {
		return nil, err
	}
	merged, err := newAccumulator(factory)
	if err != nil {
		return nil, err
	}
	for _, acc := range results {
		if err := merged.Merge(acc); err != nil {
			return nil, err
		}
	}
	accumulations.WithLabelValues(proto.Name()).Inc()
	return merged, nil
}

// newAccumulator calls an AccumulatorFactory, turning a panic into an error
func newAccumulator(factory skyshade.AccumulatorFactory) (acc skyshade.Accumulator, err error) {
	defer func() {
		if r := recover(); r != nil {
			if anErr, ok := r.(error); ok {
				err = fmt.Errorf("unable to create accumulator: %w", anErr)
			} else {
				err = fmt.Errorf("unable to create accumulator: %v", r)
			}
		}
	}()
	acc = factory()
	if acc == nil {
		return nil, fmt.Errorf("accumulator factory produced nil")
	}
	return acc, nil
}

func (c *Client) accumulateFrom(ctx context.Context, req *pb.MAccumulateRequest, w *pb.MWorkerDescriptor, conn *grpc.ClientConn) (skyshade.Accumulator, error) {
	stream, err := pb.NewDatasetServiceClient(conn).Accumulate(ctx, req)
	if err != nil {
		return nil, err
	}
	var payload []byte
	var checksum uint64
	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		if payload == nil {
			payload = make([]byte, 0, chunk.TotalSizeBytes)
			checksum = chunk.Checksum
		}
		payload = append(payload, chunk.Data...)
	}
	if payload == nil {
		return nil, fmt.Errorf("no accumulator was received")
	}
	if xxhash.Sum64(payload) != checksum {
		return nil, fmt.Errorf("accumulator checksum mismatch")
	}
	serialized, err := io.ReadAll(lz4.NewReader(bytes.NewReader(payload)))
	if err != nil {
		return nil, fmt.Errorf("unable to decompress accumulator: %w", err)
	}
	return accumulators.Instantiate(req.Accumulator, serialized)
}

// Head returns up to n rows from a PersistedFrame. Rows are returned in worker order, then Partition order.
func (c *Client) Head(ctx context.Context, pf *PersistedFrame, n int) ([]skyshade.Row, error) {
	if err := pf.Wait(ctx); err != nil {
		return nil, err
	}
	rows := make([]skyshade.Row, 0, n)
	var serializer skyshade.PartitionSerializer = partition.NewLZ4PartitionSerializer()
	dsSchema := pf.frame.GetSchema()
	for _, i := range pf.holderIndices() {
		if len(rows) >= n {
			break
		}
		stream, err := pb.NewDatasetServiceClient(c.conns[i]).Head(ctx, &pb.MHeadRequest{
			DatasetId: pf.id,
			N:         int32(n - len(rows)),
		})
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		for {
			chunk, err := stream.Recv()
			if err == io.EOF {
				break
			} else if err != nil {
				return nil, err
			}
			buf.Write(chunk.Data)
			if !chunk.Last {
				continue
			}
			part, err := serializer.Decompress(&buf, dsSchema)
			if err != nil {
				return nil, fmt.Errorf("unable to decompress partition %s: %w", chunk.PartitionId, err)
			}
			buf.Reset()
			for r := 0; r < part.GetNumRows() && len(rows) < n; r++ {
				rows = append(rows, part.GetRow(r))
			}
		}
	}
	return rows, nil
}

// Statistics fetches statistics from every worker
func (c *Client) Statistics(ctx context.Context) ([]WorkerStatistics, error) {
	res := make([]WorkerStatistics, 0, len(c.workers))
	for i, w := range c.workers {
		msg, err := pb.NewStatsServiceClient(c.conns[i]).ProvideStatistics(ctx, &pb.MStatisticsRequest{IncludeDatasets: true})
		if err != nil {
			return nil, fmt.Errorf("unable to fetch statistics from worker %s: %w", w.Id, err)
		}
		res = append(res, workerStatisticsFromMessage(msg))
	}
	return res, nil
}

func workerStatisticsFromMessage(msg *pb.MStatisticsResponse) WorkerStatistics {
	ws := WorkerStatistics{
		WorkerID:            msg.WorkerId,
		StartTime:           time.Unix(0, msg.StartTime),
		RowsPersisted:       msg.RowsPersisted,
		PartitionsPersisted: msg.PartitionsPersisted,
		Accumulations:       msg.Accumulations,
		Datasets:            make([]DatasetStatistics, len(msg.Datasets)),
	}
	for i, ds := range msg.Datasets {
		ws.Datasets[i] = DatasetStatistics{
			ID:                 ds.Id,
			Rows:               ds.Rows,
			Partitions:         int(ds.Partitions),
			InMemoryPartitions: int(ds.InMemoryPartitions),
		}
	}
	return ws
}

// PersistedFrames returns the IDs of every DataFrame persisted through this Client and not yet released
func (c *Client) PersistedFrames() []string {
	frames := c.persistedFrames()
	ids := make([]string, len(frames))
	for i, pf := range frames {
		ids[i] = pf.id
	}
	return ids
}

func (c *Client) persistedFrames() []*PersistedFrame {
	c.lock.Lock()
	defer c.lock.Unlock()
	frames := make([]*PersistedFrame, 0, len(c.frames))
	for _, pf := range c.frames {
		frames = append(frames, pf)
	}
	sort.Slice(frames, func(i, j int) bool { return frames[i].id < frames[j].id })
	return frames
}

// release drops a PersistedFrame from every worker. Releasing a frame twice is not an error.
func (c *Client) release(ctx context.Context, pf *PersistedFrame) error {
	// loading must finish first, or workers could re-create the dataset after it was dropped
	select {
	case <-pf.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	if !pf.markReleased() {
		return nil
	}
	c.lock.Lock()
	delete(c.frames, pf.id)
	c.lock.Unlock()
	var errs *multierror.Error
	var released int32
	for i, w := range c.workers {
		res, err := pb.NewDatasetServiceClient(c.conns[i]).Release(ctx, &pb.MReleaseRequest{DatasetId: pf.id})
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("worker %s: %w", w.Id, err))
			continue
		}
		released += res.Partitions
	}
	partitionsCached.Sub(float64(released))
	log.Printf("Released dataset %s (%d partitions)", pf.id, released)
	return errs.ErrorOrNil()
}

// Close releases every PersistedFrame and closes connections to workers. Workers keep running.
func (c *Client) Close(ctx context.Context) error {
	if !c.markClosed() {
		return nil
	}
	err := c.releaseAll(ctx)
	closeGRPCConnections(c.conns)
	return err
}

// Shutdown releases every PersistedFrame and asks every worker to stop
func (c *Client) Shutdown(ctx context.Context, graceful bool) error {
	if !c.markClosed() {
		return fmt.Errorf("client is closed")
	}
	var errs *multierror.Error
	if err := c.releaseAll(ctx); err != nil {
		errs = multierror.Append(errs, err)
	}
	for i, w := range c.workers {
		_, err := pb.NewLifecycleServiceClient(c.conns[i]).Stop(ctx, &pb.MStopRequest{Graceful: graceful})
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("unable to stop worker %s: %w", w.Id, err))
		}
	}
	closeGRPCConnections(c.conns)
	return errs.ErrorOrNil()
}

func (c *Client) markClosed() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.closed {
		return false
	}
	c.closed = true
	return true
}

func (c *Client) releaseAll(ctx context.Context) error {
	var errs *multierror.Error
	for _, pf := range c.persistedFrames() {
		if err := c.release(ctx, pf); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}
