package cluster

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-sif/skyshade"
	pb "github.com/go-sif/skyshade/internal/rpc"
	iutil "github.com/go-sif/skyshade/internal/util"
	"github.com/go-sif/skyshade/schema"
	"google.golang.org/grpc"
)

// PersistedFrame is a handle to a DataFrame which is being (or has been) loaded into worker memory.
// Operations on a PersistedFrame block until persistence has finished.
type PersistedFrame struct {
	id         string
	frame      skyshade.DataFrame
	client     *Client
	done       chan struct{}
	err        error
	rows       int64
	partitions int64
	rowErrors  int64
	loaders    int64
	holders    []int // indices of the workers which were assigned at least one PartitionLoader
	started    time.Time
	elapsed    time.Duration
	released   int32
}

// ID returns the dataset ID under which workers hold this DataFrame
func (pf *PersistedFrame) ID() string {
	return pf.id
}

// Frame returns the DataFrame which is persisted
func (pf *PersistedFrame) Frame() skyshade.DataFrame {
	return pf.frame
}

// Done returns a channel which is closed once persistence finishes, successfully or not
func (pf *PersistedFrame) Done() <-chan struct{} {
	return pf.done
}

// Wait blocks until persistence finishes, returning the first error encountered while persisting
func (pf *PersistedFrame) Wait(ctx context.Context) error {
	select {
	case <-pf.done:
		return pf.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Rows returns the number of rows persisted so far
func (pf *PersistedFrame) Rows() int64 {
	return atomic.LoadInt64(&pf.rows)
}

// Partitions returns the number of Partitions persisted so far
func (pf *PersistedFrame) Partitions() int64 {
	return atomic.LoadInt64(&pf.partitions)
}

// RowErrors returns the number of rows which were discarded because they could not be parsed
func (pf *PersistedFrame) RowErrors() int64 {
	return atomic.LoadInt64(&pf.rowErrors)
}

// Release drops this DataFrame from worker memory, waiting for persistence to finish first
func (pf *PersistedFrame) Release(ctx context.Context) error {
	return pf.client.release(ctx, pf)
}

// Elapsed returns how long persistence took, or has taken so far
func (pf *PersistedFrame) Elapsed() time.Duration {
	if pf.isDone() {
		return pf.elapsed
	}
	return time.Since(pf.started)
}

// holderIndices returns the indices of the workers holding part of this dataset, in worker order.
// Only meaningful once persistence has finished.
func (pf *PersistedFrame) holderIndices() []int {
	return pf.holders
}

// markReleased returns true the first time it is called
func (pf *PersistedFrame) markReleased() bool {
	return atomic.CompareAndSwapInt32(&pf.released, 0, 1)
}

// isDone returns true iff persistence has finished
func (pf *PersistedFrame) isDone() bool {
	select {
	case <-pf.done:
		return true
	default:
		return false
	}
}

// persist analyzes the source of the DataFrame, and assigns PartitionLoaders to workers round-robin
func (pf *PersistedFrame) persist(ctx context.Context, workers []*pb.MWorkerDescriptor, conns []*grpc.ClientConn) {
	defer close(pf.done)
	defer func() {
		pf.elapsed = time.Since(pf.started)
	}()
	fail := func(err error) {
		pf.err = fmt.Errorf("persist %s: %w", pf.frame.GetDataSource().String(), err)
		log.Printf("Unable to persist dataset %s: %v", pf.id, pf.err)
	}
	schemaBytes, err := schema.ToBytes(pf.frame.GetSchema())
	if err != nil {
		fail(err)
		return
	}
	filters := make([]pb.MFilter, 0)
	for _, f := range pf.frame.GetFilters() {
		filters = append(filters, pb.MFilter{Column: f.Column, Min: f.Min, Max: f.Max})
	}
	partitionMap, err := pf.frame.AnalyzeSource()
	if err != nil {
		fail(err)
		return
	}
	var wg sync.WaitGroup
	asyncErrors := iutil.CreateAsyncErrorChannel()
	assigned := make(map[int]struct{}, len(workers))
	defer func() {
		pf.holders = make([]int, 0, len(assigned))
		for i := range assigned {
			pf.holders = append(pf.holders, i)
		}
		sort.Ints(pf.holders)
	}()
	for i := 0; partitionMap.HasNext(); i = (i + 1) % len(workers) {
		loader := partitionMap.Next()
		buf, err := loader.GobEncode()
		if err != nil {
			wg.Wait()
			fail(fmt.Errorf("could not serialize PartitionLoader %s: %w", loader.ToString(), err))
			return
		}
		req := &pb.MAssignPartitionRequest{
			DatasetId: pf.id,
			Kind:      loader.Kind(),
			Loader:    buf,
			Schema:    schemaBytes,
			Filters:   filters,
			DropNil:   pf.frame.DropsNil(),
		}
		pf.loaders++
		assigned[i] = struct{}{}
		wg.Add(1)
		log.Printf("Assigning partition loader \"%s\" to worker %s", loader.ToString(), workers[i].Id)
		go pf.asyncAssignPartition(ctx, req, loader.ToString(), workers[i], conns[i], &wg, asyncErrors)
	}
	if err = iutil.WaitAndFetchError(&wg, asyncErrors); err != nil {
		fail(err)
		return
	}
	partitionsCached.Add(float64(pf.Partitions()))
	log.Printf("Persisted dataset %s: %d rows in %d partitions from %d loaders (%s)", pf.id, pf.Rows(), pf.Partitions(), pf.loaders, time.Since(pf.started))
}

func (pf *PersistedFrame) asyncAssignPartition(ctx context.Context, req *pb.MAssignPartitionRequest, description string, w *pb.MWorkerDescriptor, conn *grpc.ClientConn, wg *sync.WaitGroup, errors chan<- error) {
	defer wg.Done()
	datasetClient := pb.NewDatasetServiceClient(conn)
	res, err := datasetClient.AssignPartition(ctx, req)
	if err != nil {
		log.Printf("Something went wrong while assigning partition loader %s to worker %s: %v", description, w.Id, err)
		errors <- fmt.Errorf("worker %s: %w", w.Id, err)
		return
	}
	atomic.AddInt64(&pf.rows, res.Rows)
	atomic.AddInt64(&pf.partitions, int64(res.Partitions))
	atomic.AddInt64(&pf.rowErrors, int64(res.RowErrors))
	rowsLoaded.Add(float64(res.Rows))
	rowErrors.Add(float64(res.RowErrors))
}
