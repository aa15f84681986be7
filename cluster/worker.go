package cluster

import (
	"context"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	pb "github.com/go-sif/skyshade/internal/rpc"
	"github.com/go-sif/skyshade/internal/stats"
	iutil "github.com/go-sif/skyshade/internal/util"
	"github.com/go-sif/skyshade/logging"
	uuid "github.com/gofrs/uuid"
	"google.golang.org/grpc"

	// workers rebuild PartitionLoaders by kind, so every DataSource and Parser must be registered
	_ "github.com/go-sif/skyshade/datasource/file"
	_ "github.com/go-sif/skyshade/datasource/memory"
	_ "github.com/go-sif/skyshade/datasource/objectstore"
	_ "github.com/go-sif/skyshade/datasource/parquet"
	_ "github.com/go-sif/skyshade/datasource/parser/dsv"
	_ "github.com/go-sif/skyshade/datasource/parser/jsonl"
)

// Worker is a Node which persists Partitions of data and accumulates over them on behalf of a Coordinator
type Worker struct {
	id            string
	opts          *NodeOptions
	server        *grpc.Server
	lifecycleLock sync.Mutex
	stopped       bool
	clusterClient pb.ClusterServiceClient
	logClient     pb.LogServiceClient
	logger        *logging.Logger
	statsTracker  *stats.RunStatistics
	datasetServer *datasetServer
}

// CreateWorker is a factory for Workers
func CreateWorker(opts *NodeOptions) (*Worker, error) {
	// default certain options if not supplied
	if err := ensureDefaultNodeOptionsValues(WorkerRole, opts); err != nil {
		return nil, err
	}
	// generate worker ID
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID: %w", err)
	}
	w := &Worker{id: id.String(), opts: opts, statsTracker: &stats.RunStatistics{}}
	w.logger = logging.New(w.id, logging.InfoLevel).WithSink(w.forwardLog)
	w.datasetServer = createDatasetServer(opts, w.logger, w.statsTracker)
	return w, nil
}

func (w *Worker) mconnect() (*grpc.ClientConn, error) {
	// start client
	conn, err := grpc.Dial(w.opts.coordinatorConnectionString(), dialOptions()...)
	if err != nil {
		return nil, fmt.Errorf("fail to dial: %v", err)
	}
	w.logClient = pb.NewLogServiceClient(conn)
	w.clusterClient = pb.NewClusterServiceClient(conn)
	return conn, nil
}

func (w *Worker) register() error {
	ctx, cancel := context.WithTimeout(context.Background(), w.opts.RPCTimeout)
	defer cancel()
	req := pb.MRegisterRequest{
		Id:   w.id,
		Port: int32(w.opts.Port),
	}
	if w.clusterClient == nil {
		return fmt.Errorf("Cannot register before dialing coordinator with mconnect()")
	}
	_, err := w.clusterClient.RegisterWorker(ctx, &req)
	return err
}

// forwardLog sends a log message to the Coordinator, to be printed alongside its own logs
func (w *Worker) forwardLog(level int, msg string) {
	if w.logClient == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), w.opts.RPCTimeout)
	defer cancel()
	logger, err := w.logClient.Log(ctx)
	if err != nil {
		log.Printf("WARNING: unable to forward log message to coordinator: %v", err)
		return
	}
	err = logger.Send(&pb.MLogMsg{Level: int32(level), Source: w.id, Message: msg})
	if err != nil {
		log.Printf("WARNING: unable to forward log message to coordinator: %v", err)
		return
	}
	if _, err = logger.CloseAndRecv(); err != nil {
		log.Printf("WARNING: unable to forward log message to coordinator: %v", err)
	}
}

// ID returns the ID of this worker
func (w *Worker) ID() string {
	return w.id
}

// IsCoordinator returns true for coordinators
func (w *Worker) IsCoordinator() bool {
	return false
}

// Start the worker - will block the current thread until the worker is stopped
func (w *Worker) Start() error {
	// connect to coordinator
	conn, err := w.mconnect()
	if err != nil {
		return err
	}
	defer conn.Close()
	// start worker server
	lis, err := net.Listen("tcp", w.opts.connectionString())
	if err != nil {
		return fmt.Errorf("failed to listen: %v", err)
	}
	w.lifecycleLock.Lock()
	if w.stopped {
		w.lifecycleLock.Unlock()
		lis.Close()
		return nil
	}
	w.server = grpc.NewServer(serverOptions()...)
	// register rpc handlers
	pb.RegisterLifecycleServiceServer(w.server, createLifecycleServer(w))
	pb.RegisterDatasetServiceServer(w.server, w.datasetServer)
	pb.RegisterStatsServiceServer(w.server, createStatsServer(w.id, w.statsTracker, w.datasetServer))
	server := w.server
	w.lifecycleLock.Unlock()
	w.statsTracker.Start()
	defer w.datasetServer.releaseAll()
	// serve, then register with coordinator
	serveErrors := make(chan error, 1)
	go func() {
		serveErrors <- server.Serve(lis)
	}()
	var wg sync.WaitGroup
	wg.Add(1)
	asyncErrors := iutil.CreateAsyncErrorChannel()
	go w.asyncRegisterWithCoordinator(&wg, asyncErrors)
	if err = iutil.WaitAndFetchError(&wg, asyncErrors); err != nil {
		server.Stop()
		<-serveErrors
		return err
	}
	log.Printf("Started skyshade Worker %s at %s", w.id, w.opts.connectionString())
	if err = <-serveErrors; err != nil {
		return fmt.Errorf("failed to serve: %v", err)
	}
	return nil
}

// GracefulStop the worker, waiting for RPCs to finish
func (w *Worker) GracefulStop() error {
	w.lifecycleLock.Lock()
	defer w.lifecycleLock.Unlock()
	w.stopped = true
	if w.server != nil {
		w.server.GracefulStop()
		w.server = nil
	}
	return nil
}

// Stop the worker immediately
func (w *Worker) Stop() error {
	w.lifecycleLock.Lock()
	defer w.lifecycleLock.Unlock()
	w.stopped = true
	if w.server != nil {
		w.server.Stop()
		w.server = nil
	}
	return nil
}

// asyncRegisterWithCoordinator registers with the coordinator, retrying at one-second intervals
func (w *Worker) asyncRegisterWithCoordinator(wg *sync.WaitGroup, errors chan<- error) {
	defer wg.Done()
	for retries := 0; retries < w.opts.WorkerJoinRetries; retries++ {
		err := w.register()
		if err == nil {
			return
		} else if retries >= w.opts.WorkerJoinRetries-1 {
			errors <- fmt.Errorf("unable to register with coordinator after %d attempts: %w", w.opts.WorkerJoinRetries, err)
			return
		}
		log.Printf("Unable to register with coordinator (attempt %d of %d): %v", retries+1, w.opts.WorkerJoinRetries, err)
		time.Sleep(time.Second)
	}
}
