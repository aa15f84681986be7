package cluster

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"

	pb "github.com/go-sif/skyshade/internal/rpc"
	"google.golang.org/grpc"
)

// Coordinator is a Node which accepts Worker registrations, and through which
// Clients persist and accumulate DataFrames across the cluster
type Coordinator struct {
	opts          *NodeOptions
	lock          sync.Mutex
	connectLock   sync.Mutex
	stopped       bool
	server        *grpc.Server
	dashboard     *http.Server
	clusterServer *clusterServer
	ready         chan struct{}
	client        *Client
}

// CreateCoordinator is a factory for Coordinators
func CreateCoordinator(opts *NodeOptions) (*Coordinator, error) {
	// default certain options if not supplied
	if err := ensureDefaultNodeOptionsValues(CoordinatorRole, opts); err != nil {
		return nil, err
	}
	return &Coordinator{
		opts:          opts,
		clusterServer: createClusterServer(),
		ready:         make(chan struct{}),
	}, nil
}

// IsCoordinator returns true for coordinators
func (c *Coordinator) IsCoordinator() bool {
	return true
}

// Start the Coordinator - blocking unless run in a goroutine
func (c *Coordinator) Start() error {
	lis, err := net.Listen("tcp", c.opts.connectionString())
	if err != nil {
		return fmt.Errorf("failed to listen: %v", err)
	}
	c.lock.Lock()
	if c.stopped {
		c.lock.Unlock()
		lis.Close()
		return nil
	}
	c.server = grpc.NewServer(serverOptions()...)
	// register rpc handlers
	pb.RegisterClusterServiceServer(c.server, c.clusterServer)
	pb.RegisterLogServiceServer(c.server, createLogServer())
	server := c.server
	if c.opts.DashboardPort > 0 {
		c.dashboard = &http.Server{
			Addr:    fmt.Sprintf("%s:%d", c.opts.Host, c.opts.DashboardPort),
			Handler: c.dashboardHandler(),
		}
		dashboard := c.dashboard
		go func() {
			if err := dashboard.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("WARNING: dashboard stopped: %v", err)
			}
		}()
		log.Printf("Dashboard available at %s", c.DashboardURL())
	}
	c.lock.Unlock()
	// we're done bootstrapping
	close(c.ready)
	log.Printf("Starting skyshade Coordinator at %s", c.opts.coordinatorConnectionString())
	if err = server.Serve(lis); err != nil {
		return fmt.Errorf("failed to serve: %v", err)
	}
	return nil
}

// Connect waits for the configured number of Workers to join, and returns a Client for the cluster.
// Connect may be called more than once, returning the same Client.
func (c *Coordinator) Connect(ctx context.Context) (*Client, error) {
	select {
	case <-c.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	c.connectLock.Lock()
	defer c.connectLock.Unlock()
	if client := c.currentClient(); client != nil {
		return client, nil
	}
	waitCtx, cancel := context.WithTimeout(ctx, c.opts.WorkerJoinTimeout)
	defer cancel()
	log.Printf("Waiting for %d workers to connect...", c.opts.NumWorkers)
	if err := c.clusterServer.waitForWorkers(waitCtx, c.opts.NumWorkers); err != nil {
		return nil, err
	}
	workers := c.clusterServer.Workers()
	workerConns, err := dialWorkers(workers)
	if err != nil {
		return nil, err
	}
	client := createClient(c.opts, workers, workerConns)
	c.lock.Lock()
	c.client = client
	c.lock.Unlock()
	return client, nil
}

// DashboardURL returns the URL of the Coordinator's status dashboard. It is informational only.
func (c *Coordinator) DashboardURL() string {
	host := c.opts.Host
	if host == "0.0.0.0" || host == "" {
		host = c.opts.CoordinatorHost
	}
	return fmt.Sprintf("http://%s:%d/status", host, c.opts.DashboardPort)
}

// Workers returns the IDs of registered Workers
func (c *Coordinator) Workers() []string {
	return c.clusterServer.WorkerIDs()
}

// GracefulStop the Coordinator, waiting for RPCs to finish
func (c *Coordinator) GracefulStop() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.stopped = true
	if c.dashboard != nil {
		c.dashboard.Shutdown(context.Background())
		c.dashboard = nil
	}
	if c.server != nil {
		c.server.GracefulStop()
		c.server = nil
	}
	return nil
}

// Stop the Coordinator immediately
func (c *Coordinator) Stop() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.stopped = true
	if c.dashboard != nil {
		c.dashboard.Close()
		c.dashboard = nil
	}
	if c.server != nil {
		c.server.Stop()
		c.server = nil
	}
	return nil
}

func (c *Coordinator) currentClient() *Client {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.client
}
