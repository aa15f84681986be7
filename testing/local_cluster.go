package testing

import (
	"context"
	"os"
	"time"

	"github.com/go-sif/skyshade/cluster"
	"github.com/go-sif/skyshade/provision/local"
	"github.com/hashicorp/go-multierror"
)

// Cluster is a localhost test cluster: a Coordinator plus in-process Workers
type Cluster struct {
	Coordinator     *cluster.Coordinator
	Client          *cluster.Client
	provisioner     *local.Provisioner
	coordinatorDone chan error
}

// LocalCluster starts a Coordinator and numWorkers Workers on localhost, returning once every Worker has joined.
// The Coordinator binds to opts.Port (default 8080) and Workers to the following ports.
func LocalCluster(ctx context.Context, opts *cluster.NodeOptions, numWorkers int) (*Cluster, error) {
	// configure and start coordinator
	opts.Host = "127.0.0.1"
	if opts.Port == 0 {
		opts.Port = 8080
	}
	opts.CoordinatorPort = opts.Port
	opts.CoordinatorHost = "127.0.0.1"
	opts.NumWorkers = numWorkers
	if opts.WorkerJoinTimeout == 0 {
		opts.WorkerJoinTimeout = time.Duration(5) * time.Second
	}
	opts.RPCTimeout = time.Duration(5) * time.Second
	if opts.NumInMemoryPartitions == 0 {
		opts.NumInMemoryPartitions = 10
	}
	if opts.DashboardPort == 0 {
		opts.DashboardPort = -1
	}
	if len(opts.TempDir) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		opts.TempDir = cwd
	}

	coordinator, err := cluster.CreateCoordinator(opts)
	if err != nil {
		return nil, err
	}
	c := &Cluster{Coordinator: coordinator, coordinatorDone: make(chan error, 1)}
	go func() {
		c.coordinatorDone <- coordinator.Start()
	}()

	// start workers
	c.provisioner = local.New(opts, opts.Port+1)
	if err := c.provisioner.Provision(ctx, numWorkers); err != nil {
		c.Teardown(ctx)
		return nil, err
	}
	client, err := coordinator.Connect(ctx)
	if err != nil {
		c.Teardown(ctx)
		return nil, err
	}
	c.Client = client
	return c, nil
}

// Teardown releases all persisted data, then stops every Worker and the Coordinator
func (c *Cluster) Teardown(ctx context.Context) error {
	var errs *multierror.Error
	if c.Client != nil {
		if err := c.Client.Close(ctx); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if err := c.provisioner.Teardown(ctx); err != nil {
		errs = multierror.Append(errs, err)
	}
	c.Coordinator.GracefulStop()
	if err := <-c.coordinatorDone; err != nil {
		errs = multierror.Append(errs, err)
	}
	return errs.ErrorOrNil()
}
