package cluster

import (
	"fmt"
	"os"
	"time"
)

// NodeRole describes the intended role of a Node
type NodeRole = string

const (
	// CoordinatorRole indicates that a node should coordinate work
	//   e.g. CreateNodeInRole(CoordinatorRole, &NodeOptions{...})
	CoordinatorRole NodeRole = "coordinator"
	// WorkerRole indicates that a node should persist and accumulate data
	//   e.g. CreateNodeInRole(WorkerRole, &NodeOptions{...})
	WorkerRole NodeRole = "worker"
)

// NodeTypeEnvVar names the environment variable from which CreateNode derives a node's role
const NodeTypeEnvVar = "SKYSHADE_NODE_TYPE"

// Node is a member of a skyshade cluster, either coordinating or performing work.
// Nodes present several methods to control their lifecycle.
type Node interface {
	IsCoordinator() bool
	Start() error // Start blocks until the Node is stopped
	GracefulStop() error
	Stop() error
}

// NodeOptions are options for a Node, configuring elements of a skyshade cluster
type NodeOptions struct {
	Port                  int           // port for this Node to bind to
	Host                  string        // hostname for this Node to bind to
	CoordinatorPort       int           // port for the Coordinator Node (potentially identical to Port if this is the Coordinator)
	CoordinatorHost       string        // [REQUIRED] hostname of the Coordinator Node (potentially identical to Host if this is the Coordinator)
	NumWorkers            int           // [REQUIRED for Coordinators] the number of Workers to wait for before accepting work
	WorkerJoinTimeout     time.Duration // how long the Coordinator should wait for Workers to join
	WorkerJoinRetries     int           // how many times a Worker should retry connecting to the Coordinator (at one second intervals)
	RPCTimeout            time.Duration // timeout for short RPC calls (registration, release, stop)
	TempDir               string        // location for storing temporary files (primarily swapped partitions)
	NumInMemoryPartitions int           // the number of partitions per dataset to retain in memory before swapping to disk
	CompressedFraction    float32       // the fraction of in-memory partitions which are held compressed
	MaxConcurrentLoads    int           // the number of PartitionLoaders a Worker will load at once
	IgnoreRowErrors       bool          // iff true, log row parsing errors instead of failing a load
	DashboardPort         int           // port for the Coordinator's HTTP dashboard. Negative values disable the dashboard.
}

// CloneNodeOptions makes a copy of a NodeOptions
func CloneNodeOptions(opts *NodeOptions) *NodeOptions {
	clone := *opts
	return &clone
}

func ensureDefaultNodeOptionsValues(role NodeRole, opts *NodeOptions) error {
	// fail if certain required options are not supplied
	if role == CoordinatorRole && opts.NumWorkers <= 0 {
		return fmt.Errorf("NodeOptions.NumWorkers must be greater than 0")
	}
	if len(opts.CoordinatorHost) == 0 {
		return fmt.Errorf("NodeOptions.CoordinatorHost must be the IP address of the skyshade Coordinator")
	}
	// default certain options if not supplied
	if opts.Port == 0 {
		opts.Port = 1643
	}
	if len(opts.Host) == 0 {
		opts.Host = "0.0.0.0"
	}
	if opts.CoordinatorPort == 0 {
		opts.CoordinatorPort = 1643
	}
	if opts.RPCTimeout == 0 {
		opts.RPCTimeout = 5 * time.Second
	}
	if opts.WorkerJoinTimeout == 0 {
		opts.WorkerJoinTimeout = 60 * time.Second
	}
	if opts.WorkerJoinRetries == 0 {
		opts.WorkerJoinRetries = 5
	}
	if len(opts.TempDir) == 0 {
		opts.TempDir = os.TempDir()
	}
	if opts.NumInMemoryPartitions == 0 {
		opts.NumInMemoryPartitions = 100
	}
	if opts.CompressedFraction < 0 || opts.CompressedFraction > 1 {
		return fmt.Errorf("NodeOptions.CompressedFraction must be between 0 and 1")
	}
	if opts.MaxConcurrentLoads == 0 {
		opts.MaxConcurrentLoads = 4
	}
	if opts.DashboardPort == 0 {
		opts.DashboardPort = 8787
	}
	return nil
}

// connectionString returns the connection string for this node
func (o *NodeOptions) connectionString() string {
	return fmt.Sprintf("%s:%d", o.Host, o.Port)
}

// coordinatorConnectionString returns the connection string for the coordinator
func (o *NodeOptions) coordinatorConnectionString() string {
	return fmt.Sprintf("%s:%d", o.CoordinatorHost, o.CoordinatorPort)
}

// CreateNodeInRole creates a skyshade node in a specific role (Coordinator or Worker)
func CreateNodeInRole(role NodeRole, opts *NodeOptions) (Node, error) {
	switch role {
	case CoordinatorRole:
		return CreateCoordinator(opts)
	case WorkerRole:
		return CreateWorker(opts)
	default:
		return nil, fmt.Errorf("%s is an unknown NodeRole", role)
	}
}

// CreateNode creates a skyshade node, deriving role from environment variables
func CreateNode(opts *NodeOptions) (Node, error) {
	role := os.Getenv(NodeTypeEnvVar)
	if len(role) == 0 {
		return nil, fmt.Errorf("$%s is not set - must be \"%s\" or \"%s\"", NodeTypeEnvVar, CoordinatorRole, WorkerRole)
	}
	switch role {
	case CoordinatorRole, WorkerRole:
		return CreateNodeInRole(role, opts)
	default:
		return nil, fmt.Errorf("$%s=\"%s\" is an unknown NodeRole", NodeTypeEnvVar, role)
	}
}
