package cluster

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNodeOptionsDefaults(t *testing.T) {
	opts := &NodeOptions{CoordinatorHost: "127.0.0.1", NumWorkers: 2}
	require.Nil(t, ensureDefaultNodeOptionsValues(CoordinatorRole, opts))
	require.Equal(t, 1643, opts.Port)
	require.Equal(t, "0.0.0.0", opts.Host)
	require.Equal(t, 1643, opts.CoordinatorPort)
	require.Equal(t, 60*time.Second, opts.WorkerJoinTimeout)
	require.Equal(t, 5, opts.WorkerJoinRetries)
	require.Equal(t, os.TempDir(), opts.TempDir)
	require.Equal(t, 100, opts.NumInMemoryPartitions)
	require.Equal(t, 4, opts.MaxConcurrentLoads)
	require.Equal(t, 8787, opts.DashboardPort)
	require.Equal(t, "127.0.0.1:1643", opts.coordinatorConnectionString())
}

func TestNodeOptionsValidation(t *testing.T) {
	require.NotNil(t, ensureDefaultNodeOptionsValues(CoordinatorRole, &NodeOptions{CoordinatorHost: "127.0.0.1"}))
	require.NotNil(t, ensureDefaultNodeOptionsValues(WorkerRole, &NodeOptions{}))
	require.Nil(t, ensureDefaultNodeOptionsValues(WorkerRole, &NodeOptions{CoordinatorHost: "127.0.0.1"}))
	require.NotNil(t, ensureDefaultNodeOptionsValues(WorkerRole, &NodeOptions{CoordinatorHost: "127.0.0.1", CompressedFraction: 1.5}))
}

func TestCloneNodeOptions(t *testing.T) {
	opts := &NodeOptions{CoordinatorHost: "127.0.0.1", Port: 8080}
	clone := CloneNodeOptions(opts)
	clone.Port = 8081
	require.Equal(t, 8080, opts.Port)
	require.Equal(t, "127.0.0.1", clone.CoordinatorHost)
}

func TestCreateNode(t *testing.T) {
	t.Setenv(NodeTypeEnvVar, "")
	_, err := CreateNode(&NodeOptions{CoordinatorHost: "127.0.0.1"})
	require.NotNil(t, err)

	t.Setenv(NodeTypeEnvVar, "janitor")
	_, err = CreateNode(&NodeOptions{CoordinatorHost: "127.0.0.1"})
	require.NotNil(t, err)

	t.Setenv(NodeTypeEnvVar, WorkerRole)
	node, err := CreateNode(&NodeOptions{CoordinatorHost: "127.0.0.1"})
	require.Nil(t, err)
	require.False(t, node.IsCoordinator())

	t.Setenv(NodeTypeEnvVar, CoordinatorRole)
	node, err = CreateNode(&NodeOptions{CoordinatorHost: "127.0.0.1", NumWorkers: 1})
	require.Nil(t, err)
	require.True(t, node.IsCoordinator())
}
