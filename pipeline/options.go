package pipeline

import (
	"github.com/go-sif/skyshade/cluster"
	"github.com/go-sif/skyshade/config"
	"github.com/go-sif/skyshade/datasource/objectstore"
	"github.com/go-sif/skyshade/provision"
)

// CoordinatorOptions derives the Coordinator's NodeOptions from a Config
func CoordinatorOptions(cfg *config.Config) *cluster.NodeOptions {
	return &cluster.NodeOptions{
		Host:              cfg.Cluster.Host,
		Port:              cfg.Cluster.CoordinatorPort,
		CoordinatorHost:   cfg.Cluster.CoordinatorHost,
		CoordinatorPort:   cfg.Cluster.CoordinatorPort,
		NumWorkers:        cfg.Cluster.Workers,
		WorkerJoinTimeout: cfg.Cluster.JoinTimeout,
		TempDir:           cfg.Cluster.TempDir,
		DashboardPort:     cfg.Cluster.DashboardPort,
	}
}

// WorkerOptions derives a Worker's NodeOptions from a Config
func WorkerOptions(cfg *config.Config) *cluster.NodeOptions {
	return &cluster.NodeOptions{
		Host:                  cfg.Cluster.Host,
		Port:                  cfg.Cluster.WorkerPort,
		CoordinatorHost:       cfg.Cluster.CoordinatorHost,
		CoordinatorPort:       cfg.Cluster.CoordinatorPort,
		TempDir:               cfg.Cluster.TempDir,
		NumInMemoryPartitions: cfg.Cluster.InMemoryPartitions,
		CompressedFraction:    cfg.Cluster.CompressedFraction,
		IgnoreRowErrors:       cfg.Cluster.IgnoreRowErrors,
	}
}

// WorkerEnv describes the environment provisioned workers need to join the Coordinator
func WorkerEnv(cfg *config.Config) provision.WorkerEnv {
	env := provision.WorkerEnv{
		CoordinatorHost: cfg.Cluster.CoordinatorHost,
		CoordinatorPort: cfg.Cluster.CoordinatorPort,
		WorkerPort:      cfg.Cluster.WorkerPort,
		Extra:           make(map[string]string),
	}
	if cfg.Cluster.IgnoreRowErrors {
		env.Extra["SKYSHADE_CLUSTER_IGNORE_ROW_ERRORS"] = "true"
	}
	if cfg.Dataset.Cloud.Enabled {
		env.Extra["SKYSHADE_S3_ENDPOINT"] = cfg.Dataset.Cloud.Endpoint
		env.Extra["SKYSHADE_S3_REGION"] = cfg.Dataset.Cloud.Region
		if cfg.Dataset.Cloud.Insecure {
			env.Extra["SKYSHADE_S3_INSECURE"] = "true"
		}
	}
	return env
}

// ObjectStoreConfig derives object store connection settings from a Config
func ObjectStoreConfig(cfg *config.Config) objectstore.Config {
	osc := objectstore.ConfigFromEnv()
	if len(cfg.Dataset.Cloud.Endpoint) > 0 {
		osc.Endpoint = cfg.Dataset.Cloud.Endpoint
	}
	if len(cfg.Dataset.Cloud.Region) > 0 {
		osc.Region = cfg.Dataset.Cloud.Region
	}
	if cfg.Dataset.Cloud.Insecure {
		osc.UseSSL = false
	}
	return osc
}
