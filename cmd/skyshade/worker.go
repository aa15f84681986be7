package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-sif/skyshade/cluster"
	"github.com/go-sif/skyshade/config"
	"github.com/go-sif/skyshade/pipeline"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start a worker node, which joins the coordinator named by SKYSHADE_CLUSTER_COORDINATOR_HOST",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		node, err := cluster.CreateNodeInRole(cluster.WorkerRole, pipeline.WorkerOptions(cfg))
		if err != nil {
			return err
		}
		return startNode(node)
	},
}

var nodeCmd = &cobra.Command{
	Use:    "node",
	Short:  "Start a node in the role named by $" + cluster.NodeTypeEnvVar,
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		opts := pipeline.WorkerOptions(cfg)
		if os.Getenv(cluster.NodeTypeEnvVar) == cluster.CoordinatorRole {
			opts = pipeline.CoordinatorOptions(cfg)
		}
		node, err := cluster.CreateNode(opts)
		if err != nil {
			return err
		}
		return startNode(node)
	},
}

// startNode runs a node until it is stopped, stopping it gracefully on SIGINT or SIGTERM
func startNode(node cluster.Node) error {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)
	go func() {
		<-signals
		log.Println("Stopping...")
		node.GracefulStop()
	}()
	return node.Start()
}
