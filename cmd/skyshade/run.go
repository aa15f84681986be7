package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-sif/skyshade/config"
	"github.com/go-sif/skyshade/pipeline"
	"github.com/go-sif/skyshade/provision"
	"github.com/go-sif/skyshade/provision/kube"
	"github.com/go-sif/skyshade/provision/local"
	"github.com/spf13/cobra"
)

var runLocal bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: provision, load, persist, count, render, tear down",
	RunE: func(cmd *cobra.Command, args []string) error {
		v := config.New()
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return err
		}
		cfg, err := config.LoadFrom(v, configFile)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		prov, err := createProvisioner(cfg)
		if err != nil {
			return err
		}
		res, err := pipeline.Run(ctx, cfg, prov)
		if err != nil {
			return err
		}
		log.Printf("Rendered %d rows from %s to %s in %s", res.Rows, res.Path, res.Output, res.Elapsed)
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runLocal, "local", false, "run workers in-process instead of provisioning Kubernetes pods")
	// flag names match configuration keys, so that viper can bind them
	runCmd.Flags().Int("cluster.workers", 4, "number of workers to provision")
	runCmd.Flags().String("cluster.template", "worker-spec.yml", "worker pod template")
	runCmd.Flags().String("cluster.namespace", "default", "namespace for worker pods")
	runCmd.Flags().String("cluster.kubeconfig", "", "kubeconfig file; in-cluster configuration is used when empty")
	runCmd.Flags().String("render.output", "gaia.png", "output image")
}

func createProvisioner(cfg *config.Config) (provision.Provisioner, error) {
	if runLocal {
		opts := pipeline.WorkerOptions(cfg)
		opts.Host = "127.0.0.1"
		opts.CoordinatorHost = "127.0.0.1"
		return local.New(opts, cfg.Cluster.WorkerPort), nil
	}
	kcfg, err := kubeConfig(cfg)
	if err != nil {
		return nil, err
	}
	clientset, err := kube.NewClientset(cfg.Cluster.Kubeconfig)
	if err != nil {
		return nil, err
	}
	prov, err := kube.New(clientset, kcfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create kubernetes provisioner: %w", err)
	}
	return prov, nil
}

// kubeConfig describes the worker pods to provision. Pods cannot dial the coordinator
// on loopback, so the coordinator host they are given is resolved to a routable address.
func kubeConfig(cfg *config.Config) (kube.Config, error) {
	template, err := kube.LoadTemplate(cfg.Cluster.Template)
	if err != nil {
		return kube.Config{}, err
	}
	host, err := provision.AdvertiseHost(cfg.Cluster.CoordinatorHost)
	if err != nil {
		return kube.Config{}, err
	}
	if host != cfg.Cluster.CoordinatorHost {
		log.Printf("Advertising coordinator to workers as %s instead of %q", host, cfg.Cluster.CoordinatorHost)
	}
	env := pipeline.WorkerEnv(cfg)
	env.CoordinatorHost = host
	return kube.Config{
		Namespace: cfg.Cluster.Namespace,
		Prefix:    cfg.Cluster.Prefix,
		Template:  template,
		Env:       env,
	}, nil
}
