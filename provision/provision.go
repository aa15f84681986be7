// Package provision requests worker nodes for a skyshade cluster from some orchestrator
package provision

import (
	"context"
	"fmt"
	"net"
	"os"
	"sort"
	"strconv"
)

// Environment variables read by `skyshade worker`
const (
	NodeTypeVar        = "SKYSHADE_NODE_TYPE"
	CoordinatorHostVar = "SKYSHADE_CLUSTER_COORDINATOR_HOST"
	CoordinatorPortVar = "SKYSHADE_CLUSTER_COORDINATOR_PORT"
	WorkerPortVar      = "SKYSHADE_CLUSTER_WORKER_PORT"
	// PodIPVar is set through the downward API when the coordinator itself runs in a pod
	PodIPVar = "POD_IP"
)

// A Provisioner starts and stops worker nodes
type Provisioner interface {
	// Provision requests n workers. It returns once the requests are accepted, not once workers have joined.
	Provision(ctx context.Context, n int) error
	// Teardown removes every worker this Provisioner created
	Teardown(ctx context.Context) error
	// Workers returns the names of the workers this Provisioner created
	Workers() []string
}

// EnvVar is a single environment variable
type EnvVar struct {
	Name  string
	Value string
}

// WorkerEnv describes the environment injected into each worker, telling it how to reach the coordinator
type WorkerEnv struct {
	CoordinatorHost string
	CoordinatorPort int
	WorkerPort      int
	Extra           map[string]string
}

// Vars returns the worker environment, sorted by name
func (e WorkerEnv) Vars() []EnvVar {
	vars := make(map[string]string, len(e.Extra)+4)
	for k, v := range e.Extra {
		vars[k] = v
	}
	vars[NodeTypeVar] = "worker"
	vars[CoordinatorHostVar] = e.CoordinatorHost
	if e.CoordinatorPort > 0 {
		vars[CoordinatorPortVar] = strconv.Itoa(e.CoordinatorPort)
	}
	if e.WorkerPort > 0 {
		vars[WorkerPortVar] = strconv.Itoa(e.WorkerPort)
	}
	res := make([]EnvVar, 0, len(vars))
	for k, v := range vars {
		res = append(res, EnvVar{Name: k, Value: v})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res
}

// AdvertiseHost returns the coordinator address remote workers should dial. A configured
// host is kept unless it is empty or a loopback address, in which case $POD_IP is used,
// followed by the first non-loopback address this machine's hostname resolves to.
func AdvertiseHost(configured string) (string, error) {
	return advertiseHost(configured, os.Getenv(PodIPVar), lookupOwnAddresses)
}

func advertiseHost(configured string, podIP string, lookup func() ([]net.IP, error)) (string, error) {
	if len(configured) > 0 && !isLoopback(configured) {
		return configured, nil
	}
	if len(podIP) > 0 && !isLoopback(podIP) {
		return podIP, nil
	}
	ips, err := lookup()
	if err == nil {
		for _, ip := range ips {
			if !ip.IsLoopback() && !ip.IsUnspecified() && ip.To4() != nil {
				return ip.String(), nil
			}
		}
	}
	return "", fmt.Errorf("coordinator host %q is not reachable from remote workers and no other address was found; set cluster.coordinator_host or $%s", configured, PodIPVar)
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && (ip.IsLoopback() || ip.IsUnspecified())
}

func lookupOwnAddresses() ([]net.IP, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, err
	}
	return net.LookupIP(hostname)
}
