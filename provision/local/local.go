// Package local provisions skyshade workers as goroutines within the current process
package local

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/go-sif/skyshade/cluster"
	"github.com/hashicorp/go-multierror"
)

// Provisioner starts in-process Workers on consecutive ports, beginning at BasePort
type Provisioner struct {
	opts     *cluster.NodeOptions
	basePort int
	lock     sync.Mutex
	workers  []*cluster.Worker
	wg       sync.WaitGroup
	errs     chan error
}

// New creates a Provisioner whose Workers are configured by a copy of opts.
// opts must name the Coordinator's host and port.
func New(opts *cluster.NodeOptions, basePort int) *Provisioner {
	return &Provisioner{
		opts:     cluster.CloneNodeOptions(opts),
		basePort: basePort,
	}
}

// Provision starts n Workers, which register with the Coordinator asynchronously
func (p *Provisioner) Provision(ctx context.Context, n int) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.errs == nil {
		p.errs = make(chan error, n)
	} else {
		return fmt.Errorf("workers have already been provisioned")
	}
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		wopts := cluster.CloneNodeOptions(p.opts)
		wopts.Port = p.basePort + i
		worker, err := cluster.CreateWorker(wopts)
		if err != nil {
			return err
		}
		p.workers = append(p.workers, worker)
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			if err := worker.Start(); err != nil {
				log.Printf("Worker %s stopped: %v", worker.ID(), err)
				p.errs <- fmt.Errorf("worker %s: %w", worker.ID(), err)
			}
		}()
	}
	return nil
}

// Teardown stops every Worker and waits for them to exit, returning any errors they stopped with
func (p *Provisioner) Teardown(ctx context.Context) error {
	p.lock.Lock()
	workers := p.workers
	p.workers = nil
	p.lock.Unlock()
	for _, w := range workers {
		w.Stop()
	}
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	var errs *multierror.Error
	for {
		select {
		case err := <-p.errs:
			errs = multierror.Append(errs, err)
		default:
			return errs.ErrorOrNil()
		}
	}
}

// Workers returns the IDs of the Workers started by this Provisioner
func (p *Provisioner) Workers() []string {
	p.lock.Lock()
	defer p.lock.Unlock()
	ids := make([]string, len(p.workers))
	for i, w := range p.workers {
		ids[i] = w.ID()
	}
	return ids
}
