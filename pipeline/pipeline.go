// Package pipeline runs the skyshade workflow: provision a cluster, load and persist a
// dataset projection, count it, render it to an image, and tear everything down.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-sif/skyshade"
	"github.com/go-sif/skyshade/accumulators"
	"github.com/go-sif/skyshade/cluster"
	"github.com/go-sif/skyshade/config"
	"github.com/go-sif/skyshade/datasource"
	"github.com/go-sif/skyshade/datasource/objectstore"
	"github.com/go-sif/skyshade/datasource/parquet"
	"github.com/go-sif/skyshade/logging"
	"github.com/go-sif/skyshade/provision"
	"github.com/go-sif/skyshade/shade"
	"github.com/hashicorp/go-multierror"
)

// teardownTimeout bounds each teardown step, which runs even after ctx is cancelled
const teardownTimeout = time.Minute

// Extent is the data range covered by a rendered image
type Extent struct {
	X accumulators.Range
	Y accumulators.Range
}

// Result describes a completed pipeline run
type Result struct {
	Path    string        // the dataset location which was loaded
	Rows    uint64        // the number of persisted rows
	Extent  Extent        // the ranges which were rendered
	Output  string        // the image which was written
	Elapsed time.Duration // total runtime, including teardown
}

// waiter is implemented by Provisioners which can report when their workers are running
type waiter interface {
	WaitRunning(ctx context.Context) error
}

// Run executes the pipeline against workers created by prov. Teardown always happens,
// and its failures are reported alongside any failure of the pipeline itself.
func Run(ctx context.Context, cfg *config.Config, prov provision.Provisioner) (res *Result, err error) {
	started := time.Now()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger := logging.New("pipeline", level)
	var teardownErrs *multierror.Error
	defer func() {
		if teardownErrs.ErrorOrNil() != nil {
			if err == nil {
				err = fmt.Errorf("teardown: %w", teardownErrs)
			} else {
				logger.Errorf("teardown: %v", teardownErrs)
			}
		}
		if res != nil {
			res.Elapsed = time.Since(started)
		}
		logger.Infof("Pipeline finished after %s", time.Since(started))
	}()
	teardown := func(step string, fn func(ctx context.Context) error) {
		tctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
		defer cancel()
		if err := fn(tctx); err != nil {
			teardownErrs = multierror.Append(teardownErrs, fmt.Errorf("%s: %w", step, err))
		}
	}

	// start coordinator
	coordinator, err := cluster.CreateCoordinator(CoordinatorOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("start coordinator: %w", err)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	coordinatorErrors := make(chan error, 1)
	go func() {
		err := coordinator.Start()
		if err != nil {
			logger.Errorf("Coordinator stopped: %v", err)
			cancel()
		}
		coordinatorErrors <- err
	}()
	defer teardown("stop coordinator", func(ctx context.Context) error {
		coordinator.Stop()
		select {
		case err := <-coordinatorErrors:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if cfg.Cluster.DashboardPort > 0 {
		logger.Infof("Dashboard: %s", coordinator.DashboardURL())
	}

	// provision workers
	defer teardown("teardown workers", prov.Teardown)
	if err := prov.Provision(ctx, cfg.Cluster.Workers); err != nil {
		return nil, fmt.Errorf("provision workers: %w", err)
	}
	if w, ok := prov.(waiter); ok {
		wctx, cancel := context.WithTimeout(ctx, cfg.Cluster.JoinTimeout)
		err := w.WaitRunning(wctx)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("provision workers: %w", err)
		}
	}
	client, err := coordinator.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect to cluster: %w", err)
	}
	defer teardown("stop workers", func(ctx context.Context) error {
		return client.Shutdown(ctx, true)
	})
	logger.Infof("Cluster ready with %d workers", len(client.Workers()))

	// load data
	path, frame, err := openDataset(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("load data: %w", err)
	}
	res = &Result{Path: path, Output: cfg.Render.Output}

	// persist
	pf := client.Persist(ctx, frame)
	if err := pf.Wait(ctx); err != nil {
		return res, fmt.Errorf("persist: %w", err)
	}
	logger.Infof("Persisted %d rows in %d partitions (%s)", pf.Rows(), pf.Partitions(), pf.Elapsed())
	if pf.RowErrors() > 0 {
		logger.Warnf("%d rows could not be parsed and were skipped", pf.RowErrors())
	}

	// count
	if res.Rows, err = client.Count(ctx, pf); err != nil {
		return res, fmt.Errorf("count: %w", err)
	}
	logger.Infof("Dataset %s has %d rows", path, res.Rows)

	// aggregate and render
	if res.Extent, err = extent(ctx, cfg, client, pf); err != nil {
		return res, fmt.Errorf("compute extent: %w", err)
	}
	acc, err := client.Accumulate(ctx, pf, accumulators.Binner(accumulators.CanvasSpec{
		X:      cfg.Render.X,
		Y:      cfg.Render.Y,
		Width:  cfg.Render.Width,
		Height: cfg.Render.Height,
		XRange: res.Extent.X,
		YRange: res.Extent.Y,
	}))
	if err != nil {
		return res, fmt.Errorf("aggregate: %w", err)
	}
	canvas := acc.(*accumulators.Canvas)
	logger.Infof("Binned %d rows into a %dx%d canvas (%d skipped)", canvas.Total(), canvas.Width(), canvas.Height(), canvas.Skipped())
	if err := render(cfg, canvas); err != nil {
		return res, fmt.Errorf("render: %w", err)
	}
	logger.Infof("Wrote %s", cfg.Render.Output)
	return res, nil
}

// openDataset resolves the dataset location and builds a DataFrame projecting the configured columns
func openDataset(ctx context.Context, cfg *config.Config, logger *logging.Logger) (string, skyshade.DataFrame, error) {
	osc := ObjectStoreConfig(cfg)
	resolver := datasource.NewResolver().WithLogger(logger)
	if cfg.Dataset.Cloud.Enabled {
		resolver = resolver.WithScheme(objectstore.Scheme, objectstore.Exists(osc))
	}
	path, err := resolver.Resolve(ctx, cfg.Dataset.Candidates()...)
	if err != nil {
		return "", nil, err
	}
	log.Printf("Loading columns %v from %s", cfg.Dataset.Columns, path)
	conf := &parquet.Conf{PartitionSize: cfg.Dataset.PartitionSize}
	var frame skyshade.DataFrame
	if scheme, ok := datasource.SchemeOf(path); ok && scheme == objectstore.Scheme {
		frame, err = objectstore.CreateDataFrame(ctx, osc, path, conf, cfg.Dataset.Columns...)
	} else {
		frame, err = parquet.CreateDataFrame(path, conf, cfg.Dataset.Columns...)
	}
	if err != nil {
		return path, nil, err
	}
	if cfg.Dataset.DropNil {
		frame = frame.DropNil()
	}
	return path, frame, nil
}

// extent returns the configured ranges, computing any which are unset from the data
func extent(ctx context.Context, cfg *config.Config, client *cluster.Client, pf *cluster.PersistedFrame) (Extent, error) {
	var e Extent
	if len(cfg.Render.XRange) == 2 && len(cfg.Render.YRange) == 2 {
		e.X = accumulators.Range{Min: cfg.Render.XRange[0], Max: cfg.Render.XRange[1]}
		e.Y = accumulators.Range{Min: cfg.Render.YRange[0], Max: cfg.Render.YRange[1]}
		return e, nil
	}
	acc, err := client.Accumulate(ctx, pf, accumulators.Ranger(cfg.Render.X, cfg.Render.Y))
	if err != nil {
		return e, err
	}
	ext := acc.(*accumulators.Extent)
	var xok, yok bool
	e.X, xok = ext.Get(cfg.Render.X)
	e.Y, yok = ext.Get(cfg.Render.Y)
	if !xok || !yok {
		return e, fmt.Errorf("no non-nil values of %s and %s to render", cfg.Render.X, cfg.Render.Y)
	}
	if len(cfg.Render.XRange) == 2 {
		e.X = accumulators.Range{Min: cfg.Render.XRange[0], Max: cfg.Render.XRange[1]}
	}
	if len(cfg.Render.YRange) == 2 {
		e.Y = accumulators.Range{Min: cfg.Render.YRange[0], Max: cfg.Render.YRange[1]}
	}
	log.Printf("Rendering %s in [%g, %g] and %s in [%g, %g]", cfg.Render.X, e.X.Min, e.X.Max, cfg.Render.Y, e.Y.Min, e.Y.Max)
	return e, nil
}

// render shades a Canvas and writes it as a PNG
func render(cfg *config.Config, canvas *accumulators.Canvas) error {
	cmap, err := shade.ColormapByName(cfg.Render.Colormap)
	if err != nil {
		return err
	}
	how, err := shade.TransferByName(cfg.Render.How)
	if err != nil {
		return err
	}
	opts := shade.Options{Colormap: cmap, How: how}
	if len(cfg.Render.Background) > 0 {
		bg, err := shade.ParseColor(cfg.Render.Background)
		if err != nil {
			return err
		}
		opts.Background = bg
	}
	img, err := shade.Shade(canvas, opts)
	if err != nil {
		return err
	}
	return shade.SavePNG(cfg.Render.Output, img)
}
