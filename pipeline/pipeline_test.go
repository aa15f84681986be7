package pipeline

import (
	"context"
	goerrors "errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-sif/skyshade/accumulators"
	"github.com/go-sif/skyshade/config"
	"github.com/go-sif/skyshade/errors"
	"github.com/go-sif/skyshade/provision/local"
	pq "github.com/segmentio/parquet-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type star struct {
	RA  float64  `parquet:"ra"`
	Dec *float64 `parquet:"dec,optional"`
	Mag float32  `parquet:"phot_g_mean_mag"`
}

// writeStars writes two row groups of 25 stars each, starting at index offset. Every 10th star has no dec.
// dec cycles through [-30, 29], and stars which would have a dec of 29 have none, so the largest dec is 28.
func writeStars(t *testing.T, path string, offset int) {
	f, err := os.Create(path)
	require.Nil(t, err)
	defer f.Close()
	w := pq.NewGenericWriter[star](f)
	for g := 0; g < 2; g++ {
		batch := make([]star, 25)
		for i := range batch {
			idx := offset + g*25 + i
			batch[i] = star{RA: float64(idx), Mag: 12}
			if idx%10 != 9 {
				dec := float64(idx%60) - 30
				batch[i].Dec = &dec
			}
		}
		_, err := w.Write(batch)
		require.Nil(t, err)
		require.Nil(t, w.Flush())
	}
	require.Nil(t, w.Close())
}

// writeSingleRowGroup writes n stars into a single row group, numbered and nil'd like writeStars
func writeSingleRowGroup(t *testing.T, path string, n int) {
	f, err := os.Create(path)
	require.Nil(t, err)
	defer f.Close()
	w := pq.NewGenericWriter[star](f)
	batch := make([]star, n)
	for idx := range batch {
		batch[idx] = star{RA: float64(idx), Mag: 12}
		if idx%10 != 9 {
			dec := float64(idx%60) - 30
			batch[idx].Dec = &dec
		}
	}
	_, err = w.Write(batch)
	require.Nil(t, err)
	require.Nil(t, w.Close())
}

func testConfig(t *testing.T, port int, fallback string) *config.Config {
	cfg, err := config.Load("")
	require.Nil(t, err)
	cfg.Cluster.Workers = 2
	cfg.Cluster.Host = "127.0.0.1"
	cfg.Cluster.CoordinatorHost = "127.0.0.1"
	cfg.Cluster.CoordinatorPort = port
	cfg.Cluster.WorkerPort = port + 1
	cfg.Cluster.DashboardPort = -1
	cfg.Cluster.JoinTimeout = 10 * time.Second
	cfg.Cluster.TempDir = t.TempDir()
	cfg.Cluster.InMemoryPartitions = 2
	cfg.Dataset.Primary = filepath.Join(t.TempDir(), "missing.parquet")
	cfg.Dataset.Fallback = fallback
	cfg.Dataset.PartitionSize = 8
	cfg.Render.Width = 20
	cfg.Render.Height = 10
	cfg.Render.Output = filepath.Join(t.TempDir(), "gaia.png")
	return cfg
}

func TestRunFallsBackAndRenders(t *testing.T) {
	defer goleak.VerifyNone(t)
	dir := t.TempDir()
	writeStars(t, filepath.Join(dir, "part.0.parquet"), 0)
	writeStars(t, filepath.Join(dir, "part.1.parquet"), 50)
	cfg := testConfig(t, 8480, dir)

	prov := local.New(WorkerOptions(cfg), cfg.Cluster.WorkerPort)
	res, err := Run(context.Background(), cfg, prov)
	require.Nil(t, err)
	require.Equal(t, dir, res.Path)
	require.EqualValues(t, 100, res.Rows)
	require.Equal(t, accumulators.Range{Min: 0, Max: 99}, res.Extent.X)
	require.Equal(t, accumulators.Range{Min: -30, Max: 28}, res.Extent.Y)
	require.True(t, res.Elapsed > 0)
	require.Empty(t, prov.Workers())

	f, err := os.Open(res.Output)
	require.Nil(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.Nil(t, err)
	require.Equal(t, 20, img.Bounds().Dx())
	require.Equal(t, 10, img.Bounds().Dy())
}

func TestRunSingleRowGroupOnManyWorkers(t *testing.T) {
	defer goleak.VerifyNone(t)
	path := filepath.Join(t.TempDir(), "gaia_dr2_ra_dec.parquet")
	writeSingleRowGroup(t, path, 30)
	cfg := testConfig(t, 8880, path)
	cfg.Cluster.Workers = 4

	prov := local.New(WorkerOptions(cfg), cfg.Cluster.WorkerPort)
	res, err := Run(context.Background(), cfg, prov)
	require.Nil(t, err)
	require.Equal(t, path, res.Path)
	require.EqualValues(t, 30, res.Rows)
	require.Equal(t, accumulators.Range{Min: 0, Max: 29}, res.Extent.X)
	require.Equal(t, accumulators.Range{Min: -30, Max: -2}, res.Extent.Y)
	require.Empty(t, prov.Workers())
	_, err = os.Stat(res.Output)
	require.Nil(t, err)
}

func TestRunConfiguredRange(t *testing.T) {
	defer goleak.VerifyNone(t)
	dir := t.TempDir()
	writeStars(t, filepath.Join(dir, "part.0.parquet"), 0)
	cfg := testConfig(t, 8580, dir)
	cfg.Dataset.DropNil = true
	cfg.Render.XRange = []float64{0, 360}
	cfg.Render.YRange = []float64{-90, 90}
	cfg.Render.How = "log"
	cfg.Render.Colormap = "viridis"
	cfg.Render.Background = "#000000"

	res, err := Run(context.Background(), cfg, local.New(WorkerOptions(cfg), cfg.Cluster.WorkerPort))
	require.Nil(t, err)
	require.EqualValues(t, 45, res.Rows)
	require.Equal(t, accumulators.Range{Min: 0, Max: 360}, res.Extent.X)
}

func TestRunDatasetNotFound(t *testing.T) {
	defer goleak.VerifyNone(t)
	cfg := testConfig(t, 8680, filepath.Join(t.TempDir(), "also-missing.parquet"))
	prov := local.New(WorkerOptions(cfg), cfg.Cluster.WorkerPort)
	_, err := Run(context.Background(), cfg, prov)
	require.NotNil(t, err)
	var notFound errors.DatasetNotFoundError
	require.True(t, goerrors.As(err, &notFound))
	// the disabled cloud location is still listed
	require.Len(t, notFound.Candidates, 3)
	// workers are torn down regardless
	require.Empty(t, prov.Workers())
	_, err = os.Stat(cfg.Render.Output)
	require.True(t, os.IsNotExist(err))
}

func TestRunInvalidConfig(t *testing.T) {
	cfg := testConfig(t, 8780, "")
	cfg.Render.Colormap = "rainbow"
	cfg.Cluster.Workers = 0
	_, err := Run(context.Background(), cfg, local.New(WorkerOptions(cfg), cfg.Cluster.WorkerPort))
	require.NotNil(t, err)
}

func TestWorkerEnv(t *testing.T) {
	cfg, err := config.Load("")
	require.Nil(t, err)
	cfg.Dataset.Cloud.Enabled = true
	env := WorkerEnv(cfg)
	require.Equal(t, "127.0.0.1", env.CoordinatorHost)
	require.Equal(t, 1643, env.CoordinatorPort)
	require.Equal(t, "s3.amazonaws.com", env.Extra["SKYSHADE_S3_ENDPOINT"])
	opts := WorkerOptions(cfg)
	require.Equal(t, 1644, opts.Port)
	require.Equal(t, 1643, opts.CoordinatorPort)
}
