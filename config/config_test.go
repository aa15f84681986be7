package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.Nil(t, err)
	require.Equal(t, 4, cfg.Cluster.Workers)
	require.Equal(t, "worker-spec.yml", cfg.Cluster.Template)
	require.Equal(t, 5*time.Minute, cfg.Cluster.JoinTimeout)
	require.Equal(t, "/data/gaia_dr2_ra_dec.parquet", cfg.Dataset.Primary)
	require.Equal(t, "./data/gaia_dr2_ra_dec.parquet", cfg.Dataset.Fallback)
	require.False(t, cfg.Dataset.Cloud.Enabled)
	require.Equal(t, []string{"ra", "dec"}, cfg.Dataset.Columns)
	require.Equal(t, 900, cfg.Render.Width)
	require.Equal(t, 600, cfg.Render.Height)
	require.Empty(t, cfg.Render.XRange)
	require.Equal(t, "fire", cfg.Render.Colormap)
	require.Equal(t, "eq_hist", cfg.Render.How)
	require.Equal(t, "gaia.png", cfg.Render.Output)
	require.Equal(t, []string{
		"/data/gaia_dr2_ra_dec.parquet",
		"./data/gaia_dr2_ra_dec.parquet",
		"s3://datashader-data/gaia_dr2.parq",
	}, cfg.Dataset.Candidates())
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("SKYSHADE_CLUSTER_WORKERS", "8")
	t.Setenv("SKYSHADE_DATASET_CLOUD_ENABLED", "true")
	t.Setenv("SKYSHADE_DATASET_COLUMNS", "ra,dec,phot_g_mean_mag")
	t.Setenv("SKYSHADE_RENDER_X_RANGE", "0,360")
	t.Setenv("SKYSHADE_CLUSTER_JOIN_TIMEOUT", "90s")
	cfg, err := Load("")
	require.Nil(t, err)
	require.Equal(t, 8, cfg.Cluster.Workers)
	require.True(t, cfg.Dataset.Cloud.Enabled)
	require.Equal(t, []string{"ra", "dec", "phot_g_mean_mag"}, cfg.Dataset.Columns)
	require.Equal(t, []float64{0, 360}, cfg.Render.XRange)
	require.Equal(t, 90*time.Second, cfg.Cluster.JoinTimeout)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skyshade.yml")
	contents := `
cluster:
  workers: 2
dataset:
  primary: /mnt/gaia
render:
  how: log
  y_range: [-90, 90]
`
	require.Nil(t, os.WriteFile(path, []byte(contents), 0644))
	t.Setenv("SKYSHADE_CLUSTER_WORKERS", "3")
	cfg, err := Load(path)
	require.Nil(t, err)
	// the environment takes precedence over the file
	require.Equal(t, 3, cfg.Cluster.Workers)
	require.Equal(t, "/mnt/gaia", cfg.Dataset.Primary)
	require.Equal(t, "log", cfg.Render.How)
	require.Equal(t, []float64{-90, 90}, cfg.Render.YRange)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NotNil(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		require.Nil(t, err)
		return cfg
	}
	cfg := base()
	cfg.Cluster.Workers = 0
	require.NotNil(t, cfg.Validate())

	cfg = base()
	cfg.Render.X = "l"
	require.NotNil(t, cfg.Validate())

	cfg = base()
	cfg.Render.XRange = []float64{1}
	require.NotNil(t, cfg.Validate())

	cfg = base()
	cfg.Render.Width = 0
	require.NotNil(t, cfg.Validate())

	for _, r := range [][]float64{{10, 5}, {5, 5}, {math.NaN(), 1}, {0, math.Inf(1)}} {
		cfg = base()
		cfg.Render.YRange = r
		require.NotNil(t, cfg.Validate(), "y_range %v", r)
	}

	cfg = base()
	cfg.Render.XRange = []float64{0, 360}
	cfg.Render.YRange = []float64{-90, 90}
	require.Nil(t, cfg.Validate())
}

func TestInvertedRangeFromEnvironment(t *testing.T) {
	t.Setenv("SKYSHADE_RENDER_X_RANGE", "10,5")
	_, err := Load("")
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "render.x_range")
}
