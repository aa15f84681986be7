// Package config loads skyshade pipeline configuration from an optional file and SKYSHADE_* environment variables
package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every configuration environment variable, e.g. SKYSHADE_CLUSTER_WORKERS
const EnvPrefix = "SKYSHADE"

// Config is the configuration of a skyshade pipeline run
type Config struct {
	LogLevel string        `mapstructure:"log_level"`
	Cluster  ClusterConfig `mapstructure:"cluster"`
	Dataset  DatasetConfig `mapstructure:"dataset"`
	Render   RenderConfig  `mapstructure:"render"`
}

// ClusterConfig describes the coordinator, and the workers to provision
type ClusterConfig struct {
	Workers            int           `mapstructure:"workers"`
	Template           string        `mapstructure:"template"`
	Namespace          string        `mapstructure:"namespace"`
	Prefix             string        `mapstructure:"prefix"`
	Kubeconfig         string        `mapstructure:"kubeconfig"`
	Host               string        `mapstructure:"host"`
	CoordinatorHost    string        `mapstructure:"coordinator_host"`
	CoordinatorPort    int           `mapstructure:"coordinator_port"`
	WorkerPort         int           `mapstructure:"worker_port"`
	DashboardPort      int           `mapstructure:"dashboard_port"`
	JoinTimeout        time.Duration `mapstructure:"join_timeout"`
	TempDir            string        `mapstructure:"temp_dir"`
	InMemoryPartitions int           `mapstructure:"in_memory_partitions"`
	CompressedFraction float32       `mapstructure:"compressed_fraction"`
	IgnoreRowErrors    bool          `mapstructure:"ignore_row_errors"`
}

// DatasetConfig locates the dataset and selects its columns
type DatasetConfig struct {
	Primary       string      `mapstructure:"primary"`
	Fallback      string      `mapstructure:"fallback"`
	Cloud         CloudConfig `mapstructure:"cloud"`
	Columns       []string    `mapstructure:"columns"`
	PartitionSize int         `mapstructure:"partition_size"`
	DropNil       bool        `mapstructure:"drop_nil"`
}

// CloudConfig describes the object-store copy of the dataset, which is only considered when Enabled
type CloudConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Path     string `mapstructure:"path"`
	Endpoint string `mapstructure:"endpoint"`
	Region   string `mapstructure:"region"`
	Insecure bool   `mapstructure:"insecure"`
}

// RenderConfig describes the canvas and how it is shaded
type RenderConfig struct {
	X          string    `mapstructure:"x"`
	Y          string    `mapstructure:"y"`
	Width      int       `mapstructure:"width"`
	Height     int       `mapstructure:"height"`
	XRange     []float64 `mapstructure:"x_range"` // [min, max]. Computed from the data when empty.
	YRange     []float64 `mapstructure:"y_range"`
	Colormap   string    `mapstructure:"colormap"`
	How        string    `mapstructure:"how"`
	Background string    `mapstructure:"background"` // #rrggbb, or empty for transparent
	Output     string    `mapstructure:"output"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("cluster.workers", 4)
	v.SetDefault("cluster.template", "worker-spec.yml")
	v.SetDefault("cluster.namespace", "default")
	v.SetDefault("cluster.prefix", "skyshade")
	v.SetDefault("cluster.kubeconfig", "")
	v.SetDefault("cluster.host", "0.0.0.0")
	v.SetDefault("cluster.coordinator_host", "127.0.0.1")
	v.SetDefault("cluster.coordinator_port", 1643)
	v.SetDefault("cluster.worker_port", 1644)
	v.SetDefault("cluster.dashboard_port", 8787)
	v.SetDefault("cluster.join_timeout", 5*time.Minute)
	v.SetDefault("cluster.temp_dir", "")
	v.SetDefault("cluster.in_memory_partitions", 100)
	v.SetDefault("cluster.compressed_fraction", 0.5)
	v.SetDefault("cluster.ignore_row_errors", false)
	v.SetDefault("dataset.primary", "/data/gaia_dr2_ra_dec.parquet")
	v.SetDefault("dataset.fallback", "./data/gaia_dr2_ra_dec.parquet")
	v.SetDefault("dataset.cloud.enabled", false)
	v.SetDefault("dataset.cloud.path", "s3://datashader-data/gaia_dr2.parq")
	v.SetDefault("dataset.cloud.endpoint", "s3.amazonaws.com")
	v.SetDefault("dataset.cloud.region", "us-east-1")
	v.SetDefault("dataset.cloud.insecure", false)
	v.SetDefault("dataset.columns", []string{"ra", "dec"})
	v.SetDefault("dataset.partition_size", 4096)
	v.SetDefault("dataset.drop_nil", false)
	v.SetDefault("render.x", "ra")
	v.SetDefault("render.y", "dec")
	v.SetDefault("render.width", 900)
	v.SetDefault("render.height", 600)
	v.SetDefault("render.x_range", []float64{})
	v.SetDefault("render.y_range", []float64{})
	v.SetDefault("render.colormap", "fire")
	v.SetDefault("render.how", "eq_hist")
	v.SetDefault("render.background", "")
	v.SetDefault("render.output", "gaia.png")
}

// New returns a viper instance carrying skyshade defaults, bound to SKYSHADE_* environment variables
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from path (if not empty) and the environment, which takes precedence
func Load(path string) (*Config, error) {
	return LoadFrom(New(), path)
}

// LoadFrom reads configuration through an existing viper instance, such as one with bound command-line flags
func LoadFrom(v *viper.Viper, path string) (*Config, error) {
	if len(path) > 0 {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks a Config for values which cannot work
func (c *Config) Validate() error {
	if c.Cluster.Workers <= 0 {
		return fmt.Errorf("cluster.workers must be greater than 0")
	}
	if len(c.Dataset.Columns) == 0 {
		return fmt.Errorf("dataset.columns must name at least one column")
	}
	for _, axis := range []string{c.Render.X, c.Render.Y} {
		if !contains(c.Dataset.Columns, axis) {
			return fmt.Errorf("render column %q is not among dataset.columns %v", axis, c.Dataset.Columns)
		}
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("render dimensions must be positive, not %dx%d", c.Render.Width, c.Render.Height)
	}
	if err := validateRange("render.x_range", c.Render.XRange); err != nil {
		return err
	}
	if err := validateRange("render.y_range", c.Render.YRange); err != nil {
		return err
	}
	if len(c.Render.Output) == 0 {
		return fmt.Errorf("render.output must name a file")
	}
	return nil
}

// validateRange accepts an empty range, or a finite [min, max] with min < max
func validateRange(key string, r []float64) error {
	if len(r) == 0 {
		return nil
	}
	if len(r) != 2 {
		return fmt.Errorf("%s must be empty or [min, max]", key)
	}
	for _, v := range r {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be finite, not %v", key, r)
		}
	}
	if r[0] >= r[1] {
		return fmt.Errorf("%s minimum must be less than its maximum, not %v", key, r)
	}
	return nil
}

// Candidates returns the dataset locations to try, in order. The cloud location is
// listed even when disabled; resolution skips it unless Cloud.Enabled.
func (d DatasetConfig) Candidates() []string {
	res := make([]string, 0, 3)
	for _, c := range []string{d.Primary, d.Fallback, d.Cloud.Path} {
		if len(c) > 0 {
			res = append(res, c)
		}
	}
	return res
}

func contains(s []string, v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}
