package objectstore

import (
	"testing"

	"github.com/go-sif/skyshade/datasource"
	"github.com/stretchr/testify/require"
)

func TestParseURL(t *testing.T) {
	bucket, prefix, err := ParseURL("s3://datashader-data/gaia_dr2.parq")
	require.Nil(t, err)
	require.Equal(t, "datashader-data", bucket)
	require.Equal(t, "gaia_dr2.parq", prefix)

	bucket, prefix, err = ParseURL("s3://datashader-data")
	require.Nil(t, err)
	require.Equal(t, "datashader-data", bucket)
	require.Equal(t, "", prefix)

	_, _, err = ParseURL("/data/gaia_dr2_ra_dec.parquet")
	require.NotNil(t, err)
	_, _, err = ParseURL("s3:///gaia.parq")
	require.NotNil(t, err)
}

func TestIsPartKey(t *testing.T) {
	require.True(t, isPartKey("gaia_dr2.parq/part.0.parquet"))
	require.True(t, isPartKey("gaia_dr2.parq/part.12.parq"))
	require.False(t, isPartKey("gaia_dr2.parq/_metadata"))
	require.False(t, isPartKey("gaia_dr2.parq/_common_metadata"))
	require.False(t, isPartKey("gaia_dr2.parq/.part.0.parquet.crc"))
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("SKYSHADE_S3_ENDPOINT", "")
	t.Setenv("SKYSHADE_S3_INSECURE", "")
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	cfg := ConfigFromEnv()
	require.Equal(t, "s3.amazonaws.com", cfg.Endpoint)
	require.True(t, cfg.Anonymous)
	require.True(t, cfg.UseSSL)

	t.Setenv("SKYSHADE_S3_ENDPOINT", "minio:9000")
	t.Setenv("SKYSHADE_S3_INSECURE", "1")
	t.Setenv("AWS_ACCESS_KEY_ID", "key")
	cfg = ConfigFromEnv()
	require.Equal(t, "minio:9000", cfg.Endpoint)
	require.False(t, cfg.Anonymous)
	require.False(t, cfg.UseSSL)
}

func TestLoaderIsSelfDescribing(t *testing.T) {
	pl := &PartitionLoader{
		cfg:           Config{Endpoint: "minio:9000", Anonymous: true},
		bucket:        "datashader-data",
		key:           "gaia_dr2.parq/part.3.parquet",
		rowGroup:      2,
		numRows:       1000,
		partitionSize: 256,
	}
	buf, err := pl.GobEncode()
	require.Nil(t, err)
	decoded, err := datasource.DeserializeLoader(Kind, buf)
	require.Nil(t, err)
	require.Equal(t, pl, decoded)
	require.Contains(t, decoded.ToString(), "s3://datashader-data/gaia_dr2.parq/part.3.parquet")
}
