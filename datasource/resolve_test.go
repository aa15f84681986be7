package datasource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	errors "github.com/go-sif/skyshade/errors"
	"github.com/stretchr/testify/require"
)

func TestResolvePathPrefersPrimary(t *testing.T) {
	dir := t.TempDir()
	primary := filepath.Join(dir, "primary.parquet")
	fallback := filepath.Join(dir, "fallback.parquet")
	require.Nil(t, os.WriteFile(primary, []byte{}, 0644))
	require.Nil(t, os.WriteFile(fallback, []byte{}, 0644))
	path, err := ResolvePath(primary, fallback)
	require.Nil(t, err)
	require.Equal(t, primary, path)
}

func TestResolvePathFallsBack(t *testing.T) {
	dir := t.TempDir()
	primary := filepath.Join(dir, "missing.parquet")
	fallback := filepath.Join(dir, "fallback.parquet")
	require.Nil(t, os.Mkdir(fallback, 0755))
	path, err := ResolvePath(primary, fallback)
	require.Nil(t, err)
	require.Equal(t, fallback, path)
}

func TestResolvePathNotFound(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.parquet")
	b := filepath.Join(dir, "b.parquet")
	_, err := ResolvePath(a, b, "s3://bucket/c.parq")
	require.NotNil(t, err)
	notFound, ok := err.(errors.DatasetNotFoundError)
	require.True(t, ok)
	require.Equal(t, []string{a, b, "s3://bucket/c.parq"}, notFound.Candidates)
}

func TestResolveWithScheme(t *testing.T) {
	dir := t.TempDir()
	checked := []string{}
	r := NewResolver().WithScheme("s3", func(ctx context.Context, location string) (bool, error) {
		checked = append(checked, location)
		return location == "s3://bucket/present.parq", nil
	})
	path, err := r.Resolve(context.Background(), filepath.Join(dir, "missing"), "s3://bucket/absent.parq", "s3://bucket/present.parq")
	require.Nil(t, err)
	require.Equal(t, "s3://bucket/present.parq", path)
	require.Equal(t, []string{"s3://bucket/absent.parq", "s3://bucket/present.parq"}, checked)

	r = NewResolver().WithScheme("s3", func(ctx context.Context, location string) (bool, error) {
		return false, fmt.Errorf("access denied")
	})
	_, err = r.Resolve(context.Background(), "s3://bucket/present.parq")
	require.NotNil(t, err)
	_, isNotFound := err.(errors.DatasetNotFoundError)
	require.False(t, isNotFound)
}

func TestResolveStatFailure(t *testing.T) {
	r := NewResolver()
	r.stat = func(name string) (os.FileInfo, error) {
		return nil, os.ErrPermission
	}
	_, err := r.Resolve(context.Background(), "/data/gaia.parquet")
	require.NotNil(t, err)
	_, isNotFound := err.(errors.DatasetNotFoundError)
	require.False(t, isNotFound)
}

func TestSchemeOf(t *testing.T) {
	scheme, ok := SchemeOf("S3://datashader-data/gaia_dr2.parq")
	require.True(t, ok)
	require.Equal(t, "s3", scheme)
	_, ok = SchemeOf("/data/gaia_dr2_ra_dec.parquet")
	require.False(t, ok)
	_, ok = SchemeOf("./data/odd://name")
	require.False(t, ok)
}
