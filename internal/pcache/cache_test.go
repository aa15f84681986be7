package pcache

import (
	"os"
	"path"
	"sync"
	"testing"

	"github.com/go-sif/skyshade"
	"github.com/go-sif/skyshade/internal/partition"
	"github.com/go-sif/skyshade/schema"
	"github.com/stretchr/testify/require"
)

func createTestSchema() skyshade.Schema {
	schema := schema.CreateSchema()
	schema.CreateColumn("ra", &skyshade.Float64ColumnType{})
	schema.CreateColumn("dec", &skyshade.Float64ColumnType{})
	return schema
}

func createTestPartition(t *testing.T, schema skyshade.Schema, base float64) skyshade.Partition {
	part := partition.CreateBuildablePartition(16, schema)
	tempRow := partition.CreateTempRow()
	for i := 0; i < 16; i++ {
		row, err := part.AppendEmptyRowData(tempRow)
		require.Nil(t, err)
		require.Nil(t, row.SetFloat64("ra", base+float64(i)))
		require.Nil(t, row.SetFloat64("dec", -base))
	}
	return part
}

func requireFirstRa(t *testing.T, part skyshade.Partition, expected float64) {
	ra, err := part.GetRow(0).GetFloat64("ra")
	require.Nil(t, err)
	require.Equal(t, expected, ra)
}

func TestCacheTiers(t *testing.T) {
	schema := createTestSchema()
	cache := NewLRU(&LRUConfig{
		Size:               4,
		CompressedFraction: 0.5,
		DiskPath:           t.TempDir(),
		Schema:             schema,
	})
	defer cache.Destroy()
	iCache, ok := cache.(*lru)
	require.True(t, ok)

	ids := make([]string, 10)
	for i := 0; i < 10; i++ {
		part := createTestPartition(t, schema, float64(i*100))
		ids[i] = part.ID()
		require.Nil(t, cache.Add(part.ID(), part))
	}
	require.Equal(t, 10, cache.Len())
	require.Equal(t, 4, cache.CurrentSize())
	require.Equal(t, 2, len(iCache.pmap))
	require.Equal(t, 2, len(iCache.compressedPmap))
	require.Equal(t, 6, len(iCache.diskMap))
	require.Equal(t, ids, cache.Keys())

	// every partition is still retrievable, from any tier
	for i, id := range ids {
		part, err := cache.Get(id)
		require.Nil(t, err)
		require.Equal(t, id, part.ID())
		require.Equal(t, 16, part.GetNumRows())
		requireFirstRa(t, part, float64(i*100))
	}
}

func TestCacheRemoveAndDestroy(t *testing.T) {
	schema := createTestSchema()
	dir := t.TempDir()
	cache := NewLRU(&LRUConfig{Size: 2, CompressedFraction: 0.5, DiskPath: dir, Schema: schema})
	ids := make([]string, 4)
	for i := range ids {
		part := createTestPartition(t, schema, float64(i))
		ids[i] = part.ID()
		require.Nil(t, cache.Add(part.ID(), part))
	}
	_, err := os.Stat(path.Join(dir, ids[0]))
	require.Nil(t, err)
	cache.Remove(ids[0])
	_, err = os.Stat(path.Join(dir, ids[0]))
	require.True(t, os.IsNotExist(err))
	_, err = cache.Get(ids[0])
	require.NotNil(t, err)
	require.Equal(t, 3, cache.Len())

	cache.Destroy()
	_, err = os.Stat(path.Join(dir, ids[1]))
	require.True(t, os.IsNotExist(err))
	require.Equal(t, 0, cache.Len())
}

func TestCacheDetectsCorruption(t *testing.T) {
	schema := createTestSchema()
	dir := t.TempDir()
	cache := NewLRU(&LRUConfig{Size: 1, CompressedFraction: 0, DiskPath: dir, Schema: schema})
	defer cache.Destroy()
	first := createTestPartition(t, schema, 1)
	require.Nil(t, cache.Add(first.ID(), first))
	second := createTestPartition(t, schema, 2)
	require.Nil(t, cache.Add(second.ID(), second))
	require.Nil(t, cache.Add(first.ID()+"-dup", first))
	require.NotNil(t, cache.Add(second.ID(), second))

	f, err := os.OpenFile(path.Join(dir, first.ID()), os.O_WRONLY, 0600)
	require.Nil(t, err)
	_, err = f.WriteAt([]byte{0xff, 0xff}, 12)
	require.Nil(t, err)
	require.Nil(t, f.Close())
	_, err = cache.Get(first.ID())
	require.NotNil(t, err)
}

func TestCacheResize(t *testing.T) {
	schema := createTestSchema()
	cache := NewLRU(&LRUConfig{Size: 10, CompressedFraction: 0.2, DiskPath: t.TempDir(), Schema: schema})
	defer cache.Destroy()
	for i := 0; i < 10; i++ {
		part := createTestPartition(t, schema, float64(i))
		require.Nil(t, cache.Add(part.ID(), part))
	}
	require.Equal(t, 10, cache.CurrentSize())
	cache.Resize(5)
	require.Equal(t, 5, cache.CurrentSize())
	require.Equal(t, 10, cache.Len())
}

func TestCacheConcurrentAccess(t *testing.T) {
	schema := createTestSchema()
	cache := NewLRU(&LRUConfig{Size: 4, CompressedFraction: 0.5, DiskPath: t.TempDir(), Schema: schema})
	defer cache.Destroy()
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				part := createTestPartition(t, schema, float64(w*1000+i))
				require.Nil(t, cache.Add(part.ID(), part))
				got, err := cache.Get(part.ID())
				require.Nil(t, err)
				requireFirstRa(t, got, float64(w*1000+i))
			}
		}(w)
	}
	wg.Wait()
	require.Equal(t, 40, cache.Len())
}
