package pcache

import (
	"container/list"
	"encoding/binary"
	"fmt"
	"log"
	"os"
	"path"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/docker/docker/pkg/locker"
	"github.com/go-sif/skyshade"
	"github.com/go-sif/skyshade/internal/partition"
	"github.com/klauspost/compress/zstd"
)

const checksumSize = 8

// lru is an LRU cache for Partitions
type lru struct {
	config                 *LRUConfig
	compressor             *zstd.Encoder
	decompressor           *zstd.Decoder
	plocks                 *locker.Locker
	lock                   sync.Mutex
	keys                   []string
	pmap                   map[string]*list.Element
	compressedPmap         map[string]*list.Element
	diskMap                map[string]string
	recentUncompressedList *list.List // back is oldest, front is newest
	recentCompressedList   *list.List // back is oldest, front is newest
	maxUncompressed        int
	maxCompressed          int
}

type cachedPartition struct {
	key   string
	value skyshade.Partition
}

type cachedCompressedPartition struct {
	key   string
	value []byte
}

// LRUConfig configures an LRU PartitionCache
type LRUConfig struct {
	Size               int     // the number of Partitions held in memory
	CompressedFraction float32 // the fraction of in-memory Partitions which are held compressed
	DiskPath           string  // the directory in which swapped Partitions are written
	Schema             skyshade.Schema
}

// NewLRU produces an LRU PartitionCache
func NewLRU(config *LRUConfig) PartitionCache {
	if config.Size < 1 {
		log.Panicf("LRUConfig.Size %d must be at least 1", config.Size)
	}
	if config.CompressedFraction < 0 || config.CompressedFraction > 1 {
		log.Panicf("LRUConfig.CompressedFraction %f must be between 0 and 1", config.CompressedFraction)
	}
	if config.Schema == nil {
		log.Panicf("LRUConfig.Schema was nil")
	}
	// init compressor/decompressor
	compressor, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		log.Fatalf("Unable to initialize compressor: %v", err)
	}
	decompressor, err := zstd.NewReader(nil)
	if err != nil {
		log.Fatalf("Unable to initialize decompressor: %v", err)
	}
	c := &lru{
		compressor:             compressor,
		decompressor:           decompressor,
		config:                 config,
		plocks:                 locker.New(),
		keys:                   make([]string, 0),
		pmap:                   make(map[string]*list.Element),
		compressedPmap:         make(map[string]*list.Element),
		diskMap:                make(map[string]string),
		recentUncompressedList: list.New(),
		recentCompressedList:   list.New(),
	}
	c.setLimits(config.Size)
	return c
}

func (c *lru) setLimits(size int) {
	c.maxUncompressed = int(float32(size) * (1 - c.config.CompressedFraction))
	if c.maxUncompressed < 1 {
		c.maxUncompressed = 1
	}
	c.maxCompressed = size - c.maxUncompressed
}

// Destroy removes all Partitions from this cache, including those swapped to disk
func (c *lru) Destroy() {
	c.lock.Lock()
	toDelete := make([]string, 0, len(c.diskMap))
	for key := range c.diskMap {
		toDelete = append(toDelete, key)
	}
	c.keys = make([]string, 0)
	c.pmap = make(map[string]*list.Element)
	c.compressedPmap = make(map[string]*list.Element)
	c.diskMap = make(map[string]string)
	c.recentUncompressedList.Init()
	c.recentCompressedList.Init()
	c.lock.Unlock()
	for _, key := range toDelete {
		c.removeFromDisk(key)
	}
	c.compressor.Close()
	c.decompressor.Close()
}

// Add inserts a Partition into the cache, evicting older Partitions to compressed memory and disk as necessary
func (c *lru) Add(key string, value skyshade.Partition) error {
	c.lock.Lock()
	if c.contains(key) {
		c.lock.Unlock()
		return fmt.Errorf("Partition %s is already in the cache", key)
	}
	c.keys = append(c.keys, key)
	c.pmap[key] = c.recentUncompressedList.PushFront(&cachedPartition{key: key, value: value})
	swapped, err := c.evict()
	c.lock.Unlock()
	if err != nil {
		return err
	}
	return c.writeSwapped(swapped)
}

func (c *lru) contains(key string) bool {
	if _, ok := c.pmap[key]; ok {
		return true
	}
	if _, ok := c.compressedPmap[key]; ok {
		return true
	}
	_, ok := c.diskMap[key]
	return ok
}

// evict moves Partitions down the tiers until every tier respects its limit.
// Must be called while holding c.lock. Partitions bound for disk are returned
// with their per-key lock held, so that they can be written after c.lock is released.
func (c *lru) evict() ([]*cachedCompressedPartition, error) {
	for c.recentUncompressedList.Len() > c.maxUncompressed {
		toCompress := c.recentUncompressedList.Back()
		cp := toCompress.Value.(*cachedPartition)
		buf, err := cp.value.ToBytes()
		if err != nil {
			return nil, fmt.Errorf("unable to serialize partition %s: %w", cp.key, err)
		}
		c.recentUncompressedList.Remove(toCompress)
		delete(c.pmap, cp.key)
		c.compressedPmap[cp.key] = c.recentCompressedList.PushFront(&cachedCompressedPartition{
			key:   cp.key,
			value: c.compressor.EncodeAll(buf, nil),
		})
	}
	var swapped []*cachedCompressedPartition
	for c.recentCompressedList.Len() > c.maxCompressed {
		toSwap := c.recentCompressedList.Back()
		ccp := toSwap.Value.(*cachedCompressedPartition)
		c.recentCompressedList.Remove(toSwap)
		delete(c.compressedPmap, ccp.key)
		c.diskMap[ccp.key] = path.Join(c.config.DiskPath, ccp.key)
		c.plocks.Lock(ccp.key)
		swapped = append(swapped, ccp)
	}
	return swapped, nil
}

// writeSwapped writes compressed partitions to disk, prefixed with a checksum, releasing their per-key locks
func (c *lru) writeSwapped(swapped []*cachedCompressedPartition) error {
	var firstErr error
	for _, ccp := range swapped {
		err := c.writeToDisk(ccp)
		c.plocks.Unlock(ccp.key)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (c *lru) writeToDisk(ccp *cachedCompressedPartition) error {
	tempFilePath := path.Join(c.config.DiskPath, ccp.key)
	buf := make([]byte, checksumSize+len(ccp.value))
	binary.LittleEndian.PutUint64(buf, xxhash.Sum64(ccp.value))
	copy(buf[checksumSize:], ccp.value)
	if err := os.WriteFile(tempFilePath, buf, 0600); err != nil {
		return fmt.Errorf("unable to swap partition %s to disk: %w", ccp.key, err)
	}
	return nil
}

// Get returns the partition from whichever tier holds it, if present
func (c *lru) Get(key string) (value skyshade.Partition, err error) {
	c.lock.Lock()
	if ve, ok := c.pmap[key]; ok {
		c.recentUncompressedList.MoveToFront(ve)
		c.lock.Unlock()
		return ve.Value.(*cachedPartition).value, nil
	}
	if cve, ok := c.compressedPmap[key]; ok {
		c.recentCompressedList.MoveToFront(cve)
		compressed := cve.Value.(*cachedCompressedPartition).value
		c.lock.Unlock()
		return c.decompress(key, compressed)
	}
	tempFilePath, ok := c.diskMap[key]
	c.lock.Unlock()
	if !ok {
		return nil, fmt.Errorf("Partition %s is not in the cache", key)
	}
	return c.getFromDisk(key, tempFilePath)
}

func (c *lru) decompress(key string, compressed []byte) (skyshade.Partition, error) {
	buf, err := c.decompressor.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to decompress partition %s: %w", key, err)
	}
	return partition.FromBytes(buf, c.config.Schema)
}

// getFromDisk loads a disk-swapped partition, verifying its checksum
func (c *lru) getFromDisk(key string, tempFilePath string) (skyshade.Partition, error) {
	c.plocks.Lock(key)
	buf, err := os.ReadFile(tempFilePath)
	c.plocks.Unlock(key)
	if err != nil {
		return nil, fmt.Errorf("unable to load disk-swapped partition %s: %w", tempFilePath, err)
	}
	if len(buf) < checksumSize {
		return nil, fmt.Errorf("disk-swapped partition %s is truncated", tempFilePath)
	}
	if binary.LittleEndian.Uint64(buf) != xxhash.Sum64(buf[checksumSize:]) {
		return nil, fmt.Errorf("disk-swapped partition %s failed checksum verification", tempFilePath)
	}
	return c.decompress(key, buf[checksumSize:])
}

// Remove drops a Partition from the cache, from whichever tier holds it
func (c *lru) Remove(key string) {
	c.lock.Lock()
	for i, k := range c.keys {
		if k == key {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			break
		}
	}
	if ve, ok := c.pmap[key]; ok {
		c.recentUncompressedList.Remove(ve)
		delete(c.pmap, key)
	}
	if cve, ok := c.compressedPmap[key]; ok {
		c.recentCompressedList.Remove(cve)
		delete(c.compressedPmap, key)
	}
	_, onDisk := c.diskMap[key]
	delete(c.diskMap, key)
	c.lock.Unlock()
	if onDisk {
		c.removeFromDisk(key)
	}
}

func (c *lru) removeFromDisk(key string) {
	c.plocks.Lock(key)
	defer c.plocks.Unlock(key)
	tempFilePath := path.Join(c.config.DiskPath, key)
	if err := os.Remove(tempFilePath); err != nil && !os.IsNotExist(err) {
		log.Printf("Unable to remove file %s", tempFilePath)
	}
}

func (c *lru) Keys() []string {
	c.lock.Lock()
	defer c.lock.Unlock()
	keys := make([]string, len(c.keys))
	copy(keys, c.keys)
	return keys
}

func (c *lru) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.keys)
}

func (c *lru) CurrentSize() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.recentUncompressedList.Len() + c.recentCompressedList.Len()
}

func (c *lru) Resize(size int) {
	if size < 1 {
		size = 1
	}
	c.lock.Lock()
	c.setLimits(size)
	swapped, err := c.evict()
	c.lock.Unlock()
	if err == nil {
		err = c.writeSwapped(swapped)
	}
	if err != nil {
		log.Printf("Unable to resize partition cache: %v", err)
	}
}
