package cache

import (
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultL1Size bounds the task-local LRU.
	DefaultL1Size = 512

	defaultL2NumCounters = 1e7
	defaultL2MaxCost     = 1 << 28 // 256 MiB of tracked value bytes
	defaultL2BufferItems = 64
)

// Stats is a point-in-time snapshot of hit/miss counters per tier, the
// signal for whether L2 is undersized (high L3 hit rate means most reads
// are falling through to disk).
type Stats struct {
	L1Hits, L1Misses int64
	L2Hits, L2Misses int64
	L3Hits, L3Misses int64
}

// Cache is the write-through three-tier result cache described for every
// analysis stage: L1 is a task-local bounded LRU, L2 is a process-wide
// concurrent cache shared across every goroutine in this run, L3 is an
// on-disk content-addressed store that survives process restarts. A read
// backfills every faster tier it passed on the way to a hit; a write lands
// on L3 first since it is the tier of record.
type Cache struct {
	l1 *lru.Cache[string, []byte]
	l2 *ristretto.Cache[string, []byte]
	l3 *diskStore

	stats Stats
}

// New builds a Cache rooted at diskDir for its L3 tier. A non-positive
// l1Size falls back to DefaultL1Size.
func New(diskDir string, l1Size int) (*Cache, error) {
	if l1Size <= 0 {
		l1Size = DefaultL1Size
	}
	l1, err := lru.New[string, []byte](l1Size)
	if err != nil {
		return nil, err
	}
	l2, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: defaultL2NumCounters,
		MaxCost:     defaultL2MaxCost,
		BufferItems: defaultL2BufferItems,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{l1: l1, l2: l2, l3: newDiskStore(diskDir)}, nil
}

// Close releases L2's background goroutines. L1 and L3 need no teardown.
func (c *Cache) Close() {
	c.l2.Close()
}

// Get looks up key through L1, then L2, then L3, backfilling every faster
// tier it passed through en route to a hit.
func (c *Cache) Get(key Key) ([]byte, bool) {
	k := key.String()

	if v, ok := c.l1.Get(k); ok {
		atomic.AddInt64(&c.stats.L1Hits, 1)
		return v, true
	}
	atomic.AddInt64(&c.stats.L1Misses, 1)

	if v, ok := c.l2.Get(k); ok {
		atomic.AddInt64(&c.stats.L2Hits, 1)
		c.l1.Add(k, v)
		return v, true
	}
	atomic.AddInt64(&c.stats.L2Misses, 1)

	if v, ok := c.l3.get(key); ok {
		atomic.AddInt64(&c.stats.L3Hits, 1)
		c.l2.Set(k, v, int64(len(v)))
		c.l2.Wait()
		c.l1.Add(k, v)
		return v, true
	}
	atomic.AddInt64(&c.stats.L3Misses, 1)
	return nil, false
}

// Put writes value through every tier, L3 first since L1 and L2 are both
// rebuildable from it. An L3 write failure is returned so a caller can
// decide how to react; L1/L2 writes never fail since the cache is an
// optimization, not a correctness dependency.
func (c *Cache) Put(key Key, value []byte) error {
	if err := c.l3.put(key, value); err != nil {
		return err
	}
	k := key.String()
	c.l2.Set(k, value, int64(len(value)))
	// Wait trades ristretto's normal fire-and-forget throughput for the
	// read-your-writes consistency this cache's callers depend on: a Get
	// immediately following a Put must observe the written value.
	c.l2.Wait()
	c.l1.Add(k, value)
	return nil
}

// Sweep evicts L3 entries older than retention, measured from asOf. L1 and
// L2 need no explicit sweep: their own bounded-size eviction already keeps
// them within budget.
func (c *Cache) Sweep(asOf time.Time, retention time.Duration) (int, error) {
	return c.l3.sweep(asOf, retention)
}

// Stats reports a snapshot of hit/miss counters across all three tiers.
func (c *Cache) Stats() Stats {
	return Stats{
		L1Hits:   atomic.LoadInt64(&c.stats.L1Hits),
		L1Misses: atomic.LoadInt64(&c.stats.L1Misses),
		L2Hits:   atomic.LoadInt64(&c.stats.L2Hits),
		L2Misses: atomic.LoadInt64(&c.stats.L2Misses),
		L3Hits:   atomic.LoadInt64(&c.stats.L3Hits),
		L3Misses: atomic.LoadInt64(&c.stats.L3Misses),
	}
}
