package engine

import (
	"sync"
	"sync/atomic"
)

// CacheKey identifies one recognition attempt. The content hash makes the
// key robust against same-mtime rewrites; mtime and size stay in the key
// so a stat-only change still misses rather than serving stale text.
type CacheKey struct {
	Hash      string // sha256 of the source file bytes
	ModTime   int64  // unix nanos
	Size      int64
	EngineID  string
	Technique string
}

// Cache memoizes successful engine results for repeated runs over the same
// source. Memory-resident and safe for concurrent use. Failed attempts are
// never stored so transient errors cannot pin themselves.
type Cache struct {
	m      sync.Map // CacheKey -> Result
	hits   atomic.Int64
	misses atomic.Int64
}

func NewCache() *Cache {
	return &Cache{}
}

// Get returns the cached result for key if present.
func (c *Cache) Get(key CacheKey) (Result, bool) {
	v, ok := c.m.Load(key)
	if !ok {
		c.misses.Add(1)
		return Result{}, false
	}
	c.hits.Add(1)
	return v.(Result), true
}

// Put stores res under key unless another writer got there first; the
// first stored value always wins so concurrent runs observe one answer.
// Failed or blank results are returned unchanged and not stored.
func (c *Cache) Put(key CacheKey, res Result) Result {
	if res.Err != nil || res.Blank() {
		return res
	}
	actual, _ := c.m.LoadOrStore(key, res)
	return actual.(Result)
}

// Stats returns hit and miss counts since construction.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Len counts stored entries. Linear; intended for tests and diagnostics.
func (c *Cache) Len() int {
	n := 0
	c.m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
