package storage

import (
	"container/list"
	"sync"
	"time"

	"github.com/vjranagit/tempmon/pkg/types"
)

// ResultCache implements a TTL'd LRU cache for aggregation results.
// Dashboards poll the same window over and over; within one TTL the answer
// is identical, so the store is consulted at most once per window per TTL.
type ResultCache struct {
	capacity int
	ttl      time.Duration
	mu       sync.Mutex
	entries  map[string]*cacheEntry
	lru      *list.List
}

// cacheEntry represents one cached aggregation result.
type cacheEntry struct {
	key      string
	result   *types.MinuteSeries
	storedAt time.Time
	element  *list.Element
}

// NewResultCache creates a new result cache.
func NewResultCache(capacity int, ttl time.Duration) *ResultCache {
	return &ResultCache{
		capacity: capacity,
		ttl:      ttl,
		entries:  make(map[string]*cacheEntry),
		lru:      list.New(),
	}
}

// Get retrieves the cached series for key, reporting false when the key is
// absent or its entry has expired.
func (rc *ResultCache) Get(key string) (*types.MinuteSeries, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	entry, ok := rc.entries[key]
	if !ok {
		return nil, false
	}

	if time.Since(entry.storedAt) > rc.ttl {
		rc.removeLocked(key)
		return nil, false
	}

	rc.lru.MoveToFront(entry.element)
	return entry.result, true
}

// Put stores a series under key, evicting the least recently used entry
// when the cache is over capacity.
func (rc *ResultCache) Put(key string, result *types.MinuteSeries) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if entry, ok := rc.entries[key]; ok {
		entry.result = result
		entry.storedAt = time.Now()
		rc.lru.MoveToFront(entry.element)
		return
	}

	entry := &cacheEntry{
		key:      key,
		result:   result,
		storedAt: time.Now(),
	}
	entry.element = rc.lru.PushFront(entry)
	rc.entries[key] = entry

	if rc.lru.Len() > rc.capacity {
		if oldest := rc.lru.Back(); oldest != nil {
			rc.removeLocked(oldest.Value.(*cacheEntry).key)
		}
	}
}

// removeLocked removes an entry. Callers must hold the lock.
func (rc *ResultCache) removeLocked(key string) {
	if entry, ok := rc.entries[key]; ok {
		rc.lru.Remove(entry.element)
		delete(rc.entries, key)
	}
}

// Len reports the number of cached entries.
func (rc *ResultCache) Len() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	return rc.lru.Len()
}
