package storage

import (
	"fmt"
	"testing"
	"time"

	"github.com/vjranagit/tempmon/pkg/types"
)

func minuteSeries(count int) *types.MinuteSeries {
	return &types.MinuteSeries{
		Temperatures:    make([]*float64, count),
		IntervalMinutes: 1,
		Count:           count,
	}
}

func TestResultCache(t *testing.T) {
	cache := NewResultCache(100, 1*time.Minute)

	// Test cache miss
	if _, ok := cache.Get("hours=3"); ok {
		t.Error("Expected cache miss, got hit")
	}

	// Test cache put and get
	cache.Put("hours=3", minuteSeries(42))

	cached, ok := cache.Get("hours=3")
	if !ok {
		t.Fatal("Expected cache hit, got miss")
	}
	if cached.Count != 42 {
		t.Errorf("Expected count 42, got %d", cached.Count)
	}

	// Different key still misses
	if _, ok := cache.Get("hours=6"); ok {
		t.Error("Expected cache miss for different key, got hit")
	}
}

func TestResultCacheTTL(t *testing.T) {
	// Short TTL for testing
	cache := NewResultCache(100, 50*time.Millisecond)

	cache.Put("hours=3", minuteSeries(1))

	// Should be in cache
	if _, ok := cache.Get("hours=3"); !ok {
		t.Error("Expected cache hit")
	}

	// Wait for expiry
	time.Sleep(80 * time.Millisecond)

	// Should be expired
	if _, ok := cache.Get("hours=3"); ok {
		t.Error("Expected cache miss after TTL expiry")
	}
}

func TestResultCacheLRUEviction(t *testing.T) {
	// Small cache for testing eviction
	cache := NewResultCache(3, 1*time.Minute)

	for i := 0; i < 4; i++ {
		cache.Put(fmt.Sprintf("hours=%d", i), minuteSeries(i))
	}

	// Cache should have 3 entries (oldest evicted)
	if cache.Len() != 3 {
		t.Errorf("Expected cache size 3, got %d", cache.Len())
	}

	// First entry should be evicted
	if _, ok := cache.Get("hours=0"); ok {
		t.Error("Expected hours=0 to be evicted")
	}

	// Last entry should still be in cache
	if _, ok := cache.Get("hours=3"); !ok {
		t.Error("Expected hours=3 to be in cache")
	}
}

func TestResultCacheUpdateExistingKey(t *testing.T) {
	cache := NewResultCache(3, 1*time.Minute)

	cache.Put("hours=3", minuteSeries(1))
	cache.Put("hours=3", minuteSeries(2))

	if cache.Len() != 1 {
		t.Errorf("Expected 1 entry after updating the same key, got %d", cache.Len())
	}

	cached, ok := cache.Get("hours=3")
	if !ok {
		t.Fatal("Expected cache hit, got miss")
	}
	if cached.Count != 2 {
		t.Errorf("Expected the updated result (count 2), got %d", cached.Count)
	}
}
