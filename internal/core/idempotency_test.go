package core_test

import (
	"fmt"
	"testing"

	"TxnEngine/internal/core"
)

func TestIdempotencyLRU_AddContains(t *testing.T) {
	lru := core.NewIdempotencyLRU(10)

	if lru.Contains("a") {
		t.Error("empty LRU should not contain anything")
	}

	lru.Add("a")
	if !lru.Contains("a") {
		t.Error("LRU should contain added key")
	}
	if lru.Size() != 1 {
		t.Errorf("size: got %d, want 1", lru.Size())
	}

	// Re-adding does not grow the cache.
	lru.Add("a")
	if lru.Size() != 1 {
		t.Errorf("size after duplicate add: got %d, want 1", lru.Size())
	}
}

func TestIdempotencyLRU_EvictsOldest(t *testing.T) {
	lru := core.NewIdempotencyLRU(3)

	for i := 0; i < 3; i++ {
		lru.Add(fmt.Sprintf("key-%d", i))
	}

	// Touch key-0 so key-1 becomes the eviction candidate.
	lru.Contains("key-0")
	lru.Add("key-3")

	if lru.Size() != 3 {
		t.Errorf("size: got %d, want 3", lru.Size())
	}
	if lru.Contains("key-1") {
		t.Error("least recently used key should have been evicted")
	}
	if !lru.Contains("key-0") || !lru.Contains("key-3") {
		t.Error("recently used keys should survive eviction")
	}
	if lru.Evictions() != 1 {
		t.Errorf("evictions: got %d, want 1", lru.Evictions())
	}
}
