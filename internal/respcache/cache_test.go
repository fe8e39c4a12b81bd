package respcache

import (
	"context"
	"testing"
	"time"
)

func TestMemory_PutGet(t *testing.T) {
	m := NewMemory(0)
	ctx := context.Background()

	if err := m.Put(ctx, "k", "v", time.Hour); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := m.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || got != "v" {
		t.Fatalf("expected hit with %q, got ok=%v %q", "v", ok, got)
	}

	_, ok, err = m.Get(ctx, "absent")
	if err != nil {
		t.Fatalf("get absent: %v", err)
	}
	if ok {
		t.Fatal("expected miss for absent key")
	}
}

func TestMemory_ExpiryIsLazy(t *testing.T) {
	m := NewMemory(0)
	ctx := context.Background()

	now := time.Now()
	m.now = func() time.Time { return now }

	if err := m.Put(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Within the TTL.
	if _, ok, _ := m.Get(ctx, "k"); !ok {
		t.Fatal("expected hit before expiry")
	}

	// Past the TTL: fresh reads miss, the entry stays for GetStale.
	now = now.Add(2 * time.Minute)
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Fatal("expected miss after expiry")
	}
	got, ok, _ := m.GetStale(ctx, "k")
	if !ok || got != "v" {
		t.Fatalf("expected stale value, got ok=%v %q", ok, got)
	}
}

func TestMemory_PutResetsExpiry(t *testing.T) {
	m := NewMemory(0)
	ctx := context.Background()

	now := time.Now()
	m.now = func() time.Time { return now }

	m.Put(ctx, "k", "old", time.Minute)
	now = now.Add(2 * time.Minute)
	m.Put(ctx, "k", "new", time.Minute)

	got, ok, _ := m.Get(ctx, "k")
	if !ok || got != "new" {
		t.Fatalf("expected refreshed entry, got ok=%v %q", ok, got)
	}
	if m.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", m.Len())
	}
}

func TestMemory_LRUEviction(t *testing.T) {
	m := NewMemory(2)
	ctx := context.Background()

	m.Put(ctx, "a", "1", time.Hour)
	m.Put(ctx, "b", "2", time.Hour)

	// Touch "a" so "b" becomes the eviction candidate.
	m.Get(ctx, "a")
	m.Put(ctx, "c", "3", time.Hour)

	if _, ok, _ := m.Get(ctx, "b"); ok {
		t.Fatal("expected b to be evicted")
	}
	if _, ok, _ := m.Get(ctx, "a"); !ok {
		t.Fatal("expected a to survive")
	}
	if _, ok, _ := m.Get(ctx, "c"); !ok {
		t.Fatal("expected c to be present")
	}
}

func TestMemory_Sweep(t *testing.T) {
	m := NewMemory(0)
	ctx := context.Background()

	now := time.Now()
	m.now = func() time.Time { return now }

	m.Put(ctx, "old", "1", time.Minute)
	m.Put(ctx, "fresh", "2", time.Hour)

	now = now.Add(10 * time.Minute)
	if removed := m.Sweep(); removed != 1 {
		t.Fatalf("expected 1 swept entry, got %d", removed)
	}
	if m.Len() != 1 {
		t.Fatalf("expected 1 remaining entry, got %d", m.Len())
	}
	if _, ok, _ := m.GetStale(ctx, "old"); ok {
		t.Fatal("swept entry must not serve stale reads")
	}
}

func TestMemory_ExpireAll(t *testing.T) {
	m := NewMemory(0)
	ctx := context.Background()

	m.Put(ctx, "k", "v", time.Hour)
	m.ExpireAll()

	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Fatal("expected miss after ExpireAll")
	}
	if _, ok, _ := m.GetStale(ctx, "k"); !ok {
		t.Fatal("expected stale read after ExpireAll")
	}
}
