package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCache_GetSetExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	ctx := context.Background()
	c.Set(ctx, "schedules:page:1:limit:10", []byte("v1"), TTL)

	got, ok := c.Get(ctx, "schedules:page:1:limit:10")
	if !ok || string(got) != "v1" {
		t.Fatalf("expected hit with v1, got %q ok=%v", got, ok)
	}

	// One second before expiry: still a hit.
	now = now.Add(TTL - time.Second)
	if _, ok := c.Get(ctx, "schedules:page:1:limit:10"); !ok {
		t.Fatal("expected hit just before TTL")
	}

	// At the expiry instant the entry must be treated as a miss.
	now = now.Add(time.Second)
	if _, ok := c.Get(ctx, "schedules:page:1:limit:10"); ok {
		t.Fatal("expected miss at TTL expiry")
	}
}

func TestMemoryCache_SetOverwrites(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	c.Set(ctx, "doctors:page:1:limit:10", []byte("old"), TTL)
	c.Set(ctx, "doctors:page:1:limit:10", []byte("new"), TTL)

	got, ok := c.Get(ctx, "doctors:page:1:limit:10")
	if !ok || string(got) != "new" {
		t.Fatalf("expected overwritten value, got %q ok=%v", got, ok)
	}
}

func TestMemoryCache_InvalidateClearsOnlyKind(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	c.Set(ctx, "schedules:page:1:limit:10", []byte("s"), TTL)
	c.Set(ctx, `schedules:{"page":2,"limit":5}`, []byte("sf"), TTL)
	c.Set(ctx, "customers:page:1:limit:10", []byte("c"), TTL)

	c.Invalidate(ctx, KindSchedules)

	if _, ok := c.Get(ctx, "schedules:page:1:limit:10"); ok {
		t.Fatal("expected schedules key invalidated")
	}
	if _, ok := c.Get(ctx, `schedules:{"page":2,"limit":5}`); ok {
		t.Fatal("expected filtered schedules key invalidated")
	}
	if _, ok := c.Get(ctx, "customers:page:1:limit:10"); !ok {
		t.Fatal("customers namespace should be untouched")
	}
}
