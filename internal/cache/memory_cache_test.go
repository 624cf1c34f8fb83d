package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache(nil)
	ctx := context.Background()

	type payload struct {
		Name string `json:"name"`
	}

	if err := c.SetJSON(ctx, "k", payload{Name: "v"}, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	var got payload
	hit, err := c.GetJSON(ctx, "k", &got)
	if err != nil || !hit {
		t.Fatalf("get: hit=%v err=%v", hit, err)
	}
	if got.Name != "v" {
		t.Fatalf("got %+v", got)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache(nil)
	var got string
	hit, err := c.GetJSON(context.Background(), "absent", &got)
	if err != nil {
		t.Fatalf("miss must not error: %v", err)
	}
	if hit {
		t.Fatal("absent key must miss")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache(func() time.Time { return now })
	ctx := context.Background()

	c.SetJSON(ctx, "k", "v", time.Minute)

	var got string
	if hit, _ := c.GetJSON(ctx, "k", &got); !hit {
		t.Fatal("entry must live before expiry")
	}

	now = now.Add(2 * time.Minute)
	if hit, _ := c.GetJSON(ctx, "k", &got); hit {
		t.Fatal("entry must expire")
	}
}

func TestMemoryCacheZeroTTLNeverExpires(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache(func() time.Time { return now })
	ctx := context.Background()

	c.SetJSON(ctx, "k", "v", 0)
	now = now.Add(1000 * time.Hour)

	var got string
	if hit, _ := c.GetJSON(ctx, "k", &got); !hit {
		t.Fatal("zero TTL entries must not expire")
	}
}

func TestMemoryCacheFlush(t *testing.T) {
	c := NewMemoryCache(nil)
	ctx := context.Background()

	c.SetJSON(ctx, "k", "v", time.Minute)
	if err := c.Flush(ctx); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	var got string
	if hit, _ := c.GetJSON(ctx, "k", &got); hit {
		t.Fatal("flushed entry must miss")
	}
}
