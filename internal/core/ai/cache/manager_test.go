package cache

import (
	"context"
	"testing"
	"time"

	"fridge-manager/internal/infrastructure/config"
	"fridge-manager/internal/pkg/common"
)

func newTestManager(t *testing.T, maxSize int, ttl time.Duration) *Manager {
	t.Helper()
	cfg := &config.Config{}
	cfg.Cache.Enabled = true
	cfg.Cache.MaxSize = maxSize
	cfg.Cache.TTL = ttl
	cfg.Cache.CleanupInterval = time.Hour

	m := NewManager(cfg)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestManagerDisabled(t *testing.T) {
	cfg := &config.Config{}
	cfg.Cache.Enabled = false
	if m := NewManager(cfg); m != nil {
		t.Error("NewManager should return nil when cache disabled")
	}
}

func TestGetSet(t *testing.T) {
	m := newTestManager(t, 10, time.Minute)
	ctx := context.Background()
	key := Key("매일 두유99.9%", nil)

	if _, err := m.Get(ctx, key); err != common.ErrCacheDisabled {
		t.Errorf("miss err = %v, want ErrCacheDisabled", err)
	}

	if err := m.Set(ctx, key, "매일 두유"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, err := m.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if value != "매일 두유" {
		t.Errorf("value = %q", value)
	}
}

func TestKeyIncludesDetections(t *testing.T) {
	plain := Key("사과즙", nil)
	withDetections := Key("사과즙", []string{"apple"})
	if plain == withDetections {
		t.Error("keys with and without detections must differ")
	}
	if Key("사과즙", []string{"apple"}) != withDetections {
		t.Error("key must be deterministic")
	}
}

func TestExpiry(t *testing.T) {
	m := newTestManager(t, 10, 10*time.Millisecond)
	ctx := context.Background()
	key := Key("우유", nil)

	if err := m.Set(ctx, key, "우유"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	if _, err := m.Get(ctx, key); err != common.ErrCacheDisabled {
		t.Errorf("expired entry err = %v, want ErrCacheDisabled", err)
	}
}

func TestLRUEviction(t *testing.T) {
	m := newTestManager(t, 2, time.Minute)
	ctx := context.Background()

	m.Set(ctx, "text:a", "a")
	m.Set(ctx, "text:b", "b")
	// a 取用一次，b 保持零次訪問成為淘汰對象
	if _, err := m.Get(ctx, "text:a"); err != nil {
		t.Fatalf("Get a: %v", err)
	}

	if err := m.Set(ctx, "text:c", "c"); err != nil {
		t.Fatalf("Set c: %v", err)
	}

	if _, err := m.Get(ctx, "text:a"); err != nil {
		t.Error("a should survive eviction")
	}
	if _, err := m.Get(ctx, "text:b"); err != common.ErrCacheDisabled {
		t.Error("b should have been evicted")
	}
	if _, err := m.Get(ctx, "text:c"); err != nil {
		t.Error("c should be present")
	}
}

func TestStats(t *testing.T) {
	m := newTestManager(t, 10, time.Minute)
	ctx := context.Background()

	m.Set(ctx, "text:a", "a")
	m.Get(ctx, "text:a")
	m.Get(ctx, "text:missing")

	stats := m.Stats()
	if stats["hits"].(int64) != 1 {
		t.Errorf("hits = %v, want 1", stats["hits"])
	}
	if stats["misses"].(int64) != 1 {
		t.Errorf("misses = %v, want 1", stats["misses"])
	}
	if stats["size"].(int) != 1 {
		t.Errorf("size = %v, want 1", stats["size"])
	}
	if stats["hit_ratio"].(float64) != 0.5 {
		t.Errorf("hit_ratio = %v, want 0.5", stats["hit_ratio"])
	}
}
