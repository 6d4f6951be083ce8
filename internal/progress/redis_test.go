package progress

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newRedisTracker(t *testing.T) (*RedisTracker, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	tracker := NewRedisTracker(redis.NewClient(&redis.Options{Addr: srv.Addr()}))
	t.Cleanup(func() { tracker.Close() })
	return tracker, srv
}

func TestRedisTrackerSetGet(t *testing.T) {
	tracker, srv := newRedisTracker(t)
	ctx := context.Background()
	id := uuid.New()

	if _, ok, err := tracker.Get(ctx, id); ok || err != nil {
		t.Fatalf("unknown upload = %v, %v", ok, err)
	}
	if err := tracker.Set(ctx, id, 40); err != nil {
		t.Fatalf("Set: %v", err)
	}
	pct, ok, err := tracker.Get(ctx, id)
	if err != nil || !ok || pct != 40 {
		t.Fatalf("Get = %d, %v, %v", pct, ok, err)
	}
	if ttl := srv.TTL(key(id)); ttl != defaultTTL {
		t.Errorf("ttl = %v, want %v", ttl, defaultTTL)
	}

	srv.FastForward(defaultTTL + time.Minute)
	if _, ok, _ := tracker.Get(ctx, id); ok {
		t.Errorf("progress survived its TTL")
	}
}

func TestRedisTrackerCorruptValue(t *testing.T) {
	tracker, srv := newRedisTracker(t)
	id := uuid.New()
	srv.Set(key(id), "half")

	if _, _, err := tracker.Get(context.Background(), id); err == nil {
		t.Fatal("expected an error for a non-numeric value")
	}
}

func TestNewRedisTrackerFromURL(t *testing.T) {
	srv := miniredis.RunT(t)

	tracker, err := NewRedisTrackerFromURL(context.Background(), "redis://"+srv.Addr())
	if err != nil {
		t.Fatalf("NewRedisTrackerFromURL: %v", err)
	}
	defer tracker.Close()

	if _, err := NewRedisTrackerFromURL(context.Background(), "not a url"); err == nil {
		t.Fatal("expected an error for an invalid URL")
	}
}
