package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestAllow(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	l := New(rdb, 3, time.Minute)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		if err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
		if !ok {
			t.Fatalf("attempt %d: denied, want allowed", i)
		}
	}

	ok, err := l.Allow(ctx, "10.0.0.1")
	if err != nil {
		t.Fatalf("attempt 4: %v", err)
	}
	if ok {
		t.Fatal("attempt 4: allowed, want denied")
	}

	ok, _ = l.Allow(ctx, "10.0.0.2")
	if !ok {
		t.Error("other key should not share the counter")
	}

	if ttl := mr.TTL("login:att:10.0.0.1"); ttl <= 0 || ttl > time.Minute {
		t.Errorf("ttl = %v, want within (0, 1m]", ttl)
	}

	mr.FastForward(time.Minute + time.Second)

	ok, _ = l.Allow(ctx, "10.0.0.1")
	if !ok {
		t.Error("window elapsed, attempt should be allowed")
	}
}

func TestReset(t *testing.T) {
	_, rdb := setupTestRedis(t)
	l := New(rdb, 1, time.Minute)
	ctx := context.Background()

	l.Allow(ctx, "k")
	if ok, _ := l.Allow(ctx, "k"); ok {
		t.Fatal("second attempt should be denied")
	}
	if err := l.Reset(ctx, "k"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if ok, _ := l.Allow(ctx, "k"); !ok {
		t.Error("attempt after reset should be allowed")
	}
}

func TestAllowRedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()

	if _, err := New(rdb, 1, time.Minute).Allow(context.Background(), "k"); err == nil {
		t.Fatal("expected error when redis is unreachable")
	}
}
