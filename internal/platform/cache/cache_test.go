package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestTTLCachesUntilExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var loads int32
	c := NewTTL[int](time.Minute, func(ctx context.Context, key string) (int, error) {
		return int(atomic.AddInt32(&loads, 1)), nil
	}).WithClock(func() time.Time { return now })

	for i := 0; i < 3; i++ {
		v, err := c.Get(context.Background(), "org")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if v != 1 {
			t.Fatalf("cached value: want=1 got=%d", v)
		}
	}

	now = now.Add(time.Minute)
	v, _ := c.Get(context.Background(), "org")
	if v != 2 {
		t.Fatalf("after expiry: want=2 got=%d", v)
	}

	c.Invalidate("org")
	v, _ = c.Get(context.Background(), "org")
	if v != 3 {
		t.Fatalf("after invalidate: want=3 got=%d", v)
	}
}

func TestTTLDoesNotCacheErrors(t *testing.T) {
	calls := 0
	c := NewTTL[string](time.Hour, func(ctx context.Context, key string) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("boom")
		}
		return "ok", nil
	})
	if _, err := c.Get(context.Background(), "k"); err == nil {
		t.Fatalf("expected first load error")
	}
	v, err := c.Get(context.Background(), "k")
	if err != nil || v != "ok" {
		t.Fatalf("retry: want=ok got=%q err=%v", v, err)
	}
}

func TestTTLSharesConcurrentLoads(t *testing.T) {
	var loads int32
	release := make(chan struct{})
	c := NewTTL[int](time.Hour, func(ctx context.Context, key string) (int, error) {
		atomic.AddInt32(&loads, 1)
		<-release
		return 7, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, err := c.Get(context.Background(), "k"); err != nil || v != 7 {
				t.Errorf("Get: want=7 got=%d err=%v", v, err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&loads); n != 1 {
		t.Fatalf("loads: want=1 got=%d", n)
	}
}
