package session

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryStoreIsolatesUsers(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	if err := store.Put(ctx, 1, NewSell("USDT", "polygon", "Polygon")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(ctx, 2, NewVerify("Access Bank", "044")); err != nil {
		t.Fatalf("put: %v", err)
	}

	s1, ok, err := store.Get(ctx, 1)
	if err != nil || !ok {
		t.Fatalf("get user 1: ok=%v err=%v", ok, err)
	}
	if s1.Flow != FlowSell {
		t.Fatalf("user 1 flow = %s, want sell", s1.Flow)
	}
	s2, ok, err := store.Get(ctx, 2)
	if err != nil || !ok {
		t.Fatalf("get user 2: ok=%v err=%v", ok, err)
	}
	if s2.Flow != FlowVerify {
		t.Fatalf("user 2 flow = %s, want verify", s2.Flow)
	}
}

func TestMemoryStoreDeleteIdempotent(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	if err := store.Delete(ctx, 99); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
	if err := store.Put(ctx, 99, NewSell("USDC", "base", "Base")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Delete(ctx, 99); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, 99); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, 99); ok {
		t.Fatal("session must be gone after delete")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(15 * time.Minute)
	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	now := base
	store.now = func() time.Time { return now }
	ctx := context.Background()

	if err := store.Put(ctx, 7, NewSell("USDT", "polygon", "Polygon")); err != nil {
		t.Fatalf("put: %v", err)
	}

	now = base.Add(14 * time.Minute)
	if _, ok, _ := store.Get(ctx, 7); !ok {
		t.Fatal("session must survive within the TTL")
	}

	now = base.Add(16 * time.Minute)
	if _, ok, _ := store.Get(ctx, 7); ok {
		t.Fatal("session must expire past the TTL")
	}
}

func TestMemoryStorePutResetsTTL(t *testing.T) {
	store := NewMemoryStore(15 * time.Minute)
	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	now := base
	store.now = func() time.Time { return now }
	ctx := context.Background()

	if err := store.Put(ctx, 7, NewSell("USDT", "polygon", "Polygon")); err != nil {
		t.Fatalf("put: %v", err)
	}
	now = base.Add(10 * time.Minute)
	if err := store.Put(ctx, 7, NewSell("USDT", "polygon", "Polygon")); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	now = base.Add(20 * time.Minute)
	if _, ok, _ := store.Get(ctx, 7); !ok {
		t.Fatal("refreshed session must survive the original deadline")
	}
}

func TestMemoryStoreOverwriteSwitchesFlow(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	if err := store.Put(ctx, 5, NewSell("USDT", "polygon", "Polygon")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(ctx, 5, NewVerify("GTBank", "058")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	s, ok, err := store.Get(ctx, 5)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if s.Flow != FlowVerify || s.Sell != nil || s.Verify == nil {
		t.Fatalf("session = %+v, want verify flow only", s)
	}
}

func TestKeyedMutexSerializesPerUser(t *testing.T) {
	km := NewKeyedMutex()
	var counter int

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock(1)
			counter++
			unlock()
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Fatalf("counter = %d, want 50", counter)
	}
	km.mu.Lock()
	remaining := len(km.locks)
	km.mu.Unlock()
	if remaining != 0 {
		t.Fatalf("lock entries remaining = %d, want 0", remaining)
	}
}

func TestKeyedMutexDifferentUsersDoNotBlock(t *testing.T) {
	km := NewKeyedMutex()

	unlock1 := km.Lock(1)
	defer unlock1()

	done := make(chan struct{})
	go func() {
		unlock2 := km.Lock(2)
		unlock2()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock for another user must not block")
	}
}
