package http

import (
	"fmt"
	"testing"
	"time"
)

func TestRateLimiterStoreBoundedSize(t *testing.T) {
	store := newRateLimiterStoreSized(1, 1, 3, time.Minute)

	for i := 0; i < 10; i++ {
		store.getLimiter(fmt.Sprintf("10.0.0.%d", i))
	}
	if got := store.size(); got != 3 {
		t.Fatalf("expected 3 limiters, got %d", got)
	}
}

func TestRateLimiterStoreEvictsIdleClients(t *testing.T) {
	store := newRateLimiterStoreSized(0.001, 1, 10, 50*time.Millisecond)

	if !store.getLimiter("10.0.0.1").Allow() {
		t.Fatal("first request must pass")
	}
	if store.getLimiter("10.0.0.1").Allow() {
		t.Fatal("second request must be limited")
	}

	time.Sleep(150 * time.Millisecond)

	if got := store.size(); got != 0 {
		t.Fatalf("idle limiter must be evicted, %d left", got)
	}
	if !store.getLimiter("10.0.0.1").Allow() {
		t.Fatal("evicted client starts with a fresh budget")
	}
}

func TestRateLimiterStoreKeepsActiveClients(t *testing.T) {
	store := newRateLimiterStoreSized(0.001, 1, 10, 200*time.Millisecond)

	limiter := store.getLimiter("10.0.0.1")
	for i := 0; i < 3; i++ {
		time.Sleep(100 * time.Millisecond)
		if store.getLimiter("10.0.0.1") != limiter {
			t.Fatal("limiter of an active client must survive")
		}
	}
}
