package http

import "testing"

func TestRateLimiterAllow(t *testing.T) {
	limiter := newRateLimiter(2)
	defer limiter.reset.Stop()

	for i, want := range []bool{true, true, false, false} {
		if got := limiter.allow(); got != want {
			t.Fatalf("frame %d: allow() = %v, want %v", i, got, want)
		}
	}

	limiter.counter.Store(0)
	if !limiter.allow() {
		t.Fatal("expected allow after window reset")
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	for _, limiter := range []*rateLimiter{nil, newRateLimiter(0)} {
		for range 100 {
			if !limiter.allow() {
				t.Fatal("disabled limiter must allow every frame")
			}
		}
		limiter.startReset(make(chan struct{}))
	}
}
