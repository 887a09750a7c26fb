package server

import (
	"testing"
	"time"
)

func TestRateLimiterWindow(t *testing.T) {
	rl := newRateLimiter(2, 50*time.Millisecond)

	if !rl.Allow("payu:1.2.3.4") || !rl.Allow("payu:1.2.3.4") {
		t.Fatal("requests within the limit should pass")
	}
	if rl.Allow("payu:1.2.3.4") {
		t.Fatal("third request in the window should be throttled")
	}
	if !rl.Allow("mercadopago:1.2.3.4") {
		t.Fatal("keys are throttled independently")
	}

	time.Sleep(60 * time.Millisecond)
	if !rl.Allow("payu:1.2.3.4") {
		t.Fatal("an elapsed window should reset the count")
	}
}

func TestRateLimiterRejectsEmptyKey(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)
	if rl.Allow("") {
		t.Fatal("an empty key must never pass")
	}
}

func TestRateLimiterPrunesStaleWindows(t *testing.T) {
	rl := newRateLimiter(1, 10*time.Millisecond)
	rl.Allow("payu:stale")
	time.Sleep(20 * time.Millisecond)

	rl.mu.Lock()
	rl.prune(time.Now().UTC())
	size := len(rl.windows)
	rl.mu.Unlock()
	if size != 0 {
		t.Fatalf("expected stale windows dropped, %d left", size)
	}
}
