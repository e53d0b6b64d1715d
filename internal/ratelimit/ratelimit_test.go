package ratelimit

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vadim/social-pulse/internal/domain/metrics/entity"
)

// fakeClock lets tests walk time forward deterministically
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter() (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	l := New(Config{})
	l.now = clock.now
	return l, clock
}

func TestReserveFirstRequest(t *testing.T) {
	l, _ := newTestLimiter()

	wait, err := l.Reserve("instagram:nasa")
	if err != nil {
		t.Fatalf("Reserve() error: %v", err)
	}
	if wait != 0 {
		t.Errorf("wait = %s, want 0", wait)
	}
}

func TestReserveHardRejectWindow(t *testing.T) {
	l, clock := newTestLimiter()

	if _, err := l.Reserve("instagram:nasa"); err != nil {
		t.Fatalf("first Reserve() error: %v", err)
	}

	clock.advance(3 * time.Second)

	_, err := l.Reserve("twitter:nasa")
	var limited *entity.RateLimitError
	if !errors.As(err, &limited) {
		t.Fatalf("error = %v, want RateLimitError", err)
	}
	if limited.Key != "twitter:nasa" {
		t.Errorf("key = %q, want twitter:nasa", limited.Key)
	}
	if limited.RetryAfter <= 0 {
		t.Errorf("retry after = %s, want > 0", limited.RetryAfter)
	}
}

func TestReserveBoundedWait(t *testing.T) {
	l, clock := newTestLimiter()

	if _, err := l.Reserve("instagram:nasa"); err != nil {
		t.Fatalf("first Reserve() error: %v", err)
	}

	// Past the hard window but still inside the spacing gap
	clock.advance(12 * time.Second)

	wait, err := l.Reserve("twitter:nasa")
	if err != nil {
		t.Fatalf("Reserve() error: %v", err)
	}
	if wait != DefaultMaxWait {
		t.Errorf("wait = %s, want capped at %s", wait, DefaultMaxWait)
	}
}

func TestReserveShortWaitNotCapped(t *testing.T) {
	l, clock := newTestLimiter()

	if _, err := l.Reserve("instagram:nasa"); err != nil {
		t.Fatalf("first Reserve() error: %v", err)
	}

	clock.advance(27 * time.Second)

	wait, err := l.Reserve("twitter:nasa")
	if err != nil {
		t.Fatalf("Reserve() error: %v", err)
	}
	if wait != 3*time.Second {
		t.Errorf("wait = %s, want 3s", wait)
	}
}

func TestReserveProfileInterval(t *testing.T) {
	l, clock := newTestLimiter()

	if _, err := l.Reserve("instagram:nasa"); err != nil {
		t.Fatalf("first Reserve() error: %v", err)
	}

	// Well past the global spacing, still inside the per-profile interval
	clock.advance(5 * time.Minute)

	_, err := l.Reserve("instagram:nasa")
	var limited *entity.RateLimitError
	if !errors.As(err, &limited) {
		t.Fatalf("error = %v, want RateLimitError", err)
	}
	if limited.RetryAfter != 5*time.Minute {
		t.Errorf("retry after = %s, want 5m", limited.RetryAfter)
	}

	// A different profile on the same platform is unaffected
	if _, err := l.Reserve("instagram:spacex"); err != nil {
		t.Errorf("different profile Reserve() error: %v", err)
	}
}

func TestReserveConcurrentSameKey(t *testing.T) {
	l := New(Config{})

	const goroutines = 50
	var (
		wg        sync.WaitGroup
		successes atomic.Int64
	)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Reserve("instagram:alice"); err == nil {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	// The reservation is recorded atomically with the check, so racing
	// callers cannot double-book a key inside the reject window.
	if got := successes.Load(); got != 1 {
		t.Errorf("successful reservations = %d, want exactly 1", got)
	}
}

func TestReserveAfterIntervalElapsed(t *testing.T) {
	l, clock := newTestLimiter()

	if _, err := l.Reserve("instagram:nasa"); err != nil {
		t.Fatalf("first Reserve() error: %v", err)
	}

	clock.advance(DefaultProfileInterval + time.Second)

	if _, err := l.Reserve("instagram:nasa"); err != nil {
		t.Errorf("Reserve() after interval error: %v", err)
	}
}
