// Package ratelimit spaces outbound scrape jobs so the vendor never sees
// request bursts, and keeps repeat scrapes of the same profile apart.
package ratelimit

import (
	"sync"
	"time"

	"github.com/vadim/social-pulse/internal/domain/metrics/entity"
)

const (
	// DefaultSpacing is the minimum gap between any two scrape jobs
	DefaultSpacing = 30 * time.Second
	// DefaultHardWindow rejects outright when the previous job was this recent
	DefaultHardWindow = 10 * time.Second
	// DefaultMaxWait bounds how long a caller may be asked to wait out the gap
	DefaultMaxWait = 5 * time.Second
	// DefaultProfileInterval is the minimum gap between scrapes of one profile
	DefaultProfileInterval = 10 * time.Minute
)

// Config tunes the limiter. Zero values fall back to the defaults.
type Config struct {
	Spacing         time.Duration
	HardWindow      time.Duration
	MaxWait         time.Duration
	ProfileInterval time.Duration
}

// Limiter enforces job spacing. Safe for concurrent use.
type Limiter struct {
	mu         sync.Mutex
	lastGlobal time.Time
	lastByKey  map[string]time.Time

	spacing         time.Duration
	hardWindow      time.Duration
	maxWait         time.Duration
	profileInterval time.Duration

	now func() time.Time
}

// New creates a Limiter with the given config
func New(cfg Config) *Limiter {
	l := &Limiter{
		lastByKey:       make(map[string]time.Time),
		spacing:         cfg.Spacing,
		hardWindow:      cfg.HardWindow,
		maxWait:         cfg.MaxWait,
		profileInterval: cfg.ProfileInterval,
		now:             time.Now,
	}
	if l.spacing == 0 {
		l.spacing = DefaultSpacing
	}
	if l.hardWindow == 0 {
		l.hardWindow = DefaultHardWindow
	}
	if l.maxWait == 0 {
		l.maxWait = DefaultMaxWait
	}
	if l.profileInterval == 0 {
		l.profileInterval = DefaultProfileInterval
	}
	return l
}

// Reserve claims a scrape slot for the key, typically "platform:identifier".
// On success it returns the delay the caller must sleep before starting the
// job; the slot is recorded immediately so concurrent callers see it. On
// rejection it returns a RateLimitError with the retry-after hint.
func (l *Limiter) Reserve(key string) (time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if last, ok := l.lastByKey[key]; ok {
		if elapsed := now.Sub(last); elapsed < l.profileInterval {
			return 0, &entity.RateLimitError{
				Key:        key,
				RetryAfter: l.profileInterval - elapsed,
			}
		}
	}

	var wait time.Duration
	if !l.lastGlobal.IsZero() {
		elapsed := now.Sub(l.lastGlobal)
		if elapsed < l.hardWindow {
			return 0, &entity.RateLimitError{
				Key:        key,
				RetryAfter: l.spacing - elapsed,
			}
		}
		if elapsed < l.spacing {
			wait = l.spacing - elapsed
			if wait > l.maxWait {
				wait = l.maxWait
			}
		}
	}

	start := now.Add(wait)
	l.lastGlobal = start
	l.lastByKey[key] = start

	return wait, nil
}
