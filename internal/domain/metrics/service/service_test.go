package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/vadim/social-pulse/internal/domain/metrics/entity"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeScraper struct {
	raw  json.RawMessage
	err  error
	gots []string
}

func (f *fakeScraper) Scrape(_ context.Context, platform entity.Platform, username, _ string) (json.RawMessage, error) {
	f.gots = append(f.gots, string(platform)+":"+username)
	return f.raw, f.err
}

type fakeLimiter struct {
	wait time.Duration
	err  error
	keys []string
}

func (f *fakeLimiter) Reserve(key string) (time.Duration, error) {
	f.keys = append(f.keys, key)
	return f.wait, f.err
}

type fakeArchiver struct {
	payloads [][]byte
	err      error
}

func (f *fakeArchiver) ArchivePayload(_ context.Context, _ entity.Platform, _ string, payload []byte) error {
	f.payloads = append(f.payloads, payload)
	return f.err
}

func TestScrapeVendorSuccess(t *testing.T) {
	scraper := &fakeScraper{raw: json.RawMessage(`[{"username": "nasa", "followersCount": 500}]`)}
	limiter := &fakeLimiter{}
	archiver := &fakeArchiver{}

	svc := New(scraper, limiter, archiver, FallbackToSynthetic, testLogger())

	m, err := svc.Scrape(context.Background(), entity.PlatformInstagram, "nasa", "")
	if err != nil {
		t.Fatalf("Scrape() error: %v", err)
	}

	if m.Source != entity.SourceVendor {
		t.Errorf("source = %s, want vendor", m.Source)
	}
	if got, want := *m.Followers, int64(500); got != want {
		t.Errorf("followers = %d, want %d", got, want)
	}
	if len(limiter.keys) != 1 || limiter.keys[0] != "instagram:nasa" {
		t.Errorf("rate limit keys = %v, want [instagram:nasa]", limiter.keys)
	}
	if len(archiver.payloads) != 1 {
		t.Errorf("archived payloads = %d, want 1", len(archiver.payloads))
	}
}

func TestScrapeVendorFailureFallsBack(t *testing.T) {
	vendorErrs := map[string]error{
		"start":     entity.ErrJobStart,
		"timeout":   entity.ErrJobTimeout,
		"failed":    entity.ErrJobFailed,
		"empty":     entity.ErrEmptyResult,
		"auth":      entity.ErrVendorAuth,
		"malformed": entity.ErrMalformedPayload,
	}

	for name, vendorErr := range vendorErrs {
		t.Run(name, func(t *testing.T) {
			svc := New(&fakeScraper{err: vendorErr}, &fakeLimiter{}, nil, FallbackToSynthetic, testLogger())

			m, err := svc.Scrape(context.Background(), entity.PlatformTikTok, "nasa", "")
			if err != nil {
				t.Fatalf("Scrape() error: %v, vendor failures must degrade", err)
			}
			if m.Source != entity.SourceSynthetic {
				t.Errorf("source = %s, want synthetic", m.Source)
			}
			if m.Username != "nasa" {
				t.Errorf("username = %q, want nasa", m.Username)
			}
			if m.Followers == nil || *m.Followers <= 0 {
				t.Error("synthetic followers should be positive")
			}
		})
	}
}

func TestScrapeMalformedPayloadFallsBack(t *testing.T) {
	svc := New(&fakeScraper{raw: json.RawMessage(`"garbage"`)}, &fakeLimiter{}, nil, FallbackToSynthetic, testLogger())

	m, err := svc.Scrape(context.Background(), entity.PlatformInstagram, "nasa", "")
	if err != nil {
		t.Fatalf("Scrape() error: %v", err)
	}
	if m.Source != entity.SourceSynthetic {
		t.Errorf("source = %s, want synthetic", m.Source)
	}
}

func TestScrapeFailClosed(t *testing.T) {
	svc := New(&fakeScraper{err: entity.ErrJobFailed}, &fakeLimiter{}, nil, FailClosed, testLogger())

	_, err := svc.Scrape(context.Background(), entity.PlatformInstagram, "nasa", "")
	if !errors.Is(err, entity.ErrJobFailed) {
		t.Errorf("error = %v, want ErrJobFailed", err)
	}
}

func TestScrapeRateLimited(t *testing.T) {
	limitErr := &entity.RateLimitError{Key: "instagram:nasa", RetryAfter: time.Minute}
	scraper := &fakeScraper{raw: json.RawMessage(`[{}]`)}

	svc := New(scraper, &fakeLimiter{err: limitErr}, nil, FallbackToSynthetic, testLogger())

	_, err := svc.Scrape(context.Background(), entity.PlatformInstagram, "nasa", "")
	var limited *entity.RateLimitError
	if !errors.As(err, &limited) {
		t.Fatalf("error = %v, want RateLimitError", err)
	}
	if len(scraper.gots) != 0 {
		t.Error("vendor must not be called when rate limited")
	}
}

func TestScrapeEmptyUsername(t *testing.T) {
	svc := New(&fakeScraper{}, &fakeLimiter{}, nil, FallbackToSynthetic, testLogger())

	_, err := svc.Scrape(context.Background(), entity.PlatformInstagram, "", "")
	if !errors.Is(err, entity.ErrEmptyIdentifier) {
		t.Errorf("error = %v, want ErrEmptyIdentifier", err)
	}
}

func TestScrapeArchiveFailureIgnored(t *testing.T) {
	scraper := &fakeScraper{raw: json.RawMessage(`[{"followersCount": 10}]`)}
	archiver := &fakeArchiver{err: errors.New("bucket missing")}

	svc := New(scraper, &fakeLimiter{}, archiver, FallbackToSynthetic, testLogger())

	m, err := svc.Scrape(context.Background(), entity.PlatformInstagram, "nasa", "")
	if err != nil {
		t.Fatalf("Scrape() error: %v", err)
	}
	if m.Source != entity.SourceVendor {
		t.Errorf("source = %s, want vendor", m.Source)
	}
}

func TestIsCallerError(t *testing.T) {
	callerErrs := []error{
		&entity.UnsupportedPlatformError{Platform: "myspace"},
		&entity.RateLimitError{Key: "k"},
		entity.ErrEmptyIdentifier,
	}
	for _, err := range callerErrs {
		if !IsCallerError(err) {
			t.Errorf("IsCallerError(%v) = false, want true", err)
		}
	}

	if IsCallerError(entity.ErrJobFailed) {
		t.Error("vendor failures are not caller errors")
	}
}
