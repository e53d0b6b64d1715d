package apify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vadim/social-pulse/internal/domain/metrics/entity"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSpecs() map[entity.Platform]ActorSpec {
	return ActorSpecs(map[entity.Platform]string{
		entity.PlatformInstagram: "apify~instagram-profile-scraper",
	})
}

// scrapeServer simulates the run lifecycle: created, polled until the
// configured number of polls, then terminal
func scrapeServer(t *testing.T, pollsUntilDone int, finalStatus RunStatus) *httptest.Server {
	t.Helper()

	var polls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/acts/{actor}/runs", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"id": "run-1", "status": "READY"},
		})
	})
	mux.HandleFunc("GET /v2/actor-runs/run-1", func(w http.ResponseWriter, r *http.Request) {
		status := RunStatusRunning
		if polls.Add(1) >= int64(pollsUntilDone) {
			status = finalStatus
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"id": "run-1", "status": string(status)},
		})
	})
	mux.HandleFunc("GET /v2/actor-runs/run-1/dataset/items", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"username": "nasa", "followersCount": 100}]`))
	})

	return httptest.NewServer(mux)
}

func TestScrapeSucceeds(t *testing.T) {
	srv := scrapeServer(t, 2, RunStatusSucceeded)
	defer srv.Close()

	runner := NewRunner(New("secret", WithBaseURL(srv.URL)), testSpecs(), testLogger(),
		WithPollInterval(time.Millisecond))

	raw, err := runner.Scrape(context.Background(), entity.PlatformInstagram, "nasa", "https://www.instagram.com/nasa/")
	if err != nil {
		t.Fatalf("Scrape() error: %v", err)
	}

	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	if len(items) != 1 || items[0]["username"] != "nasa" {
		t.Errorf("unexpected payload: %v", items)
	}
}

func TestScrapeRunFails(t *testing.T) {
	srv := scrapeServer(t, 1, RunStatusFailed)
	defer srv.Close()

	runner := NewRunner(New("secret", WithBaseURL(srv.URL)), testSpecs(), testLogger(),
		WithPollInterval(time.Millisecond))

	_, err := runner.Scrape(context.Background(), entity.PlatformInstagram, "nasa", "")
	if !errors.Is(err, entity.ErrJobFailed) {
		t.Errorf("error = %v, want ErrJobFailed", err)
	}
}

func TestScrapePollCeiling(t *testing.T) {
	// Run never terminates
	srv := scrapeServer(t, 1000, RunStatusSucceeded)
	defer srv.Close()

	runner := NewRunner(New("secret", WithBaseURL(srv.URL)), testSpecs(), testLogger(),
		WithPollInterval(time.Millisecond), WithMaxPolls(3))

	_, err := runner.Scrape(context.Background(), entity.PlatformInstagram, "nasa", "")
	if !errors.Is(err, entity.ErrJobTimeout) {
		t.Errorf("error = %v, want ErrJobTimeout", err)
	}
}

func TestScrapeWallClockBudget(t *testing.T) {
	srv := scrapeServer(t, 1000, RunStatusSucceeded)
	defer srv.Close()

	runner := NewRunner(New("secret", WithBaseURL(srv.URL)), testSpecs(), testLogger(),
		WithPollInterval(50*time.Millisecond), WithRunBudget(10*time.Millisecond))

	_, err := runner.Scrape(context.Background(), entity.PlatformInstagram, "nasa", "")
	if !errors.Is(err, entity.ErrJobTimeout) {
		t.Errorf("error = %v, want ErrJobTimeout", err)
	}
}

func TestScrapeRetriesStartOnce(t *testing.T) {
	var starts atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/acts/{actor}/runs", func(w http.ResponseWriter, r *http.Request) {
		if starts.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"id": "run-1", "status": "SUCCEEDED"},
		})
	})
	mux.HandleFunc("GET /v2/actor-runs/run-1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"id": "run-1", "status": "SUCCEEDED"},
		})
	})
	mux.HandleFunc("GET /v2/actor-runs/run-1/dataset/items", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{}]`))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	runner := NewRunner(New("secret", WithBaseURL(srv.URL)), testSpecs(), testLogger(),
		WithPollInterval(time.Millisecond))

	if _, err := runner.Scrape(context.Background(), entity.PlatformInstagram, "nasa", ""); err != nil {
		t.Fatalf("Scrape() error: %v", err)
	}
	if starts.Load() != 2 {
		t.Errorf("start attempts = %d, want 2", starts.Load())
	}
}

func TestScrapeUnconfiguredActor(t *testing.T) {
	runner := NewRunner(New("secret"), testSpecs(), testLogger())

	_, err := runner.Scrape(context.Background(), entity.PlatformLinkedIn, "someone", "")
	if !errors.Is(err, entity.ErrJobStart) {
		t.Errorf("error = %v, want ErrJobStart", err)
	}
}
