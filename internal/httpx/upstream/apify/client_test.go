package apify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vadim/social-pulse/internal/domain/metrics/entity"
)

func TestStartRun(t *testing.T) {
	var gotPath, gotToken string
	var gotInput map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.URL.Query().Get("token")
		json.NewDecoder(r.Body).Decode(&gotInput)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"id": "run-1", "status": "READY"},
		})
	}))
	defer srv.Close()

	client := New("secret", WithBaseURL(srv.URL))
	run, err := client.StartRun(context.Background(), "apify~instagram-profile-scraper", map[string]any{
		"usernames": []string{"nasa"},
	})
	if err != nil {
		t.Fatalf("StartRun() error: %v", err)
	}

	if run.ID != "run-1" {
		t.Errorf("run ID = %q, want run-1", run.ID)
	}
	if gotPath != "/v2/acts/apify~instagram-profile-scraper/runs" {
		t.Errorf("path = %q", gotPath)
	}
	if gotToken != "secret" {
		t.Errorf("token = %q, want secret", gotToken)
	}
	if _, ok := gotInput["usernames"]; !ok {
		t.Error("actor input not forwarded")
	}
}

func TestStartRunMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{}})
	}))
	defer srv.Close()

	client := New("secret", WithBaseURL(srv.URL))
	_, err := client.StartRun(context.Background(), "some-actor", nil)
	if !errors.Is(err, entity.ErrJobStart) {
		t.Errorf("error = %v, want ErrJobStart", err)
	}
}

func TestStartRunAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"type": "token-not-found", "message": "invalid token"},
		})
	}))
	defer srv.Close()

	client := New("bad", WithBaseURL(srv.URL))
	_, err := client.StartRun(context.Background(), "some-actor", nil)
	if !errors.Is(err, entity.ErrVendorAuth) {
		t.Errorf("error = %v, want ErrVendorAuth", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want APIError", err)
	}
	if apiErr.Type != "token-not-found" {
		t.Errorf("type = %q, want token-not-found", apiErr.Type)
	}
}

func TestGetRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/actor-runs/run-1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"id": "run-1", "status": "SUCCEEDED", "defaultDatasetId": "ds-1"},
		})
	}))
	defer srv.Close()

	client := New("secret", WithBaseURL(srv.URL))
	run, err := client.GetRun(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("GetRun() error: %v", err)
	}
	if run.Status != RunStatusSucceeded {
		t.Errorf("status = %q, want SUCCEEDED", run.Status)
	}
}

func TestRunStatusTerminal(t *testing.T) {
	terminal := []RunStatus{RunStatusSucceeded, RunStatusFailed, RunStatusAborted, RunStatusTimedOut}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []RunStatus{RunStatusReady, RunStatusRunning} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestDatasetItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/actor-runs/run-1/dataset/items" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`[{"followersCount": 10}]`))
	}))
	defer srv.Close()

	client := New("secret", WithBaseURL(srv.URL))
	raw, err := client.DatasetItems(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("DatasetItems() error: %v", err)
	}

	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		t.Fatalf("decoding items: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("items = %d, want 1", len(items))
	}
}

func TestCheckConnection(t *testing.T) {
	var gotPath, gotToken string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.URL.Query().Get("token")

		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"id": "user-1", "username": "pr-analytics"},
		})
	}))
	defer srv.Close()

	client := New("secret", WithBaseURL(srv.URL))
	user, err := client.CheckConnection(context.Background())
	if err != nil {
		t.Fatalf("CheckConnection() error: %v", err)
	}

	if gotPath != "/v2/users/me" {
		t.Errorf("path = %q, want /v2/users/me", gotPath)
	}
	if gotToken != "secret" {
		t.Errorf("token = %q, want secret", gotToken)
	}
	if user.Username != "pr-analytics" {
		t.Errorf("username = %q, want pr-analytics", user.Username)
	}
}

func TestCheckConnectionAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"type": "token-not-found", "message": "invalid token"},
		})
	}))
	defer srv.Close()

	client := New("bad", WithBaseURL(srv.URL))
	_, err := client.CheckConnection(context.Background())
	if !errors.Is(err, entity.ErrVendorAuth) {
		t.Errorf("error = %v, want ErrVendorAuth", err)
	}
}
