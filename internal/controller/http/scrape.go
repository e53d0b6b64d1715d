package http

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/social-pulse/internal/domain/metrics/entity"
	"github.com/vadim/social-pulse/internal/domain/metrics/policy"
	"github.com/vadim/social-pulse/internal/httpx/response"
)

// ScrapePolicy defines the interface for scrape operations
// Interface is defined by consumer (handler), not provider (policy)
type ScrapePolicy interface {
	ScrapeProfile(ctx context.Context, in policy.ScrapeProfileInput) (*entity.ProfileMetrics, error)
	ScrapeURL(ctx context.Context, url string) (*entity.ProfileMetrics, error)
	History(ctx context.Context, in policy.HistoryInput) (*policy.HistoryOutput, error)
	HistoryRecord(ctx context.Context, id string) (*entity.ScrapeRecord, error)
}

// ScrapeHandler handles HTTP requests for profile scraping
type ScrapeHandler struct {
	policy ScrapePolicy
}

// NewScrapeHandler creates a new scrape handler
func NewScrapeHandler(p ScrapePolicy) *ScrapeHandler {
	return &ScrapeHandler{policy: p}
}

// RegisterRoutes registers scrape routes
func (h *ScrapeHandler) RegisterRoutes(r chi.Router) {
	r.Post("/scrape", h.ScrapeProfile())
	r.Post("/scrape/url", h.ScrapeURL())
	r.Get("/scrapes", h.History())
	r.Get("/scrapes/{id}", h.HistoryRecord())
}

// ScrapeEnvelope is the uniform body of every scrape response. The scrape
// endpoints answer 200 regardless of outcome; success tells them apart.
type ScrapeEnvelope struct {
	Success bool                   `json:"success"`
	Data    *entity.ProfileMetrics `json:"data,omitempty"`
	Error   string                 `json:"error,omitempty"`

	// RetryAfterSeconds accompanies rate-limited failures
	RetryAfterSeconds int64 `json:"retry_after_seconds,omitempty"`
}

// ScrapeProfileRequest is the request body for scraping by platform and handle
type ScrapeProfileRequest struct {
	Platform   string `json:"platform"`
	Username   string `json:"username"`
	ProfileURL string `json:"profile_url,omitempty"`
}

// ScrapeProfile handles POST /scrape
func (h *ScrapeHandler) ScrapeProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ScrapeProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.OK(w, ScrapeEnvelope{Error: "invalid JSON"})
			return
		}

		m, err := h.policy.ScrapeProfile(r.Context(), policy.ScrapeProfileInput{
			Platform:   req.Platform,
			Username:   req.Username,
			ProfileURL: req.ProfileURL,
		})
		if err != nil {
			response.OK(w, scrapeFailure(err))
			return
		}

		response.OK(w, ScrapeEnvelope{Success: true, Data: m})
	}
}

// ScrapeURLRequest is the request body for scraping by profile URL
type ScrapeURLRequest struct {
	URL string `json:"url"`
}

// ScrapeURL handles POST /scrape/url
func (h *ScrapeHandler) ScrapeURL() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ScrapeURLRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.OK(w, ScrapeEnvelope{Error: "invalid JSON"})
			return
		}

		m, err := h.policy.ScrapeURL(r.Context(), req.URL)
		if err != nil {
			response.OK(w, scrapeFailure(err))
			return
		}

		response.OK(w, ScrapeEnvelope{Success: true, Data: m})
	}
}

// HistoryResponse is the response body for the history listing
type HistoryResponse struct {
	Scrapes []entity.ScrapeRecord `json:"scrapes"`
	Total   int64                 `json:"total"`
	Limit   int                   `json:"limit"`
	Offset  int                   `json:"offset"`
}

// History handles GET /scrapes
func (h *ScrapeHandler) History() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		limit, _ := strconv.Atoi(q.Get("limit"))
		offset, _ := strconv.Atoi(q.Get("offset"))

		out, err := h.policy.History(r.Context(), policy.HistoryInput{
			Platform: q.Get("platform"),
			Username: q.Get("username"),
			Source:   q.Get("source"),
			Limit:    limit,
			Offset:   offset,
		})
		if err != nil {
			handleDomainError(w, err)
			return
		}

		scrapes := out.Records
		if scrapes == nil {
			scrapes = []entity.ScrapeRecord{}
		}

		response.OK(w, HistoryResponse{
			Scrapes: scrapes,
			Total:   out.Total,
			Limit:   limit,
			Offset:  offset,
		})
	}
}

// HistoryRecord handles GET /scrapes/{id}
func (h *ScrapeHandler) HistoryRecord() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		rec, err := h.policy.HistoryRecord(r.Context(), id)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		if rec == nil {
			response.NotFound(w, "scrape record not found")
			return
		}

		response.OK(w, rec)
	}
}

// scrapeFailure builds a failure envelope, with the structured retry hint
// when the scrape was rate limited
func scrapeFailure(err error) ScrapeEnvelope {
	env := ScrapeEnvelope{Error: scrapeErrorMessage(err)}
	var limited *entity.RateLimitError
	if errors.As(err, &limited) {
		env.RetryAfterSeconds = int64(math.Ceil(limited.RetryAfter.Seconds()))
	}
	return env
}

// scrapeErrorMessage keeps internal failure detail out of the envelope
func scrapeErrorMessage(err error) string {
	var unsupported *entity.UnsupportedPlatformError
	var limited *entity.RateLimitError
	switch {
	case errors.As(err, &unsupported), errors.As(err, &limited),
		errors.Is(err, entity.ErrEmptyIdentifier):
		return err.Error()
	default:
		return "scrape failed"
	}
}

// handleDomainError maps domain errors onto HTTP status codes for the
// RESTful endpoints
func handleDomainError(w http.ResponseWriter, err error) {
	var unsupported *entity.UnsupportedPlatformError
	var limited *entity.RateLimitError
	switch {
	case errors.As(err, &unsupported), errors.Is(err, entity.ErrEmptyIdentifier),
		errors.Is(err, entity.ErrUnknownSource):
		response.BadRequest(w, err.Error())
	case errors.As(err, &limited):
		response.Error(w, http.StatusTooManyRequests, err.Error())
	default:
		response.InternalError(w, "internal server error")
	}
}
