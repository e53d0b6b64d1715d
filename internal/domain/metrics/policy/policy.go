// Package policy orchestrates metrics use-cases: input resolution, the
// cache-then-scrape path, and history bookkeeping.
package policy

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vadim/social-pulse/internal/domain/metrics/dao"
	"github.com/vadim/social-pulse/internal/domain/metrics/entity"
)

// MetricsScraper runs one full scrape for a resolved profile.
// This interface is defined here (consumer) not in the service package (provider).
type MetricsScraper interface {
	Scrape(ctx context.Context, platform entity.Platform, username, profileURL string) (*entity.ProfileMetrics, error)
}

// MetricsCache is the read-through cache over scrape results
type MetricsCache interface {
	Get(ctx context.Context, platform entity.Platform, username string) (*entity.ProfileMetrics, error)
	Set(ctx context.Context, m *entity.ProfileMetrics) error
}

// Policy orchestrates the metrics use-cases
type Policy struct {
	scraper MetricsScraper
	cache   MetricsCache                // optional
	history dao.ScrapeHistoryRepository // optional
	logger  *slog.Logger
}

// New creates a new metrics policy. cache and history may be nil.
func New(scraper MetricsScraper, cache MetricsCache, history dao.ScrapeHistoryRepository, logger *slog.Logger) *Policy {
	return &Policy{
		scraper: scraper,
		cache:   cache,
		history: history,
		logger:  logger,
	}
}

// ScrapeProfileInput identifies a profile by platform name and handle.
// ProfileURL is optional; when empty the canonical URL is derived.
type ScrapeProfileInput struct {
	Platform   string
	Username   string
	ProfileURL string
}

// ScrapeProfile resolves the platform, then serves metrics from cache or a
// fresh scrape
func (p *Policy) ScrapeProfile(ctx context.Context, in ScrapeProfileInput) (*entity.ProfileMetrics, error) {
	platform, err := entity.ParsePlatform(in.Platform)
	if err != nil {
		return nil, err
	}

	username := strings.TrimPrefix(strings.TrimSpace(in.Username), "@")
	if username == "" {
		return nil, entity.ErrEmptyIdentifier
	}

	return p.scrape(ctx, platform, username, strings.TrimSpace(in.ProfileURL))
}

// ScrapeURL resolves a profile URL to a platform and handle, then scrapes it
func (p *Policy) ScrapeURL(ctx context.Context, url string) (*entity.ProfileMetrics, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, entity.ErrEmptyIdentifier
	}

	platform, ok := entity.DetectPlatform(url)
	if !ok {
		return nil, &entity.UnsupportedPlatformError{Platform: url}
	}

	username, ok := entity.ExtractUsername(url, platform)
	if !ok {
		// The URL names the platform but not a recognizable handle.
		// Scrape by URL and let the payload supply the username.
		username = url
	}

	return p.scrape(ctx, platform, username, url)
}

func (p *Policy) scrape(ctx context.Context, platform entity.Platform, username, profileURL string) (*entity.ProfileMetrics, error) {
	if p.cache != nil {
		cached, err := p.cache.Get(ctx, platform, username)
		if err != nil {
			p.logger.Warn("cache lookup failed",
				slog.String("platform", string(platform)),
				slog.String("username", username),
				slog.String("error", err.Error()),
			)
		}
		if cached != nil {
			p.logger.Debug("serving cached metrics",
				slog.String("platform", string(platform)),
				slog.String("username", username),
			)
			return cached, nil
		}
	}

	m, err := p.scraper.Scrape(ctx, platform, username, profileURL)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, m); err != nil {
			p.logger.Warn("cache store failed",
				slog.String("platform", string(platform)),
				slog.String("username", username),
				slog.String("error", err.Error()),
			)
		}
	}

	p.record(ctx, m)

	return m, nil
}

// record appends the scrape to history, best effort
func (p *Policy) record(ctx context.Context, m *entity.ProfileMetrics) {
	if p.history == nil {
		return
	}

	rec := &entity.ScrapeRecord{
		ID:         uuid.New().String(),
		Platform:   m.Platform,
		Username:   m.Username,
		ProfileURL: m.ProfileURL,
		Source:     m.Source,
		Metrics:    m,
		CreatedAt:  time.Now(),
	}

	if err := p.history.Create(ctx, rec); err != nil {
		p.logger.Warn("recording scrape history failed",
			slog.String("platform", string(m.Platform)),
			slog.String("username", m.Username),
			slog.String("error", err.Error()),
		)
	}
}

// HistoryInput filters and paginates the scrape history listing
type HistoryInput struct {
	Platform string
	Username string
	Source   string
	Limit    int
	Offset   int
}

// HistoryOutput is one page of scrape history
type HistoryOutput struct {
	Records []entity.ScrapeRecord
	Total   int64
}

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// History lists past scrapes, newest first
func (p *Policy) History(ctx context.Context, in HistoryInput) (*HistoryOutput, error) {
	if p.history == nil {
		return &HistoryOutput{}, nil
	}

	var filter dao.HistoryFilter
	if in.Platform != "" {
		platform, err := entity.ParsePlatform(in.Platform)
		if err != nil {
			return nil, err
		}
		filter.Platform = &platform
	}
	filter.Username = strings.TrimPrefix(strings.TrimSpace(in.Username), "@")
	if in.Source != "" {
		source, err := entity.ParseSource(in.Source)
		if err != nil {
			return nil, err
		}
		filter.Source = &source
	}

	limit := in.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}

	records, err := p.history.List(ctx, filter, dao.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}

	total, err := p.history.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &HistoryOutput{Records: records, Total: total}, nil
}

// HistoryRecord fetches one past scrape by its record ID. A miss returns
// (nil, nil); the transport layer decides how to report it.
func (p *Policy) HistoryRecord(ctx context.Context, id string) (*entity.ScrapeRecord, error) {
	if p.history == nil {
		return nil, nil
	}
	return p.history.GetByID(ctx, id)
}
