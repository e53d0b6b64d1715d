// Package service orchestrates one profile scrape: rate limiting, the vendor
// job, normalization, and the synthetic fallback that keeps the API total.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vadim/social-pulse/internal/domain/metrics/entity"
	"github.com/vadim/social-pulse/internal/domain/metrics/normalize"
	"github.com/vadim/social-pulse/internal/domain/metrics/synth"
)

// Scraper runs a vendor scrape job for one profile and returns the raw
// dataset. This interface is defined here (consumer) not in the upstream
// package (provider).
type Scraper interface {
	Scrape(ctx context.Context, platform entity.Platform, username, profileURL string) (json.RawMessage, error)
}

// Limiter reserves a scrape slot for a rate-limit key, returning the delay
// to observe before starting
type Limiter interface {
	Reserve(key string) (time.Duration, error)
}

// Archiver stores raw vendor payloads for later reprocessing
type Archiver interface {
	ArchivePayload(ctx context.Context, platform entity.Platform, username string, payload []byte) error
}

// FailurePolicy decides what a vendor failure turns into
type FailurePolicy string

const (
	// FallbackToSynthetic replaces any vendor failure with generated
	// metrics so the caller always gets data
	FallbackToSynthetic FailurePolicy = "fallback"
	// FailClosed surfaces vendor failures to the caller
	FailClosed FailurePolicy = "fail_closed"
)

// Service handles the scrape workflow for profile metrics
type Service struct {
	scraper  Scraper
	limiter  Limiter
	archiver Archiver // optional
	policy   FailurePolicy
	logger   *slog.Logger
}

// New creates a new metrics service. archiver may be nil.
func New(scraper Scraper, limiter Limiter, archiver Archiver, policy FailurePolicy, logger *slog.Logger) *Service {
	if policy == "" {
		policy = FallbackToSynthetic
	}
	return &Service{
		scraper:  scraper,
		limiter:  limiter,
		archiver: archiver,
		policy:   policy,
		logger:   logger,
	}
}

// Scrape fetches current metrics for one profile. An empty profileURL is
// replaced with the canonical URL for the platform. Vendor failures of any
// kind degrade to synthetic metrics under the fallback policy; only bad
// input and rate-limit rejections reach the caller as errors.
func (s *Service) Scrape(ctx context.Context, platform entity.Platform, username, profileURL string) (*entity.ProfileMetrics, error) {
	if username == "" {
		return nil, entity.ErrEmptyIdentifier
	}

	if profileURL == "" {
		profileURL = entity.ProfileURL(platform, username)
	}
	key := string(platform) + ":" + username

	wait, err := s.limiter.Reserve(key)
	if err != nil {
		return nil, err
	}
	if wait > 0 {
		s.logger.Debug("pacing scrape job",
			slog.String("key", key),
			slog.Duration("wait", wait),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	raw, err := s.scraper.Scrape(ctx, platform, username, profileURL)
	if err != nil {
		return s.degrade(platform, username, profileURL, fmt.Errorf("vendor scrape: %w", err))
	}

	s.archive(ctx, platform, username, raw)

	m, err := normalize.Normalize(raw, platform, normalize.Hints{
		Username:   username,
		ProfileURL: profileURL,
	})
	if err != nil {
		return s.degrade(platform, username, profileURL, fmt.Errorf("normalizing payload: %w", err))
	}

	s.logger.Info("scrape complete",
		slog.String("platform", string(platform)),
		slog.String("username", username),
		slog.String("source", string(m.Source)),
	)

	return m, nil
}

// degrade applies the failure policy to a vendor error
func (s *Service) degrade(platform entity.Platform, username, profileURL string, cause error) (*entity.ProfileMetrics, error) {
	if s.policy == FailClosed {
		return nil, cause
	}

	s.logger.Warn("vendor scrape failed, generating synthetic metrics",
		slog.String("platform", string(platform)),
		slog.String("username", username),
		slog.String("error", cause.Error()),
	)

	m := synth.ForIdentifier(username).Profile(platform, username, profileURL)

	s.logger.Info("scrape complete",
		slog.String("platform", string(platform)),
		slog.String("username", username),
		slog.String("source", string(m.Source)),
	)

	return m, nil
}

// archive stores the raw payload, best effort. Archiving exists for payload
// forensics and replay; a failure never affects the scrape result.
func (s *Service) archive(ctx context.Context, platform entity.Platform, username string, raw []byte) {
	if s.archiver == nil || len(raw) == 0 {
		return
	}
	if err := s.archiver.ArchivePayload(ctx, platform, username, raw); err != nil {
		s.logger.Warn("payload archive failed",
			slog.String("platform", string(platform)),
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
	}
}

// IsCallerError reports whether a scrape error is the caller's fault rather
// than an internal failure
func IsCallerError(err error) bool {
	var unsupported *entity.UnsupportedPlatformError
	var limited *entity.RateLimitError
	return errors.As(err, &unsupported) ||
		errors.As(err, &limited) ||
		errors.Is(err, entity.ErrEmptyIdentifier)
}
