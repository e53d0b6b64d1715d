package dao

import (
	"context"
	"time"

	"github.com/vadim/social-pulse/internal/domain/metrics/entity"
)

// HistoryFilter contains filters for listing scrape history
type HistoryFilter struct {
	Platform *entity.Platform
	Username string
	Source   *entity.DataSource
}

// ListOptions contains pagination options. History is always newest first.
type ListOptions struct {
	Limit  int
	Offset int
}

// ScrapeHistoryRepository defines the interface for scrape history data access
type ScrapeHistoryRepository interface {
	// Create inserts a new scrape record
	Create(ctx context.Context, rec *entity.ScrapeRecord) error

	// GetByID retrieves a scrape record by its ID
	GetByID(ctx context.Context, id string) (*entity.ScrapeRecord, error)

	// List retrieves scrape records with optional filtering and pagination
	List(ctx context.Context, filter HistoryFilter, opts ListOptions) ([]entity.ScrapeRecord, error)

	// Count returns the total number of records matching the filter
	Count(ctx context.Context, filter HistoryFilter) (int64, error)

	// DeleteOlderThan removes records created before the cutoff and returns
	// how many were deleted
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
