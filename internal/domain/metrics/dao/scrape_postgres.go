package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/social-pulse/internal/domain/metrics/entity"
)

// ScrapeHistoryPostgres implements ScrapeHistoryRepository for PostgreSQL
type ScrapeHistoryPostgres struct {
	pool *pgxpool.Pool
}

// NewScrapeHistoryPostgres creates a new PostgreSQL scrape history repository
func NewScrapeHistoryPostgres(pool *pgxpool.Pool) *ScrapeHistoryPostgres {
	return &ScrapeHistoryPostgres{pool: pool}
}

// Create inserts a new scrape record
func (r *ScrapeHistoryPostgres) Create(ctx context.Context, rec *entity.ScrapeRecord) error {
	query := `
		INSERT INTO scrape_history (id, platform, username, profile_url, source, metrics, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	metrics, err := json.Marshal(rec.Metrics)
	if err != nil {
		return fmt.Errorf("encoding metrics: %w", err)
	}

	_, err = r.pool.Exec(ctx, query,
		rec.ID,
		rec.Platform,
		rec.Username,
		rec.ProfileURL,
		rec.Source,
		metrics,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting scrape record: %w", err)
	}

	return nil
}

// GetByID retrieves a scrape record by ID
func (r *ScrapeHistoryPostgres) GetByID(ctx context.Context, id string) (*entity.ScrapeRecord, error) {
	query := `
		SELECT id, platform, username, profile_url, source, metrics, created_at
		FROM scrape_history
		WHERE id = $1
	`

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// List retrieves scrape records, newest first
func (r *ScrapeHistoryPostgres) List(ctx context.Context, filter HistoryFilter, opts ListOptions) ([]entity.ScrapeRecord, error) {
	query := `
		SELECT id, platform, username, profile_url, source, metrics, created_at
		FROM scrape_history
	`

	where, args := buildWhere(filter)
	query += where
	query += " ORDER BY created_at DESC"

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying scrape history: %w", err)
	}
	defer rows.Close()

	var records []entity.ScrapeRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scrape history: %w", err)
	}

	return records, nil
}

// Count returns the total number of records matching the filter
func (r *ScrapeHistoryPostgres) Count(ctx context.Context, filter HistoryFilter) (int64, error) {
	query := "SELECT COUNT(*) FROM scrape_history"

	where, args := buildWhere(filter)
	query += where

	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting scrape history: %w", err)
	}

	return count, nil
}

// DeleteOlderThan removes records created before the cutoff
func (r *ScrapeHistoryPostgres) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM scrape_history WHERE created_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning scrape history: %w", err)
	}

	return tag.RowsAffected(), nil
}

func buildWhere(filter HistoryFilter) (string, []any) {
	var clauses []string
	var args []any

	if filter.Platform != nil {
		args = append(args, *filter.Platform)
		clauses = append(clauses, fmt.Sprintf("platform = $%d", len(args)))
	}
	if filter.Username != "" {
		args = append(args, filter.Username)
		clauses = append(clauses, fmt.Sprintf("username = $%d", len(args)))
	}
	if filter.Source != nil {
		args = append(args, *filter.Source)
		clauses = append(clauses, fmt.Sprintf("source = $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", nil
	}

	where := " WHERE " + clauses[0]
	for _, c := range clauses[1:] {
		where += " AND " + c
	}
	return where, args
}

func scanRecord(row pgx.Row) (*entity.ScrapeRecord, error) {
	var rec entity.ScrapeRecord
	var metrics []byte

	err := row.Scan(
		&rec.ID,
		&rec.Platform,
		&rec.Username,
		&rec.ProfileURL,
		&rec.Source,
		&metrics,
		&rec.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning scrape record: %w", err)
	}

	if len(metrics) > 0 {
		if err := json.Unmarshal(metrics, &rec.Metrics); err != nil {
			return nil, fmt.Errorf("decoding metrics: %w", err)
		}
	}

	return &rec, nil
}
