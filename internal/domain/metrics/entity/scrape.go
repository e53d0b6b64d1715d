package entity

import "time"

// ScrapeRecord is one row of scrape history: who was scraped, where the
// data came from, and the full metrics snapshot for later inspection
type ScrapeRecord struct {
	ID         string          `json:"id"`
	Platform   Platform        `json:"platform"`
	Username   string          `json:"username"`
	ProfileURL string          `json:"profile_url"`
	Source     DataSource      `json:"source"`
	Metrics    *ProfileMetrics `json:"metrics,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
