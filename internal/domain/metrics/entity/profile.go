package entity

import (
	"fmt"
	"strings"
	"time"
)

// Platform identifies a supported social network
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformFacebook  Platform = "facebook"
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
	PlatformLinkedIn  Platform = "linkedin"
)

// SupportedPlatforms lists every platform the scraper knows how to handle,
// in the order detection probes them
var SupportedPlatforms = []Platform{
	PlatformInstagram,
	PlatformTwitter,
	PlatformFacebook,
	PlatformTikTok,
	PlatformYouTube,
	PlatformLinkedIn,
}

// ParsePlatform normalizes a user-supplied platform name.
// "x" is accepted as an alias for twitter.
func ParsePlatform(s string) (Platform, error) {
	switch Platform(strings.ToLower(strings.TrimSpace(s))) {
	case PlatformInstagram:
		return PlatformInstagram, nil
	case PlatformTwitter, Platform("x"):
		return PlatformTwitter, nil
	case PlatformFacebook:
		return PlatformFacebook, nil
	case PlatformTikTok:
		return PlatformTikTok, nil
	case PlatformYouTube:
		return PlatformYouTube, nil
	case PlatformLinkedIn:
		return PlatformLinkedIn, nil
	default:
		return "", &UnsupportedPlatformError{Platform: s}
	}
}

// ContentType represents the kind of a published content item
type ContentType string

const (
	ContentTypePost    ContentType = "post"
	ContentTypeVideo   ContentType = "video"
	ContentTypeStory   ContentType = "story"
	ContentTypeReel    ContentType = "reel"
	ContentTypeArticle ContentType = "article"
)

// contentTypesByPlatform maps each platform to the content types it can host
var contentTypesByPlatform = map[Platform][]ContentType{
	PlatformInstagram: {ContentTypePost, ContentTypeReel, ContentTypeStory},
	PlatformTwitter:   {ContentTypePost},
	PlatformFacebook:  {ContentTypePost, ContentTypeVideo},
	PlatformTikTok:    {ContentTypeVideo},
	PlatformYouTube:   {ContentTypeVideo},
	PlatformLinkedIn:  {ContentTypePost, ContentTypeArticle},
}

// ContentTypesFor returns the allowed content types for a platform.
// Unknown platforms get the generic post type.
func ContentTypesFor(p Platform) []ContentType {
	if types, ok := contentTypesByPlatform[p]; ok {
		return types
	}
	return []ContentType{ContentTypePost}
}

// DataSource records where a metrics record came from. It is internal
// bookkeeping: the API response never exposes it.
type DataSource string

const (
	SourceVendor    DataSource = "vendor"
	SourceSynthetic DataSource = "synthetic"
)

// ParseSource normalizes a user-supplied data source name
func ParseSource(s string) (DataSource, error) {
	switch DataSource(strings.ToLower(strings.TrimSpace(s))) {
	case SourceVendor:
		return SourceVendor, nil
	case SourceSynthetic:
		return SourceSynthetic, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSource, s)
	}
}

// DailyStat is one day of follower/engagement history
type DailyStat struct {
	Date       string  `json:"date"` // YYYY-MM-DD
	Followers  int64   `json:"followers"`
	Engagement float64 `json:"engagement"`
	Views      *int64  `json:"views,omitempty"`
}

// ContentItem is one published piece of content with its performance numbers
type ContentItem struct {
	ID       string      `json:"id"`
	Type     ContentType `json:"type"`
	Title    string      `json:"title"`
	Date     string      `json:"date"` // YYYY-MM-DD
	Likes    int64       `json:"likes"`
	Comments int64       `json:"comments"`
	Shares   int64       `json:"shares"`
	Views    *int64      `json:"views,omitempty"`
}

// EstimatedFields marks which metric groups were derived from platform-typical
// constants rather than reported by the vendor
type EstimatedFields struct {
	Engagement   bool
	Growth       bool
	Interactions bool // likes/comments/shares
}

// ProfileMetrics is the canonical output of one scrape. Numeric fields are
// pointers so "vendor didn't report it" stays distinguishable from an observed
// zero. Constructed fresh per request and never mutated afterwards.
type ProfileMetrics struct {
	Platform   Platform `json:"platform"`
	Username   string   `json:"username,omitempty"`
	ProfileURL string   `json:"profile_url"`

	Followers  *int64   `json:"followers,omitempty"`
	Following  *int64   `json:"following,omitempty"`
	Posts      *int64   `json:"posts,omitempty"`
	Engagement *float64 `json:"engagement,omitempty"` // percent
	Growth     *float64 `json:"growth,omitempty"`     // percent, monthly
	Views      *int64   `json:"views,omitempty"`
	Likes      *int64   `json:"likes,omitempty"`
	Comments   *int64   `json:"comments,omitempty"`
	Shares     *int64   `json:"shares,omitempty"`

	DailyStats         []DailyStat   `json:"daily_stats,omitempty"`
	ContentPerformance []ContentItem `json:"content_performance,omitempty"`

	ScrapeDate time.Time `json:"scrape_date"`

	// Operational bookkeeping, not part of the API contract
	Source    DataSource      `json:"-"`
	Estimated EstimatedFields `json:"-"`
}

const (
	// MaxDailyStats caps the follower history length
	MaxDailyStats = 30
	// MaxContentItems caps the content performance sample
	MaxContentItems = 10
)

// Validate checks the structural invariants of a metrics record
func (m *ProfileMetrics) Validate() error {
	if m.Followers != nil && *m.Followers < 0 {
		return ErrNegativeCount
	}
	if len(m.DailyStats) > MaxDailyStats {
		return ErrTooManyDailyStats
	}
	if len(m.ContentPerformance) > MaxContentItems {
		return ErrTooManyContentItems
	}
	for i := 1; i < len(m.DailyStats); i++ {
		// ISO dates compare correctly as strings
		if m.DailyStats[i].Date <= m.DailyStats[i-1].Date {
			return ErrDailyStatsOutOfOrder
		}
	}
	for _, d := range m.DailyStats {
		if d.Followers < 0 {
			return ErrNegativeCount
		}
	}
	return nil
}

// Int64 returns a pointer to v, for optional metric fields
func Int64(v int64) *int64 { return &v }

// Float64 returns a pointer to v, for optional metric fields
func Float64(v float64) *float64 { return &v }
