package normalize

import (
	"encoding/json"
	"time"

	"github.com/vadim/social-pulse/internal/domain/metrics/entity"
	"github.com/vadim/social-pulse/internal/domain/metrics/synth"
)

// estimate holds the platform-typical constants used when the vendor does
// not report a metric. Comment/share ratios are fractions of the derived
// likes-per-post value.
type estimate struct {
	engagement   float64 // percent
	growth       float64 // percent, monthly
	commentRatio float64
	shareRatio   float64
}

var estimates = map[entity.Platform]estimate{
	entity.PlatformInstagram: {engagement: 2.5, growth: 0.8, commentRatio: 0.2, shareRatio: 0.1},
	entity.PlatformTwitter:   {engagement: 1.8, growth: 0.5, commentRatio: 0.3, shareRatio: 0.4},
	entity.PlatformFacebook:  {engagement: 2.0, growth: 0.6, commentRatio: 0.2, shareRatio: 0.15},
	entity.PlatformTikTok:    {engagement: 6.5, growth: 1.2, commentRatio: 0.15, shareRatio: 0.3},
	entity.PlatformYouTube:   {engagement: 4.0, growth: 0.7, commentRatio: 0.1, shareRatio: 0.02},
	entity.PlatformLinkedIn:  {engagement: 2.0, growth: 0.5, commentRatio: 0.2, shareRatio: 0.05},
}

// Hints carry request context the payload itself may lack
type Hints struct {
	Username   string
	ProfileURL string
}

// Normalize maps a raw vendor payload for a platform into the canonical
// profile metrics model. Deterministic fields (followers, following, posts)
// come straight from the payload; metrics the snapshot actors never report
// (engagement, growth, time series, content performance) are estimated or
// synthesized and flagged as such.
func Normalize(raw json.RawMessage, platform entity.Platform, hints Hints) (*entity.ProfileMetrics, error) {
	shape, err := decodeShape(raw)
	if err != nil {
		return nil, err
	}
	item, err := shape.first()
	if err != nil {
		return nil, err
	}

	fields := fieldMaps[platform]

	m := &entity.ProfileMetrics{
		Platform:   platform,
		Username:   hints.Username,
		ProfileURL: hints.ProfileURL,
		ScrapeDate: time.Now(),
		Source:     entity.SourceVendor,
	}

	if username, ok := stringAt(item, fields.username); ok {
		m.Username = username
	}
	if url, ok := stringAt(item, fields.profileURL); ok {
		m.ProfileURL = url
	}
	if m.ProfileURL == "" && m.Username != "" {
		m.ProfileURL = entity.ProfileURL(platform, m.Username)
	}

	// Deterministic fields. The vendor convention reports unknown counts as
	// zero, so coercion to 0 happens here, at the last step, and nowhere
	// earlier in the extraction chain.
	followers, _ := countAt(item, fields.followers)
	if followers < 0 {
		followers = 0
	}
	m.Followers = entity.Int64(followers)

	if following, ok := countAt(item, fields.following); ok && following >= 0 {
		m.Following = entity.Int64(following)
	}
	if posts, ok := countAt(item, fields.posts); ok && posts >= 0 {
		m.Posts = entity.Int64(posts)
	}
	if views, ok := countAt(item, fields.views); ok && views >= 0 {
		m.Views = entity.Int64(views)
	}

	est := estimates[platform]

	// Engagement and growth are never reported by the snapshot actors;
	// take them from the payload when a future actor provides them, else
	// fall back to the platform-typical constants and flag the estimate.
	if v, ok := firstPresent(item, []string{"engagement", "engagementRate"}); ok {
		if f, isFloat := v.(float64); isFloat {
			m.Engagement = entity.Float64(f)
		}
	}
	if m.Engagement == nil {
		m.Engagement = entity.Float64(est.engagement)
		m.Estimated.Engagement = true
	}

	if v, ok := firstPresent(item, []string{"growthRate", "growth"}); ok {
		if f, isFloat := v.(float64); isFloat {
			m.Growth = entity.Float64(f)
		}
	}
	if m.Growth == nil {
		m.Growth = entity.Float64(est.growth)
		m.Estimated.Growth = true
	}

	// Interaction counts: prefer vendor numbers (TikTok reports hearts),
	// otherwise estimate from followers and the engagement rate
	likes, likesReported := countAt(item, fields.likes)
	if !likesReported {
		likes = int64(float64(followers) * *m.Engagement / 100)
		m.Estimated.Interactions = true
	}
	m.Likes = entity.Int64(likes)
	base := int64(float64(followers) * *m.Engagement / 100)
	m.Comments = entity.Int64(int64(float64(base) * est.commentRatio))
	m.Shares = entity.Int64(int64(float64(base) * est.shareRatio))

	// The actors return snapshot data only; history and per-content numbers
	// are always synthesized, seeded by the username for reproducibility
	if followers > 0 {
		gen := synth.ForIdentifier(seedIdentifier(m.Username, hints))
		m.DailyStats = gen.DailyStats(followers)
		m.ContentPerformance = gen.ContentPerformance(followers, platform)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

func seedIdentifier(username string, hints Hints) string {
	if username != "" {
		return username
	}
	return hints.ProfileURL
}
