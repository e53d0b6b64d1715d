package normalize

import (
	"strings"

	"github.com/vadim/social-pulse/internal/domain/metrics/entity"
)

// lookup walks a dot-separated key path through nested objects.
// Nil leaf values count as absent.
func lookup(item map[string]any, path string) (any, bool) {
	cur := any(item)
	for _, key := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	if cur == nil {
		return nil, false
	}
	return cur, true
}

// firstPresent tries candidate key paths in priority order and returns the
// first present, non-null value
func firstPresent(item map[string]any, paths []string) (any, bool) {
	for _, p := range paths {
		if v, ok := lookup(item, p); ok {
			return v, true
		}
	}
	return nil, false
}

// countAt extracts an integer count from the first present candidate path,
// tolerating string counts like "1.5M"
func countAt(item map[string]any, paths []string) (int64, bool) {
	v, ok := firstPresent(item, paths)
	if !ok {
		return 0, false
	}
	return entity.CountOf(v)
}

// stringAt extracts a string from the first present candidate path
func stringAt(item map[string]any, paths []string) (string, bool) {
	v, ok := firstPresent(item, paths)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// fieldMap holds the per-field candidate key paths for one platform, in
// priority order. Alternate spellings accumulate as vendor actors get
// rotated; the first present value wins.
type fieldMap struct {
	username   []string
	profileURL []string
	followers  []string
	following  []string
	posts      []string
	likes      []string
	views      []string
}

var fieldMaps = map[entity.Platform]fieldMap{
	entity.PlatformInstagram: {
		username:   []string{"username"},
		profileURL: []string{"url", "inputUrl"},
		followers:  []string{"followersCount", "followers_count", "followers"},
		following:  []string{"followsCount", "follows_count", "followingCount", "following"},
		posts:      []string{"postsCount", "posts_count", "posts"},
	},
	entity.PlatformTwitter: {
		username:   []string{"username", "userName", "screen_name", "legacy.screen_name", "user.screen_name"},
		profileURL: []string{"url", "profileUrl"},
		followers: []string{
			"followersCount", "followers_count", "followers",
			"legacy.followers_count", "user.followers_count", "author.followers_count",
		},
		following: []string{
			"followingCount", "following_count", "friendsCount", "following",
			"legacy.friends_count", "user.friends_count",
		},
		posts: []string{
			"statusesCount", "statuses_count", "tweetsCount", "tweets_count", "tweets",
			"legacy.statuses_count", "user.statuses_count",
		},
		likes: []string{"likesCount", "favourites_count"},
	},
	entity.PlatformFacebook: {
		username:   []string{"username", "pageName"},
		profileURL: []string{"url", "pageUrl"},
		followers: []string{
			"likesCount", "likes_count", "likes",
			"followersCount", "followers_count", "followers",
		},
		posts: []string{"postsCount", "posts_count"},
	},
	entity.PlatformTikTok: {
		username:   []string{"userInfo.user.uniqueId", "user.uniqueId", "uniqueId", "username"},
		profileURL: []string{"url", "userInfo.user.url"},
		followers: []string{
			"userInfo.stats.followerCount", "stats.followerCount", "followerCount",
			"followersCount", "followers_count", "followers", "fans",
		},
		following: []string{
			"userInfo.stats.followingCount", "stats.followingCount", "followingCount",
			"following_count", "following",
		},
		posts: []string{
			"userInfo.stats.videoCount", "stats.videoCount", "videoCount",
			"video_count", "videos",
		},
		likes: []string{
			"userInfo.stats.heartCount", "stats.heartCount", "heartCount",
			"likeCount", "like_count", "likes", "hearts",
		},
	},
	entity.PlatformYouTube: {
		username:   []string{"channelName", "title"},
		profileURL: []string{"url", "channelUrl"},
		followers: []string{
			"subscriberCount", "subscriber_count", "subscribersCount", "subscribers",
		},
		posts: []string{"videoCount", "video_count", "videosCount", "videos"},
		views: []string{"viewCount", "view_count", "viewsCount", "views"},
	},
	entity.PlatformLinkedIn: {
		username:   []string{"publicIdentifier", "username"},
		profileURL: []string{"url", "profileUrl"},
		followers:  []string{"followersCount", "followers_count", "followers", "connectionsCount", "connections"},
		posts:      []string{"postsCount", "posts_count", "posts"},
	},
}
