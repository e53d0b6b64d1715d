package entity

import (
	"regexp"
	"strings"
)

// platformDomains maps each platform to the host substrings that identify it.
// Detection walks SupportedPlatforms in order; first match wins.
var platformDomains = map[Platform][]string{
	PlatformInstagram: {"instagram.com"},
	PlatformTwitter:   {"twitter.com", "x.com"},
	PlatformFacebook:  {"facebook.com", "fb.com"},
	PlatformTikTok:    {"tiktok.com"},
	PlatformYouTube:   {"youtube.com", "youtu.be"},
	PlatformLinkedIn:  {"linkedin.com"},
}

// DetectPlatform maps a profile URL to a platform by substring matching on
// the lower-cased URL. Returns ok=false for unrecognized domains.
func DetectPlatform(url string) (Platform, bool) {
	url = strings.ToLower(url)
	for _, p := range SupportedPlatforms {
		for _, domain := range platformDomains[p] {
			if strings.Contains(url, domain) {
				return p, true
			}
		}
	}
	return "", false
}

var usernamePatterns = map[Platform][]*regexp.Regexp{
	PlatformInstagram: {regexp.MustCompile(`instagram\.com/([^/?#]+)`)},
	PlatformTwitter:   {regexp.MustCompile(`(?:twitter\.com|x\.com)/([^/?#]+)`)},
	PlatformFacebook:  {regexp.MustCompile(`facebook\.com/([^/?#]+)`)},
	PlatformTikTok:    {regexp.MustCompile(`tiktok\.com/@([^/?#]+)`)},
	PlatformYouTube: {
		// channel URLs come in /user/name, /c/name and /@name forms
		regexp.MustCompile(`youtube\.com/(?:user/|c/|@)([^/?#]+)`),
		regexp.MustCompile(`youtube\.com/([^/?#]+)`),
	},
	PlatformLinkedIn: {regexp.MustCompile(`linkedin\.com/in/([^/?#]+)`)},
}

// ExtractUsername pulls the handle out of a profile URL using the platform's
// path patterns. Returns ok=false when no pattern matches; callers fall back
// to using the raw URL as the identifier.
func ExtractUsername(url string, p Platform) (string, bool) {
	for _, pattern := range usernamePatterns[p] {
		if m := pattern.FindStringSubmatch(url); m != nil {
			return strings.TrimPrefix(m[1], "@"), true
		}
	}
	return "", false
}

// ProfileURL builds a canonical profile URL for a platform and username,
// used when the caller supplied only a handle
func ProfileURL(p Platform, username string) string {
	switch p {
	case PlatformInstagram:
		return "https://www.instagram.com/" + username + "/"
	case PlatformTwitter:
		return "https://twitter.com/" + username
	case PlatformFacebook:
		return "https://www.facebook.com/" + username
	case PlatformTikTok:
		return "https://www.tiktok.com/@" + username
	case PlatformYouTube:
		return "https://www.youtube.com/@" + username
	case PlatformLinkedIn:
		return "https://www.linkedin.com/in/" + username
	default:
		return ""
	}
}
