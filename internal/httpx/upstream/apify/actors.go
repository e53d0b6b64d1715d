package apify

import (
	"github.com/vadim/social-pulse/internal/domain/metrics/entity"
)

// proxyConfig asks the platform to route actor traffic through the Apify
// proxy pool, which the profile scrapers require to avoid blocks
type proxyConfig struct {
	UseApifyProxy bool `json:"useApifyProxy"`
}

type startURL struct {
	URL string `json:"url"`
}

// ActorSpec binds a platform to its actor and the shape of input that actor
// expects. Each scraper in the Apify store uses its own input vocabulary, so
// the builders are per-platform rather than generic.
type ActorSpec struct {
	ActorID    string
	BuildInput func(username, profileURL string) any
}

// ActorSpecs wires configured actor IDs to their input builders. IDs come
// from configuration so actors can be swapped without a rebuild.
func ActorSpecs(ids map[entity.Platform]string) map[entity.Platform]ActorSpec {
	specs := map[entity.Platform]ActorSpec{
		entity.PlatformInstagram: {
			BuildInput: func(username, _ string) any {
				return map[string]any{
					"usernames":    []string{username},
					"resultsLimit": 1,
					"proxy":        proxyConfig{UseApifyProxy: true},
				}
			},
		},
		entity.PlatformTwitter: {
			BuildInput: func(username, _ string) any {
				return map[string]any{
					"handles":       []string{username},
					"tweetsDesired": 10,
					"proxyConfig":   proxyConfig{UseApifyProxy: true},
				}
			},
		},
		entity.PlatformFacebook: {
			BuildInput: func(_, profileURL string) any {
				return map[string]any{
					"startUrls":   []startURL{{URL: profileURL}},
					"resultsType": "details",
					"proxy":       proxyConfig{UseApifyProxy: true},
				}
			},
		},
		entity.PlatformTikTok: {
			BuildInput: func(username, _ string) any {
				return map[string]any{
					"profiles":       []string{username},
					"resultsPerPage": 1,
					"proxy":          proxyConfig{UseApifyProxy: true},
				}
			},
		},
		entity.PlatformYouTube: {
			BuildInput: func(_, profileURL string) any {
				return map[string]any{
					"startUrls":        []startURL{{URL: profileURL}},
					"maxResults":       1,
					"proxy":            proxyConfig{UseApifyProxy: true},
					"sortVideosBy":     "NEWEST",
					"maxResultsShorts": 0,
				}
			},
		},
		entity.PlatformLinkedIn: {
			BuildInput: func(_, profileURL string) any {
				return map[string]any{
					"startUrls": []startURL{{URL: profileURL}},
					"proxy":     proxyConfig{UseApifyProxy: true},
				}
			},
		},
	}

	for platform, spec := range specs {
		spec.ActorID = ids[platform]
		specs[platform] = spec
	}

	return specs
}
