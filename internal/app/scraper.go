package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vadim/social-pulse/internal/domain/metrics/entity"
)

// disabledScraper stands in for the vendor runner when no API token is
// configured. It fails every job immediately so the service's failure
// policy takes over.
type disabledScraper struct{}

func (disabledScraper) Scrape(_ context.Context, platform entity.Platform, _, _ string) (json.RawMessage, error) {
	return nil, fmt.Errorf("%w: vendor token not configured (platform %s)", entity.ErrJobStart, platform)
}
