package apify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeGROOVE-dev/retry"

	"github.com/vadim/social-pulse/internal/domain/metrics/entity"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultMaxPolls     = 15
	defaultRunBudget    = 300 * time.Second
)

// Runner drives a scrape run end to end: start the actor, poll until the
// run reaches a terminal state, fetch the dataset.
type Runner struct {
	client       *Client
	specs        map[entity.Platform]ActorSpec
	logger       *slog.Logger
	pollInterval time.Duration
	maxPolls     int
	runBudget    time.Duration
}

// RunnerOption is a function that configures the Runner
type RunnerOption func(*Runner)

// WithPollInterval sets the base delay between status polls. The actual
// delay grows linearly with the attempt number.
func WithPollInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.pollInterval = d
	}
}

// WithMaxPolls caps the number of status polls per run
func WithMaxPolls(n int) RunnerOption {
	return func(r *Runner) {
		r.maxPolls = n
	}
}

// WithRunBudget caps the total wall-clock time of one run, polling included
func WithRunBudget(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.runBudget = d
	}
}

// NewRunner creates a Runner over the given client and actor bindings
func NewRunner(client *Client, specs map[entity.Platform]ActorSpec, logger *slog.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		client:       client,
		specs:        specs,
		logger:       logger,
		pollInterval: defaultPollInterval,
		maxPolls:     defaultMaxPolls,
		runBudget:    defaultRunBudget,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Scrape runs the platform's actor for a profile and returns the raw dataset.
// The run is bounded both by the poll attempt ceiling and by the wall-clock
// budget, whichever trips first.
func (r *Runner) Scrape(ctx context.Context, platform entity.Platform, username, profileURL string) (json.RawMessage, error) {
	spec, ok := r.specs[platform]
	if !ok || spec.ActorID == "" {
		return nil, fmt.Errorf("%w: no actor configured for %s", entity.ErrJobStart, platform)
	}

	ctx, cancel := context.WithTimeout(ctx, r.runBudget)
	defer cancel()

	input := spec.BuildInput(username, profileURL)

	run, err := retry.DoWithData(
		func() (*Run, error) {
			return r.client.StartRun(ctx, spec.ActorID, input)
		},
		retry.Context(ctx),
		retry.Attempts(2), // single retry
		retry.Delay(time.Second),
		retry.MaxJitter(500*time.Millisecond),
		retry.RetryIf(isTransient),
		retry.OnRetry(func(n uint, err error) {
			r.logger.Warn("retrying actor start",
				slog.Uint64("attempt", uint64(n+1)),
				slog.String("platform", string(platform)),
				slog.String("error", err.Error()),
			)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrJobStart, err)
	}

	r.logger.Info("actor run started",
		slog.String("run_id", run.ID),
		slog.String("platform", string(platform)),
		slog.String("username", username),
	)

	final, err := r.waitForRun(ctx, run.ID)
	if err != nil {
		return nil, err
	}

	items, err := r.client.DatasetItems(ctx, final.ID)
	if err != nil {
		return nil, fmt.Errorf("fetching dataset: %w", err)
	}

	return items, nil
}

// waitForRun polls the run status with linearly growing delays until the
// run terminates or the budget runs out
func (r *Runner) waitForRun(ctx context.Context, runID string) (*Run, error) {
	for attempt := 1; attempt <= r.maxPolls; attempt++ {
		delay := time.Duration(attempt) * r.pollInterval

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", entity.ErrJobTimeout, ctx.Err())
		case <-time.After(delay):
		}

		run, err := r.client.GetRun(ctx, runID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %v", entity.ErrJobTimeout, ctx.Err())
			}
			r.logger.Warn("run status poll failed",
				slog.String("run_id", runID),
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()),
			)
			continue
		}

		if !run.Status.Terminal() {
			continue
		}

		if run.Status != RunStatusSucceeded {
			return nil, fmt.Errorf("%w: run %s ended %s", entity.ErrJobFailed, runID, run.Status)
		}
		return run, nil
	}

	return nil, fmt.Errorf("%w: run %s still not finished after %d polls", entity.ErrJobTimeout, runID, r.maxPolls)
}

// isTransient reports whether a start failure is worth one more try.
// Auth failures and context expiry are not.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, entity.ErrVendorAuth) {
		return false
	}
	return true
}
