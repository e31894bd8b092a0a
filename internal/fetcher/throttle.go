package fetcher

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"
)

// ThrottledFetcher spaces out requests to the same site.
type ThrottledFetcher struct {
	next    Fetcher
	limiter *rate.Limiter
	logger  *slog.Logger
}

var _ Fetcher = (*ThrottledFetcher)(nil)

// NewThrottledFetcher limits next to requestsPerSecond with a burst of one.
// A non-positive rate disables throttling.
func NewThrottledFetcher(next Fetcher, requestsPerSecond float64, logger *slog.Logger) *ThrottledFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &ThrottledFetcher{
		next:    next,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

func (f *ThrottledFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("limiter.Wait > %w", err)
	}
	f.logger.Debug("fetching page", "url", url)
	return f.next.Fetch(ctx, url)
}
