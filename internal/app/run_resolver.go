package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/yourusername/wikidump-go/internal/domain"
)

// RunResolver finds the most recent dump run on the index page
type RunResolver struct {
	fetcher domain.ListingFetcher
	logger  *zap.Logger
}

// NewRunResolver creates a new run resolver
func NewRunResolver(fetcher domain.ListingFetcher, logger *zap.Logger) *RunResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunResolver{fetcher: fetcher, logger: logger}
}

// ResolveLatestRun returns baseURL joined with the last link of its listing.
// The server lists runs oldest first, so no sorting is applied.
func (r *RunResolver) ResolveLatestRun(ctx context.Context, baseURL string) (string, error) {
	links, err := r.fetcher.FetchLinks(ctx, baseURL)
	if err != nil {
		return "", err
	}
	if len(links) == 0 {
		return "", &domain.EmptyListingError{URL: baseURL}
	}

	runURL := baseURL + links[len(links)-1]
	r.logger.Info("Resolved latest run",
		zap.String("index", baseURL),
		zap.String("run", runURL),
		zap.Int("runs_listed", len(links)))

	return runURL, nil
}
