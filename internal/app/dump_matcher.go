package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/yourusername/wikidump-go/internal/domain"
)

// DumpMatcher selects the archive of a descriptor from a run listing
type DumpMatcher struct {
	fetcher domain.ListingFetcher
	policy  domain.MatchPolicy
	logger  *zap.Logger
}

// NewDumpMatcher creates a matcher using the given filename policy
func NewDumpMatcher(fetcher domain.ListingFetcher, policy domain.MatchPolicy, logger *zap.Logger) *DumpMatcher {
	if policy == "" {
		policy = domain.MatchLoose
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DumpMatcher{fetcher: fetcher, policy: policy, logger: logger}
}

// MatchDump fetches the run listing and classifies the entries naming d.
// An ambiguous outcome is a value, not an error; see MatchOutcome.Err.
func (m *DumpMatcher) MatchDump(ctx context.Context, runURL string, d domain.DumpDescriptor) (domain.MatchOutcome, error) {
	links, err := m.fetcher.FetchLinks(ctx, runURL)
	if err != nil {
		return domain.MatchOutcome{}, err
	}

	outcome := domain.ClassifyMatches(links, d, m.policy)
	m.logger.Info("Matched run listing",
		zap.String("run", runURL),
		zap.Stringer("descriptor", d),
		zap.String("policy", string(m.policy)),
		zap.Stringer("outcome", outcome.Kind),
		zap.Strings("names", outcome.Names))

	return outcome, nil
}
