//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/wikidump-go/internal/app"
	"github.com/yourusername/wikidump-go/internal/domain"
	"github.com/yourusername/wikidump-go/internal/infrastructure"
)

// These tests talk to the live dump index. Run with: go test -tags integration ./test/integration/

func newLiveService(t *testing.T) (*app.DumpService, *domain.Config) {
	tmpDir, err := os.MkdirTemp("", "wikidump-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	config := domain.DefaultConfig()
	if url := os.Getenv("WIKIDUMP_DUMP_INDEX_URL"); url != "" {
		config.Dump.IndexURL = url
	}
	config.Download.Dir = filepath.Join(tmpDir, "dumps")

	log := zap.NewNop()
	fetcher := infrastructure.NewHTTPListingFetcher(&config.HTTP, log)
	policy := config.Dump.Policy()
	svc := app.NewDumpService(
		config,
		app.NewRunResolver(fetcher, log),
		app.NewDumpMatcher(fetcher, policy, log),
		app.NewDownloadManager(infrastructure.NewHTTPTransferer(&config.HTTP, &config.Download, log), nil, nil, nil, policy, log),
		infrastructure.NewTarExtractor(&config.Extract, log),
		nil,
		log,
	)
	return svc, config
}

func TestLiveIndex_LatestRun(t *testing.T) {
	svc, config := newLiveService(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	runURL, err := svc.LatestRun(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(runURL, config.Dump.IndexURL))
	assert.True(t, strings.HasSuffix(runURL, "/"))
}

func TestLiveIndex_Locate(t *testing.T) {
	svc, _ := newLiveService(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	d := domain.DumpDescriptor{Language: "en", Type: domain.TypeWiktionary, Namespace: 0}
	loc, err := svc.Locate(ctx, d)
	require.NoError(t, err)
	require.Equal(t, domain.MatchUnique, loc.Outcome.Kind, "names: %v", loc.Outcome.Names)
	assert.True(t, strings.HasPrefix(loc.Outcome.Name(), "enwiktionary-NS0-"))
	assert.True(t, strings.HasSuffix(loc.Outcome.Name(), ".tar.gz"))
}
