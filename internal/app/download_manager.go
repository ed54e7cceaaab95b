package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/yourusername/wikidump-go/internal/domain"
	"github.com/yourusername/wikidump-go/internal/infrastructure"
	"github.com/yourusername/wikidump-go/pkg/logger"
)

// DownloadManager makes a matched dump available in a local directory
type DownloadManager struct {
	transferer domain.Transferer
	repo       domain.DumpRepository // nil disables the catalog
	notifier   *infrastructure.NotificationService
	events     *logger.MultiLogger
	policy     domain.MatchPolicy
	logger     *zap.Logger
	sem        chan struct{}
}

// NewDownloadManager creates a new download manager
func NewDownloadManager(
	transferer domain.Transferer,
	repo domain.DumpRepository,
	notifier *infrastructure.NotificationService,
	events *logger.MultiLogger,
	policy domain.MatchPolicy,
	logger *zap.Logger,
) *DownloadManager {
	if policy == "" {
		policy = domain.MatchLoose
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DownloadManager{
		transferer: transferer,
		repo:       repo,
		notifier:   notifier,
		events:     events,
		policy:     policy,
		logger:     logger,
		// The presence check and the write are not atomic, so calls are serialized
		sem: make(chan struct{}, 1),
	}
}

// EnsureLocal acts on a match outcome:
// a unique match is downloaded unless already present, no match falls back to
// an archive already in localDir, and an ambiguous match fails.
func (dm *DownloadManager) EnsureLocal(
	ctx context.Context,
	runURL string,
	outcome domain.MatchOutcome,
	d domain.DumpDescriptor,
	localDir string,
) (*domain.PackedDump, error) {
	select {
	case dm.sem <- struct{}{}:
		defer func() { <-dm.sem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid descriptor: %w", err)
	}
	if localDir == "" {
		return nil, fmt.Errorf("local directory is required")
	}
	if err := os.MkdirAll(localDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create local directory: %w", err)
	}

	record := dm.startRecord(d, runURL)

	var packed *domain.PackedDump
	var size int64
	var err error
	switch outcome.Kind {
	case domain.MatchUnique:
		packed, size, err = dm.ensureRemote(ctx, runURL, outcome.Name(), d, localDir, record)
	case domain.MatchNone:
		packed, size, err = dm.findLocal(runURL, d, localDir)
	case domain.MatchAmbiguous:
		err = outcome.Err(runURL)
	default:
		err = fmt.Errorf("unknown match outcome: %s", outcome.Kind)
	}

	if err != nil {
		dm.fail(record, d, err)
		return nil, err
	}

	dm.complete(record, packed, size)
	return packed, nil
}

// ensureRemote returns the archive under localDir, transferring it only when absent
func (dm *DownloadManager) ensureRemote(
	ctx context.Context,
	runURL, name string,
	d domain.DumpDescriptor,
	localDir string,
	record *domain.DumpRecord,
) (*domain.PackedDump, int64, error) {
	url := runURL + name
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return nil, 0, &domain.DownloadError{URL: url, Path: localDir, Err: fmt.Errorf("unsafe archive name %q", name)}
	}

	dest := filepath.Join(localDir, name)
	packed := &domain.PackedDump{Descriptor: d, Path: dest, FileName: name}

	if info, err := os.Stat(dest); err == nil && info.Mode().IsRegular() {
		dm.logger.Info("Dump already present, skipping download",
			zap.String("file", dest),
			zap.String("size", humanize.IBytes(uint64(info.Size()))))
		packed.Source = domain.SourcePresent
		return packed, info.Size(), nil
	}

	dm.logger.Info("Downloading dump",
		zap.String("url", url),
		zap.String("dest", dest))

	if record != nil {
		record.MarkDownloading(name)
		dm.saveRecord(record)
	}

	written, err := dm.transferer.Transfer(ctx, url, dest)
	if err != nil {
		return nil, 0, err
	}

	dm.logger.Info("Download completed",
		zap.String("file", dest),
		zap.String("size", humanize.IBytes(uint64(written))))

	packed.Source = domain.SourceRemote
	return packed, written, nil
}

// findLocal scans localDir in lexical order for the first archive naming d
func (dm *DownloadManager) findLocal(runURL string, d domain.DumpDescriptor, localDir string) (*domain.PackedDump, int64, error) {
	dm.logger.Warn("No dump listed remotely, looking in local directory",
		zap.String("run", runURL),
		zap.Stringer("descriptor", d),
		zap.String("dir", localDir))

	entries, err := os.ReadDir(localDir)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read local directory: %w", err)
	}

	for _, entry := range entries {
		if !d.MatchesLocalFile(entry.Name(), dm.policy) {
			continue
		}
		path := filepath.Join(localDir, entry.Name())
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		dm.logger.Info("Using local dump", zap.String("file", path))
		return &domain.PackedDump{
			Descriptor: d,
			Path:       path,
			FileName:   entry.Name(),
			Source:     domain.SourceLocal,
		}, info.Size(), nil
	}

	return nil, 0, &domain.DumpNotFoundError{Descriptor: d, RunURL: runURL, LocalDir: localDir}
}

func (dm *DownloadManager) startRecord(d domain.DumpDescriptor, runURL string) *domain.DumpRecord {
	if dm.repo == nil {
		return nil
	}
	record := domain.NewDumpRecord(d, runURL)
	if err := dm.repo.Create(record); err != nil {
		dm.logger.Error("Failed to create dump record", zap.Error(err))
		return nil
	}
	return record
}

func (dm *DownloadManager) saveRecord(record *domain.DumpRecord) {
	if err := dm.repo.Update(record); err != nil {
		dm.logger.Error("Failed to update dump record",
			zap.String("id", record.ID),
			zap.Error(err))
	}
}

func (dm *DownloadManager) complete(record *domain.DumpRecord, packed *domain.PackedDump, size int64) {
	if record != nil {
		record.MarkCompleted(packed, size)
		dm.saveRecord(record)
	}

	dm.events.LogDumpEvent("dump_ready",
		zap.Stringer("descriptor", packed.Descriptor),
		zap.String("file", packed.Path),
		zap.String("source", string(packed.Source)),
		zap.Int64("size_bytes", size))

	if packed.Source == domain.SourceRemote {
		dm.notifier.NotifyDumpReady(packed, size)
	}
}

func (dm *DownloadManager) fail(record *domain.DumpRecord, d domain.DumpDescriptor, err error) {
	if record != nil {
		record.MarkFailed(err)
		dm.saveRecord(record)
	}

	dm.logger.Error("Dump not available",
		zap.Stringer("descriptor", d),
		zap.Error(err))
	dm.events.LogAppError("dump_failed",
		zap.Stringer("descriptor", d),
		zap.Error(err))

	var dlErr *domain.DownloadError
	if errors.As(err, &dlErr) {
		dm.notifier.NotifyDumpFailed(d, err)
	}
}
