package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/yourusername/wikidump-go/internal/domain"
	"github.com/yourusername/wikidump-go/internal/infrastructure"
)

var (
	// ErrStop ends EachLine or EachMember early without reporting an error
	ErrStop = errors.New("stop iteration")

	// ErrCatalogDisabled is returned by catalog queries when no repository is configured
	ErrCatalogDisabled = errors.New("dump catalog is disabled")

	// ErrRecordNotFound is returned when no catalog record has the requested ID
	ErrRecordNotFound = errors.New("dump record not found")
)

// Location is where a descriptor's archive stands in the latest run
type Location struct {
	Descriptor domain.DumpDescriptor `json:"descriptor"`
	RunURL     string                `json:"run_url"`
	Outcome    domain.MatchOutcome   `json:"outcome"`
}

// DumpService composes the resolve, match, download and extract steps
type DumpService struct {
	indexURL  string
	localDir  string
	resolver  *RunResolver
	matcher   *DumpMatcher
	manager   *DownloadManager
	extractor *infrastructure.TarExtractor
	repo      domain.DumpRepository // nil when the catalog is disabled
	logger    *zap.Logger
}

// NewDumpService creates a new dump service
func NewDumpService(
	config *domain.Config,
	resolver *RunResolver,
	matcher *DumpMatcher,
	manager *DownloadManager,
	extractor *infrastructure.TarExtractor,
	repo domain.DumpRepository,
	logger *zap.Logger,
) *DumpService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DumpService{
		indexURL:  config.Dump.IndexURL,
		localDir:  config.Download.Dir,
		resolver:  resolver,
		matcher:   matcher,
		manager:   manager,
		extractor: extractor,
		repo:      repo,
		logger:    logger,
	}
}

// LocalDir returns the directory archives are downloaded into
func (s *DumpService) LocalDir() string {
	return s.localDir
}

// LatestRun returns the URL of the most recent run
func (s *DumpService) LatestRun(ctx context.Context) (string, error) {
	return s.resolver.ResolveLatestRun(ctx, s.indexURL)
}

// Locate resolves the latest run and matches d against it without downloading
func (s *DumpService) Locate(ctx context.Context, d domain.DumpDescriptor) (*Location, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid descriptor: %w", err)
	}

	runURL, err := s.LatestRun(ctx)
	if err != nil {
		return nil, err
	}

	outcome, err := s.matcher.MatchDump(ctx, runURL, d)
	if err != nil {
		return nil, err
	}

	return &Location{Descriptor: d, RunURL: runURL, Outcome: outcome}, nil
}

// Fetch makes the archive of d available in the local directory
func (s *DumpService) Fetch(ctx context.Context, d domain.DumpDescriptor) (*domain.PackedDump, error) {
	loc, err := s.Locate(ctx, d)
	if err != nil {
		return nil, err
	}
	return s.manager.EnsureLocal(ctx, loc.RunURL, loc.Outcome, d, s.localDir)
}

// Open opens a packed dump for member iteration. The caller must Close the iterator.
func (s *DumpService) Open(packed *domain.PackedDump) (*infrastructure.MemberIterator, error) {
	return s.extractor.Open(packed)
}

// EachMember calls fn for every regular member of the archive.
// Returning ErrStop from fn ends the walk early.
func (s *DumpService) EachMember(packed *domain.PackedDump, fn func(*infrastructure.Member) error) error {
	it, err := s.Open(packed)
	if err != nil {
		return err
	}
	defer it.Close()

	for it.Next() {
		if err := fn(it.Member()); err != nil {
			if errors.Is(err, ErrStop) {
				s.logger.Info("Archive read stopped early",
					zap.String("archive", packed.Path),
					zap.Int("members", it.Count()))
				return nil
			}
			return err
		}
	}
	if err := it.Err(); err != nil {
		return err
	}

	s.logger.Info("Archive extracted",
		zap.String("archive", packed.Path),
		zap.Int("members", it.Count()))
	return nil
}

// EachLine calls fn for every line of every member, in archive order.
// The extractor must be in lines mode. Returning ErrStop from fn ends the walk early.
func (s *DumpService) EachLine(packed *domain.PackedDump, fn func(member, line string) error) error {
	if s.extractor.Mode() != domain.ModeLines {
		return fmt.Errorf("line iteration requires %s mode, extractor is in %s mode", domain.ModeLines, s.extractor.Mode())
	}

	return s.EachMember(packed, func(m *infrastructure.Member) error {
		for m.Lines.Scan() {
			if err := fn(m.Name, m.Lines.Text()); err != nil {
				return err
			}
		}
		return m.Lines.Err()
	})
}

// Delete removes a packed dump from disk and marks its catalog records deleted
func (s *DumpService) Delete(packed *domain.PackedDump) error {
	if err := os.Remove(packed.Path); err != nil {
		return &domain.DeletionError{Path: packed.Path, Err: err}
	}

	s.logger.Info("Deleted dump", zap.String("file", packed.Path))

	if s.repo == nil {
		return nil
	}
	record, err := s.repo.FindByPath(packed.Path)
	if err != nil {
		s.logger.Error("Failed to look up dump record", zap.String("file", packed.Path), zap.Error(err))
		return nil
	}
	if record != nil {
		record.MarkDeleted()
		if err := s.repo.Update(record); err != nil {
			s.logger.Error("Failed to update dump record", zap.String("id", record.ID), zap.Error(err))
		}
	}
	return nil
}

// DeleteRecord deletes the archive a catalog record points at
func (s *DumpService) DeleteRecord(id string) (*domain.DumpRecord, error) {
	record, err := s.Record(id)
	if err != nil {
		return nil, err
	}
	if record.FilePath == "" {
		return nil, fmt.Errorf("dump record %s has no local file", id)
	}

	packed := &domain.PackedDump{
		Descriptor: record.Descriptor(),
		Path:       record.FilePath,
		FileName:   record.FileName,
		Source:     record.Source,
	}
	if err := s.Delete(packed); err != nil {
		return nil, err
	}

	// Delete marks the newest record for the path; this one may be older
	if record.Status != domain.StatusDeleted {
		record.MarkDeleted()
		if err := s.repo.Update(record); err != nil {
			return nil, fmt.Errorf("failed to update dump record: %w", err)
		}
	}
	return record, nil
}

// History lists catalog records, newest first
func (s *DumpService) History(filters map[string]interface{}) ([]*domain.DumpRecord, error) {
	if s.repo == nil {
		return nil, ErrCatalogDisabled
	}
	return s.repo.FindAll(filters)
}

// Record returns one catalog record
func (s *DumpService) Record(id string) (*domain.DumpRecord, error) {
	if s.repo == nil {
		return nil, ErrCatalogDisabled
	}
	record, err := s.repo.FindByID(id)
	if err != nil || record == nil {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	return record, nil
}

// LatestRecord returns the newest catalog record for d, or nil if there is none
func (s *DumpService) LatestRecord(d domain.DumpDescriptor) (*domain.DumpRecord, error) {
	if s.repo == nil {
		return nil, ErrCatalogDisabled
	}
	return s.repo.FindLatest(d)
}

// Stats returns catalog statistics
func (s *DumpService) Stats() (*domain.DumpStats, error) {
	if s.repo == nil {
		return nil, ErrCatalogDisabled
	}
	return s.repo.GetStats()
}
