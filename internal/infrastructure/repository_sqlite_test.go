package infrastructure

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/wikidump-go/internal/domain"
)

func setupTestRepo(t *testing.T) (*SQLiteDumpRepository, func()) {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "repo-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "catalog", "test.db")
	repo, err := NewSQLiteDumpRepository(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		os.RemoveAll(tmpDir)
	}
	return repo, cleanup
}

var enWiktionary = domain.DumpDescriptor{Language: "en", Type: domain.TypeWiktionary, Namespace: 0}

func completedRecord(d domain.DumpDescriptor, path string, source domain.DumpSource, size int64) *domain.DumpRecord {
	record := domain.NewDumpRecord(d, "https://dumps.example.org/20240601/")
	record.MarkCompleted(&domain.PackedDump{
		Descriptor: d,
		Path:       path,
		FileName:   filepath.Base(path),
		Source:     source,
	}, size)
	return record
}

func TestSQLiteDumpRepository_CreateAndFindByID(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	record := completedRecord(enWiktionary, "/dumps/enwiktionary-NS0.json.tar.gz", domain.SourceRemote, 1024)
	require.NoError(t, repo.Create(record))

	found, err := repo.FindByID(record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, found.ID)
	assert.Equal(t, enWiktionary, found.Descriptor())
	assert.Equal(t, domain.StatusCompleted, found.Status)
	assert.Equal(t, int64(1024), found.SizeBytes)
	require.NotNil(t, found.CompletedAt)
}

func TestSQLiteDumpRepository_FindByIDMissing(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	_, err := repo.FindByID("does-not-exist")
	assert.Error(t, err)
}

func TestSQLiteDumpRepository_Update(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	record := domain.NewDumpRecord(enWiktionary, "https://dumps.example.org/20240601/")
	require.NoError(t, repo.Create(record))

	record.MarkFailed(assert.AnError)
	require.NoError(t, repo.Update(record))

	found, err := repo.FindByID(record.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, found.Status)
	assert.Equal(t, assert.AnError.Error(), found.ErrorMessage)
}

func TestSQLiteDumpRepository_FindByPath(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	path := "/dumps/enwiktionary-NS0.json.tar.gz"
	older := completedRecord(enWiktionary, path, domain.SourceRemote, 10)
	older.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Create(older))

	newer := completedRecord(enWiktionary, path, domain.SourcePresent, 10)
	require.NoError(t, repo.Create(newer))

	found, err := repo.FindByPath(path)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, newer.ID, found.ID)

	found, err = repo.FindByPath("/dumps/other.tar.gz")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestSQLiteDumpRepository_FindLatest(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	found, err := repo.FindLatest(enWiktionary)
	require.NoError(t, err)
	assert.Nil(t, found)

	first := domain.NewDumpRecord(enWiktionary, "https://dumps.example.org/20240501/")
	first.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Create(first))

	second := domain.NewDumpRecord(enWiktionary, "https://dumps.example.org/20240601/")
	require.NoError(t, repo.Create(second))

	other := domain.NewDumpRecord(domain.DumpDescriptor{Language: "fr", Type: domain.TypeWiktionary}, "https://dumps.example.org/20240601/")
	require.NoError(t, repo.Create(other))

	found, err = repo.FindLatest(enWiktionary)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, second.ID, found.ID)
}

func TestSQLiteDumpRepository_FindAllFilters(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	require.NoError(t, repo.Create(completedRecord(enWiktionary, "/dumps/a.tar.gz", domain.SourceRemote, 1)))
	failed := domain.NewDumpRecord(enWiktionary, "https://dumps.example.org/20240601/")
	failed.MarkFailed(assert.AnError)
	require.NoError(t, repo.Create(failed))

	all, err := repo.FindAll(nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	completed, err := repo.FindAll(map[string]interface{}{"status": domain.StatusCompleted})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, "/dumps/a.tar.gz", completed[0].FilePath)

	_, err = repo.FindAll(map[string]interface{}{"status; DROP TABLE dump_records": "x"})
	assert.Error(t, err)
}

func TestSQLiteDumpRepository_GetStats(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	require.NoError(t, repo.Create(completedRecord(enWiktionary, "/dumps/a.tar.gz", domain.SourceRemote, 100)))
	require.NoError(t, repo.Create(completedRecord(enWiktionary, "/dumps/b.tar.gz", domain.SourceRemote, 50)))
	// Local resolutions did not transfer anything
	require.NoError(t, repo.Create(completedRecord(enWiktionary, "/dumps/c.tar.gz", domain.SourceLocal, 999)))

	failed := domain.NewDumpRecord(enWiktionary, "")
	failed.MarkFailed(assert.AnError)
	require.NoError(t, repo.Create(failed))

	deleted := completedRecord(enWiktionary, "/dumps/d.tar.gz", domain.SourcePresent, 0)
	deleted.MarkDeleted()
	require.NoError(t, repo.Create(deleted))

	stats, err := repo.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.Total)
	assert.Equal(t, int64(3), stats.Completed)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(1), stats.Deleted)
	assert.Equal(t, int64(0), stats.Pending)
	assert.Equal(t, int64(150), stats.TotalBytes)
}
