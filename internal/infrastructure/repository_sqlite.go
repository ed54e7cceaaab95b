package infrastructure

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/wikidump-go/internal/domain"
)

// filterColumns whitelists the columns FindAll accepts as filters
var filterColumns = map[string]bool{
	"status":    true,
	"language":  true,
	"dump_type": true,
	"namespace": true,
	"source":    true,
	"file_name": true,
}

// SQLiteDumpRepository implements DumpRepository using SQLite
type SQLiteDumpRepository struct {
	db *gorm.DB
}

// NewSQLiteDumpRepository creates a new SQLite repository
func NewSQLiteDumpRepository(dbPath string) (*SQLiteDumpRepository, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&domain.DumpRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteDumpRepository{db: db}, nil
}

// Create creates a new record
func (r *SQLiteDumpRepository) Create(record *domain.DumpRecord) error {
	return r.db.Create(record).Error
}

// Update updates an existing record
func (r *SQLiteDumpRepository) Update(record *domain.DumpRecord) error {
	return r.db.Save(record).Error
}

// FindByID finds a record by ID
func (r *SQLiteDumpRepository) FindByID(id string) (*domain.DumpRecord, error) {
	var record domain.DumpRecord
	if err := r.db.First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByPath finds the most recent record resolved to a local path
// Returns nil if not found
func (r *SQLiteDumpRepository) FindByPath(path string) (*domain.DumpRecord, error) {
	var record domain.DumpRecord
	err := r.db.Where("file_path = ?", path).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// FindLatest finds the most recent record for a descriptor
// Returns nil if not found
func (r *SQLiteDumpRepository) FindLatest(d domain.DumpDescriptor) (*domain.DumpRecord, error) {
	var record domain.DumpRecord
	err := r.db.Where("language = ? AND dump_type = ? AND namespace = ?", d.Language, d.Type, d.Namespace).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// FindAll finds all records with optional filters, newest first
func (r *SQLiteDumpRepository) FindAll(filters map[string]interface{}) ([]*domain.DumpRecord, error) {
	var records []*domain.DumpRecord
	query := r.db

	for key, value := range filters {
		if !filterColumns[key] {
			return nil, fmt.Errorf("unsupported filter: %s", key)
		}
		query = query.Where(fmt.Sprintf("%s = ?", key), value)
	}

	err := query.Order("created_at DESC").Find(&records).Error
	return records, err
}

// GetStats returns catalog statistics
func (r *SQLiteDumpRepository) GetStats() (*domain.DumpStats, error) {
	stats := &domain.DumpStats{}

	if err := r.db.Model(&domain.DumpRecord{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	statusCounts := []struct {
		Status domain.RecordStatus
		Count  int64
	}{}
	if err := r.db.Model(&domain.DumpRecord{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, err
	}

	for _, sc := range statusCounts {
		switch sc.Status {
		case domain.StatusPending:
			stats.Pending = sc.Count
		case domain.StatusDownloading:
			stats.Downloading = sc.Count
		case domain.StatusCompleted:
			stats.Completed = sc.Count
		case domain.StatusFailed:
			stats.Failed = sc.Count
		case domain.StatusDeleted:
			stats.Deleted = sc.Count
		}
	}

	var totalBytes struct{ Total int64 }
	if err := r.db.Model(&domain.DumpRecord{}).
		Select("COALESCE(SUM(size_bytes), 0) as total").
		Where("status = ? AND source = ?", domain.StatusCompleted, domain.SourceRemote).
		Scan(&totalBytes).Error; err != nil {
		return nil, err
	}
	stats.TotalBytes = totalBytes.Total

	return stats, nil
}

// Close closes the database connection
func (r *SQLiteDumpRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
