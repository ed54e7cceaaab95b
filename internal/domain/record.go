package domain

import (
	"time"

	"github.com/google/uuid"
)

// RecordStatus represents the state of a catalogued dump
type RecordStatus string

const (
	StatusPending     RecordStatus = "pending"
	StatusDownloading RecordStatus = "downloading"
	StatusCompleted   RecordStatus = "completed"
	StatusFailed      RecordStatus = "failed"
	StatusDeleted     RecordStatus = "deleted"
)

// DumpRecord is one catalogued EnsureLocal outcome.
// The catalog is history only: presence on disk is always decided by the filesystem.
type DumpRecord struct {
	ID           string       `json:"id" gorm:"primaryKey"`
	Language     string       `json:"language" gorm:"not null;index:idx_descriptor"`
	DumpType     DumpType     `json:"dump_type" gorm:"not null;index:idx_descriptor"`
	Namespace    int          `json:"namespace" gorm:"not null;index:idx_descriptor"`
	RunURL       string       `json:"run_url"`
	FileName     string       `json:"file_name,omitempty"`
	FilePath     string       `json:"file_path,omitempty" gorm:"index"`
	Source       DumpSource   `json:"source,omitempty"`
	Status       RecordStatus `json:"status" gorm:"not null;index"`
	SizeBytes    int64        `json:"size_bytes"`
	ErrorMessage string       `json:"error_message,omitempty"`
	CreatedAt    time.Time    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time    `json:"updated_at" gorm:"autoUpdateTime"`
	StartedAt    *time.Time   `json:"started_at,omitempty"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
}

// NewDumpRecord creates a pending record for a descriptor
func NewDumpRecord(d DumpDescriptor, runURL string) *DumpRecord {
	return &DumpRecord{
		ID:        uuid.New().String(),
		Language:  d.Language,
		DumpType:  d.Type,
		Namespace: d.Namespace,
		RunURL:    runURL,
		Status:    StatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// Descriptor returns the descriptor the record was created for
func (r *DumpRecord) Descriptor() DumpDescriptor {
	return DumpDescriptor{Language: r.Language, Type: r.DumpType, Namespace: r.Namespace}
}

// MarkDownloading marks the record as transferring fileName
func (r *DumpRecord) MarkDownloading(fileName string) {
	r.Status = StatusDownloading
	r.FileName = fileName
	now := time.Now()
	r.StartedAt = &now
	r.UpdatedAt = now
}

// MarkCompleted marks the record as resolved to a local archive
func (r *DumpRecord) MarkCompleted(packed *PackedDump, size int64) {
	r.Status = StatusCompleted
	r.FileName = packed.FileName
	r.FilePath = packed.Path
	r.Source = packed.Source
	r.SizeBytes = size
	r.ErrorMessage = ""
	now := time.Now()
	r.CompletedAt = &now
	r.UpdatedAt = now
}

// MarkFailed marks the record as failed
func (r *DumpRecord) MarkFailed(err error) {
	r.Status = StatusFailed
	r.ErrorMessage = err.Error()
	r.UpdatedAt = time.Now()
}

// MarkDeleted marks the archive of the record as removed from disk
func (r *DumpRecord) MarkDeleted() {
	r.Status = StatusDeleted
	r.UpdatedAt = time.Now()
}

// IsTerminal checks if the record is in a terminal state
func (r *DumpRecord) IsTerminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed || r.Status == StatusDeleted
}

// ValidateStatus checks if a record status is valid
func ValidateStatus(status RecordStatus) bool {
	switch status {
	case StatusPending, StatusDownloading, StatusCompleted, StatusFailed, StatusDeleted:
		return true
	}
	return false
}
