package domain

// DumpRepository defines the interface for the dump catalog
type DumpRepository interface {
	// Create creates a new record
	Create(record *DumpRecord) error

	// Update updates an existing record
	Update(record *DumpRecord) error

	// FindByID finds a record by ID
	FindByID(id string) (*DumpRecord, error)

	// FindByPath finds the most recent record resolved to a local path
	// Returns nil if not found
	FindByPath(path string) (*DumpRecord, error)

	// FindLatest finds the most recent record for a descriptor
	// Returns nil if not found
	FindLatest(d DumpDescriptor) (*DumpRecord, error)

	// FindAll finds all records with optional filters
	FindAll(filters map[string]interface{}) ([]*DumpRecord, error)

	// GetStats returns catalog statistics
	GetStats() (*DumpStats, error)
}

// DumpStats represents catalog statistics
type DumpStats struct {
	Total       int64 `json:"total"`
	Pending     int64 `json:"pending"`
	Downloading int64 `json:"downloading"`
	Completed   int64 `json:"completed"`
	Failed      int64 `json:"failed"`
	Deleted     int64 `json:"deleted"`
	TotalBytes  int64 `json:"total_bytes"`
}
