package domain

import (
	"fmt"
	"strings"
)

// FetchError is a failed listing fetch
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// EmptyListingError means an index page had no links at all
type EmptyListingError struct {
	URL string
}

func (e *EmptyListingError) Error() string {
	return fmt.Sprintf("listing %s has no entries", e.URL)
}

// AmbiguousDumpError means more than one archive matched a descriptor
type AmbiguousDumpError struct {
	RunURL string
	Names  []string
}

func (e *AmbiguousDumpError) Error() string {
	return fmt.Sprintf("multiple dumps match in %s: %s", e.RunURL, strings.Join(e.Names, ", "))
}

// DumpNotFoundError means no archive was found remotely or in the local directory
type DumpNotFoundError struct {
	Descriptor DumpDescriptor
	RunURL     string
	LocalDir   string
}

func (e *DumpNotFoundError) Error() string {
	return fmt.Sprintf("no dump for %s in %s or in %s", e.Descriptor, e.RunURL, e.LocalDir)
}

// DownloadError is a failed archive transfer
type DownloadError struct {
	URL        string
	Path       string
	StatusCode int
	Err        error
}

func (e *DownloadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("download %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("download %s to %s: %v", e.URL, e.Path, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// ExtractionError is a corrupt archive or an undecodable member
type ExtractionError struct {
	Archive string
	Member  string
	Line    int // 1-based, 0 when not line specific
	Err     error
}

func (e *ExtractionError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("extract %s: member %q line %d: %v", e.Archive, e.Member, e.Line, e.Err)
	}
	if e.Member != "" {
		return fmt.Sprintf("extract %s: member %q: %v", e.Archive, e.Member, e.Err)
	}
	return fmt.Sprintf("extract %s: %v", e.Archive, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// DeletionError is a failed archive removal
type DeletionError struct {
	Path string
	Err  error
}

func (e *DeletionError) Error() string {
	return fmt.Sprintf("delete %s: %v", e.Path, e.Err)
}

func (e *DeletionError) Unwrap() error { return e.Err }
