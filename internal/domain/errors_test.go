package domain

import (
	"errors"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Messages(t *testing.T) {
	d := DumpDescriptor{Language: "en", Type: TypeWiktionary}

	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{"fetch status", &FetchError{URL: "https://x/runs/", StatusCode: 503}, []string{"https://x/runs/", "503"}},
		{"fetch transport", &FetchError{URL: "https://x/runs/", Err: io.ErrUnexpectedEOF}, []string{"https://x/runs/", "unexpected EOF"}},
		{"empty listing", &EmptyListingError{URL: "https://x/runs/"}, []string{"https://x/runs/", "no entries"}},
		{"ambiguous", &AmbiguousDumpError{RunURL: "https://x/run/", Names: []string{"a", "b"}}, []string{"https://x/run/", "a, b"}},
		{"not found", &DumpNotFoundError{Descriptor: d, RunURL: "https://x/run/", LocalDir: "/data"}, []string{"enwiktionary/NS0", "/data"}},
		{"download status", &DownloadError{URL: "https://x/run/a", StatusCode: 404}, []string{"https://x/run/a", "404"}},
		{"download io", &DownloadError{URL: "https://x/run/a", Path: "/data/a", Err: io.ErrShortWrite}, []string{"/data/a", "short write"}},
		{"extraction line", &ExtractionError{Archive: "a.tar", Member: "m.ndjson", Line: 3, Err: errors.New("invalid UTF-8")}, []string{"a.tar", "m.ndjson", "line 3"}},
		{"extraction member", &ExtractionError{Archive: "a.tar", Member: "m.ndjson", Err: io.ErrUnexpectedEOF}, []string{"m.ndjson"}},
		{"extraction archive", &ExtractionError{Archive: "a.tar", Err: io.ErrUnexpectedEOF}, []string{"a.tar"}},
		{"deletion", &DeletionError{Path: "/data/a", Err: os.ErrNotExist}, []string{"/data/a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, s := range tt.contains {
				assert.Contains(t, tt.err.Error(), s)
			}
		})
	}
}

func TestErrors_Unwrap(t *testing.T) {
	wrapped := fmt.Errorf("failed to fetch dump: %w", &DownloadError{URL: "u", Path: "p", Err: io.ErrUnexpectedEOF})

	var dlErr *DownloadError
	assert.True(t, errors.As(wrapped, &dlErr))
	assert.True(t, errors.Is(wrapped, io.ErrUnexpectedEOF))

	delErr := &DeletionError{Path: "p", Err: os.ErrNotExist}
	assert.True(t, errors.Is(delErr, os.ErrNotExist))

	extErr := &ExtractionError{Archive: "a", Err: io.ErrUnexpectedEOF}
	assert.True(t, errors.Is(extErr, io.ErrUnexpectedEOF))

	fetchErr := &FetchError{URL: "u", Err: io.EOF}
	assert.True(t, errors.Is(fetchErr, io.EOF))
}
