package domain

import "context"

// ListingFetcher returns the anchor targets of a directory listing page
type ListingFetcher interface {
	// FetchLinks returns every anchor href on the page at url, in document order
	FetchLinks(ctx context.Context, url string) ([]string, error)
}

// Transferer streams a remote archive into a local file
type Transferer interface {
	// Transfer writes the body of url to dest and returns the number of bytes written.
	// On error dest is left absent.
	Transfer(ctx context.Context, url, dest string) (int64, error)
}
