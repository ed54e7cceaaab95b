package infrastructure

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/yourusername/wikidump-go/internal/domain"
)

// HTTPListingFetcher implements ListingFetcher for autoindex directory pages
type HTTPListingFetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	logger    *zap.Logger
}

// NewHTTPListingFetcher creates a listing fetcher with a bounded request timeout
func NewHTTPListingFetcher(config *domain.HTTPConfig, logger *zap.Logger) *HTTPListingFetcher {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxBytes := config.MaxListingBytes
	if maxBytes <= 0 {
		maxBytes = 32 << 20
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &HTTPListingFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: config.UserAgent,
		maxBytes:  maxBytes,
		logger:    logger,
	}
}

// FetchLinks returns every anchor href of the page at url, in document order
func (f *HTTPListingFetcher) FetchLinks(ctx context.Context, url string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Err: err}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	links, err := ParseLinks(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, &domain.FetchError{URL: url, Err: fmt.Errorf("failed to parse listing: %w", err)}
	}

	f.logger.Debug("Fetched listing",
		zap.String("url", url),
		zap.Int("links", len(links)))

	return links, nil
}

// ParseLinks parses an HTML document and returns the href of every anchor in document order
func ParseLinks(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			if href, ok := getAttr(n, "href"); ok {
				links = append(links, href)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links, nil
}

// getAttr returns the value of an attribute and whether it is present
func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
