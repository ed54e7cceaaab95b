package infrastructure

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/yourusername/wikidump-go/internal/domain"
)

// HTTPTransferer implements Transferer with a streamed GET
type HTTPTransferer struct {
	client           *http.Client
	userAgent        string
	timeout          time.Duration
	progressInterval int64
	logger           *zap.Logger
}

// NewHTTPTransferer creates a transferer.
// There is no client-wide timeout: archives are gigabytes, so only the response headers
// and the optional overall download timeout are bounded.
func NewHTTPTransferer(httpConfig *domain.HTTPConfig, downloadConfig *domain.DownloadConfig, logger *zap.Logger) *HTTPTransferer {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = httpConfig.ResponseHeaderTimeout
	if logger == nil {
		logger = zap.NewNop()
	}

	return &HTTPTransferer{
		client:           &http.Client{Transport: transport},
		userAgent:        httpConfig.UserAgent,
		timeout:          downloadConfig.Timeout,
		progressInterval: downloadConfig.ProgressInterval,
		logger:           logger,
	}
}

// Transfer streams url into dest through a sibling ".part" file renamed on success.
// Any failure removes the partial file, so dest only ever exists complete.
func (t *HTTPTransferer) Transfer(ctx context.Context, url, dest string) (int64, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, &domain.DownloadError{URL: url, Path: dest, Err: err}
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, &domain.DownloadError{URL: url, Path: dest, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &domain.DownloadError{URL: url, Path: dest, StatusCode: resp.StatusCode}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return 0, &domain.DownloadError{URL: url, Path: dest, Err: fmt.Errorf("failed to create download directory: %w", err)}
	}

	partPath := filepath.Join(filepath.Dir(dest), domain.PartialName(filepath.Base(dest)))
	written, err := t.writePart(resp, partPath)
	if err != nil {
		os.Remove(partPath)
		return written, &domain.DownloadError{URL: url, Path: dest, Err: err}
	}

	if err := os.Rename(partPath, dest); err != nil {
		os.Remove(partPath)
		return written, &domain.DownloadError{URL: url, Path: dest, Err: fmt.Errorf("failed to finalize download: %w", err)}
	}

	return written, nil
}

// writePart copies the response body into partPath and syncs it to disk
func (t *HTTPTransferer) writePart(resp *http.Response, partPath string) (int64, error) {
	file, err := os.Create(partPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}

	var dst io.Writer = file
	if t.progressInterval > 0 {
		dst = &progressWriter{
			w:        file,
			total:    resp.ContentLength,
			interval: t.progressInterval,
			next:     t.progressInterval,
			logger:   t.logger.With(zap.String("file", filepath.Base(partPath))),
		}
	}

	written, err := io.Copy(dst, resp.Body)
	if err != nil {
		file.Close()
		return written, fmt.Errorf("failed to write body: %w", err)
	}
	if resp.ContentLength >= 0 && written != resp.ContentLength {
		file.Close()
		return written, fmt.Errorf("truncated body: got %d of %d bytes", written, resp.ContentLength)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return written, fmt.Errorf("failed to sync file: %w", err)
	}
	if err := file.Close(); err != nil {
		return written, fmt.Errorf("failed to close file: %w", err)
	}
	return written, nil
}

// progressWriter logs a line every interval bytes
type progressWriter struct {
	w        io.Writer
	written  int64
	total    int64
	interval int64
	next     int64
	logger   *zap.Logger
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.written += int64(n)
	if p.written >= p.next {
		fields := []zap.Field{zap.String("written", humanize.IBytes(uint64(p.written)))}
		if p.total > 0 {
			fields = append(fields,
				zap.String("total", humanize.IBytes(uint64(p.total))),
				zap.String("percent", fmt.Sprintf("%.1f", float64(p.written)*100/float64(p.total))))
		}
		p.logger.Info("Download progress", fields...)
		for p.next <= p.written {
			p.next += p.interval
		}
	}
	return n, err
}
