package handlers

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/wikidump-go/internal/app"
	"github.com/yourusername/wikidump-go/internal/domain"
)

// DumpHandler handles dump-related HTTP requests
type DumpHandler struct {
	svc      *app.DumpService
	defaults domain.DumpDescriptor
	logger   *zap.Logger
}

// NewDumpHandler creates a new dump handler.
// Fields missing from a request are taken from defaults.
func NewDumpHandler(svc *app.DumpService, defaults domain.DumpDescriptor, logger *zap.Logger) *DumpHandler {
	return &DumpHandler{
		svc:      svc,
		defaults: defaults,
		logger:   logger,
	}
}

// DescriptorRequest selects a dump
type DescriptorRequest struct {
	Language  string `json:"language"`
	Type      string `json:"type"`
	Namespace *int   `json:"namespace"`
}

// LocateResponse is the outcome of matching a descriptor against the latest run
type LocateResponse struct {
	Descriptor domain.DumpDescriptor `json:"descriptor"`
	RunURL     string                `json:"run_url"`
	Outcome    string                `json:"outcome"`
	Names      []string              `json:"names"`
}

// FetchResponse describes an archive made available locally
type FetchResponse struct {
	Dump   *domain.PackedDump `json:"dump"`
	Record *domain.DumpRecord `json:"record,omitempty"`
}

// descriptor merges the request body with the configured defaults
func (h *DumpHandler) descriptor(c *gin.Context) (domain.DumpDescriptor, bool) {
	var req DescriptorRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return domain.DumpDescriptor{}, false
		}
	}

	d := h.defaults
	if req.Language != "" {
		d.Language = req.Language
	}
	if req.Type != "" {
		t, err := domain.ParseDumpType(req.Type)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return domain.DumpDescriptor{}, false
		}
		d.Type = t
	}
	if req.Namespace != nil {
		d.Namespace = *req.Namespace
	}

	if err := d.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return domain.DumpDescriptor{}, false
	}
	return d, true
}

// LatestRun handles GET /api/v1/runs/latest
func (h *DumpHandler) LatestRun(c *gin.Context) {
	runURL, err := h.svc.LatestRun(c.Request.Context())
	if err != nil {
		h.respondError(c, "Failed to resolve latest run", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"run_url": runURL})
}

// Locate handles POST /api/v1/dumps/locate
func (h *DumpHandler) Locate(c *gin.Context) {
	d, ok := h.descriptor(c)
	if !ok {
		return
	}

	loc, err := h.svc.Locate(c.Request.Context(), d)
	if err != nil {
		h.respondError(c, "Failed to locate dump", err)
		return
	}

	names := loc.Outcome.Names
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, LocateResponse{
		Descriptor: loc.Descriptor,
		RunURL:     loc.RunURL,
		Outcome:    loc.Outcome.Kind.String(),
		Names:      names,
	})
}

// Fetch handles POST /api/v1/dumps
func (h *DumpHandler) Fetch(c *gin.Context) {
	d, ok := h.descriptor(c)
	if !ok {
		return
	}

	packed, err := h.svc.Fetch(c.Request.Context(), d)
	if err != nil {
		h.respondError(c, "Failed to fetch dump", err)
		return
	}

	resp := FetchResponse{Dump: packed}
	if record, err := h.svc.LatestRecord(d); err == nil {
		resp.Record = record
	}

	status := http.StatusOK
	if packed.Source == domain.SourceRemote {
		status = http.StatusCreated
	}
	c.JSON(status, resp)
}

// ListDumps handles GET /api/v1/dumps
func (h *DumpHandler) ListDumps(c *gin.Context) {
	filters := make(map[string]interface{})

	if status := c.Query("status"); status != "" {
		if !domain.ValidateStatus(domain.RecordStatus(status)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status: " + status})
			return
		}
		filters["status"] = status
	}
	if language := c.Query("language"); language != "" {
		filters["language"] = language
	}
	if dumpType := c.Query("type"); dumpType != "" {
		filters["dump_type"] = dumpType
	}
	if ns := c.Query("namespace"); ns != "" {
		n, err := strconv.Atoi(ns)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid namespace: " + ns})
			return
		}
		filters["namespace"] = n
	}

	records, err := h.svc.History(filters)
	if err != nil {
		h.respondError(c, "Failed to list dumps", err)
		return
	}
	if records == nil {
		records = []*domain.DumpRecord{}
	}

	c.JSON(http.StatusOK, records)
}

// GetStats handles GET /api/v1/dumps/stats
func (h *DumpHandler) GetStats(c *gin.Context) {
	stats, err := h.svc.Stats()
	if err != nil {
		h.respondError(c, "Failed to get stats", err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetDump handles GET /api/v1/dumps/:id
func (h *DumpHandler) GetDump(c *gin.Context) {
	record, err := h.svc.Record(c.Param("id"))
	if err != nil {
		h.respondError(c, "Failed to get dump", err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// DeleteDump handles DELETE /api/v1/dumps/:id
func (h *DumpHandler) DeleteDump(c *gin.Context) {
	id := c.Param("id")

	record, err := h.svc.DeleteRecord(id)
	if err != nil {
		h.respondError(c, "Failed to delete dump", err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// respondError maps domain errors onto HTTP status codes
func (h *DumpHandler) respondError(c *gin.Context, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, zap.String("path", c.Request.URL.Path), zap.Error(err))
	} else {
		h.logger.Warn(msg, zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	var (
		fetchErr     *domain.FetchError
		emptyErr     *domain.EmptyListingError
		ambiguousErr *domain.AmbiguousDumpError
		notFoundErr  *domain.DumpNotFoundError
		downloadErr  *domain.DownloadError
		deletionErr  *domain.DeletionError
	)

	switch {
	case errors.Is(err, app.ErrCatalogDisabled):
		return http.StatusNotImplemented
	case errors.Is(err, app.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.As(err, &ambiguousErr):
		return http.StatusConflict
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &deletionErr):
		if errors.Is(err, os.ErrNotExist) {
			return http.StatusGone
		}
		return http.StatusInternalServerError
	case errors.As(err, &fetchErr), errors.As(err, &emptyErr), errors.As(err, &downloadErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
