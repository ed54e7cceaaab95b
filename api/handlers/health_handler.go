package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	localDir       string
	catalogEnabled bool
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(localDir string, catalogEnabled bool) *HealthHandler {
	return &HealthHandler{
		localDir:       localDir,
		catalogEnabled: catalogEnabled,
	}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	LocalDir string `json:"local_dir"`
	Catalog  struct {
		Enabled bool `json:"enabled"`
	} `json:"catalog"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:   "ok",
		Version:  "1.0.0",
		LocalDir: h.localDir,
	}
	response.Catalog.Enabled = h.catalogEnabled

	c.JSON(http.StatusOK, response)
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := os.MkdirAll(h.localDir, 0755); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "download directory unavailable: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
