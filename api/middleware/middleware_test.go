package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yourusername/wikidump-go/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestLogger_LogsRequests(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	router := gin.New()
	router.Use(Logger(zap.New(core), nil))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping?x=1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "HTTP request", entry.Message)
	assert.Equal(t, "/ping", entry.ContextMap()["path"])
	assert.Equal(t, "x=1", entry.ContextMap()["query"])
	assert.Equal(t, int64(http.StatusOK), entry.ContextMap()["status"])
}

func TestRecovery_ReturnsInternalServerError(t *testing.T) {
	dir := t.TempDir()
	events, err := logger.NewMultiLogger(logger.MultiLoggerConfig{Level: "info", LogsDir: dir})
	require.NoError(t, err)

	core, logs := observer.New(zap.ErrorLevel)
	router := gin.New()
	router.Use(Logger(zap.NewNop(), events))
	router.Use(Recovery(zap.New(core), events))
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())

	require.NoError(t, events.Close())
	data, err := os.ReadFile(events.CategoryLogPath(logger.CategoryError, time.Now()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Panic recovered")
	assert.Contains(t, string(data), "HTTP error response")
}

func TestLogger_RecordsServerErrorsInEventLog(t *testing.T) {
	events, err := logger.NewMultiLogger(logger.MultiLoggerConfig{Level: "info", LogsDir: t.TempDir()})
	require.NoError(t, err)

	router := gin.New()
	router.Use(Logger(zap.NewNop(), events))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/upstream", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/upstream", nil))

	require.NoError(t, events.Close())
	data, err := os.ReadFile(events.CategoryLogPath(logger.CategoryError, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "HTTP error response"))
	assert.Contains(t, string(data), "/upstream")
	assert.NotContains(t, string(data), "/ok")
}
