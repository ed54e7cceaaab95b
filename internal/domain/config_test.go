package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.NotNil(t, config)
	assert.Equal(t, DefaultIndexURL, config.Dump.IndexURL)
	assert.Equal(t, "en", config.Dump.Language)
	assert.Equal(t, "wiktionary", config.Dump.Type)
	assert.Equal(t, 0, config.Dump.Namespace)
	assert.False(t, config.Dump.StrictMatch)
	assert.Equal(t, 30*time.Second, config.HTTP.Timeout)
	assert.NotEmpty(t, config.HTTP.UserAgent)
	assert.Equal(t, time.Duration(0), config.Download.Timeout)
	assert.Equal(t, "lines", config.Extract.Mode)
	assert.False(t, config.Catalog.Enabled)
	assert.False(t, strings.HasPrefix(config.Catalog.DatabasePath, config.Download.Dir+"/"),
		"catalog must not live among the archives")
	assert.False(t, config.Notification.Enabled)
	assert.Equal(t, "info", config.Logging.Level)
}

func TestDumpConfig_Descriptor(t *testing.T) {
	c := DumpConfig{Language: "de", Type: "wikibooks", Namespace: 14}

	d := c.Descriptor()
	assert.Equal(t, DumpDescriptor{Language: "de", Type: TypeWikibooks, Namespace: 14}, d)
	assert.Equal(t, MatchLoose, c.Policy())

	c.StrictMatch = true
	assert.Equal(t, MatchStrict, c.Policy())
}
