package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/wikidump-go/internal/app"
	"github.com/yourusername/wikidump-go/internal/domain"
)

func TestConfigInit(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"config", "init", path, "--lang", "de", "--type", "Wikibooks", "--ns", "14"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), path)

	config, err := app.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, domain.DumpDescriptor{Language: "de", Type: domain.TypeWikibooks, Namespace: 14}, config.Dump.Descriptor())
	assert.Equal(t, domain.DefaultIndexURL, config.Dump.IndexURL)
	assert.False(t, config.Catalog.Enabled)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	rootCmd.SetArgs([]string{"config", "init", path})
	err = rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
