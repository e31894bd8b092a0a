package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheCommands(t *testing.T) {
	cfgPath, dir := setupConfigFile(t)
	cacheDir := filepath.Join(dir, "temp")

	stdout, _, err := executeCommand(t, "--config", cfgPath, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Index: not cached")
	assert.Contains(t, stdout, "Detail pages: 0")

	require.NoError(t, os.MkdirAll(filepath.Join(cacheDir, "niad_terms"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(cacheDir, "niad_glossary_index.html"), []byte("<html></html>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(cacheDir, "niad_glossary_index_timestamp.json"), []byte(`{"last_index_get": "20240401120000"}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(cacheDir, "niad_terms", "1001.html"), []byte("<html></html>"), 0644))

	stdout, _, err = executeCommand(t, "--config", cfgPath, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Index: cached at 2024-04-01 12:00:00")
	assert.Contains(t, stdout, "Detail pages: 1")

	_, _, err = executeCommand(t, "--config", cfgPath, "cache", "clear")
	require.NoError(t, err)
	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	stdout, _, err = executeCommand(t, "--config", cfgPath, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Index: not cached")
}
