package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// setConfigFile registers a cleanup that restores the global configFile variable.
func setConfigFile(t *testing.T, cfgPath string) {
	t.Helper()
	oldConfigFile := configFile
	configFile = cfgPath
	t.Cleanup(func() { configFile = oldConfigFile })
}

// setupConfigFile writes a config whose cache and output live under a temp directory.
func setupConfigFile(t *testing.T) (cfgPath, dir string) {
	t.Helper()
	dir = t.TempDir()
	cfgPath = filepath.Join(dir, "config.yml")
	content := "cache:\n  directory: " + filepath.Join(dir, "temp") +
		"\noutput:\n  directory: " + filepath.Join(dir, "output") + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))
	setConfigFile(t, cfgPath)
	return cfgPath, dir
}

// setupBrokenConfigFile creates a config file with invalid YAML that causes Load() to fail.
func setupBrokenConfigFile(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("{{invalid yaml content"), 0644))
	setConfigFile(t, cfgPath)
	return cfgPath
}

func executeCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))
	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}
