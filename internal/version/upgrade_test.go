package version

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stagedFixture(t *testing.T) (exePath, newPath string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script candidates are not runnable on windows")
	}
	dir := t.TempDir()
	exePath = filepath.Join(dir, "app")
	require.NoError(t, os.WriteFile(exePath, []byte("known-good-binary"), 0o755))
	return exePath, exePath + ".new"
}

func writeStagedScript(t *testing.T, path, body string) {
	t.Helper()
	script := fmt.Sprintf("#!/bin/sh\n%s\n", body)
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
}

func TestApplyStaged_NothingStaged(t *testing.T) {
	exePath, newPath := stagedFixture(t)

	applyStaged(exePath, newPath)

	got, err := os.ReadFile(exePath)
	require.NoError(t, err)
	assert.Equal(t, []byte("known-good-binary"), got)
}

func TestApplyStaged_HealthyStagedBinaryIsApplied(t *testing.T) {
	exePath, newPath := stagedFixture(t)
	writeStagedScript(t, newPath, `[ "$1" = "healthcheck" ] || exit 2
exit 0`)

	applyStaged(exePath, newPath)

	got, err := os.ReadFile(exePath)
	require.NoError(t, err)
	assert.Contains(t, string(got), "exit 0", "a staged binary that passes the gate replaces the executable")

	_, err = os.Stat(newPath)
	assert.True(t, os.IsNotExist(err))
}

func TestApplyStaged_GarbageStagedBinaryIsDiscarded(t *testing.T) {
	exePath, newPath := stagedFixture(t)
	// Truncated leftovers from an interrupted stage are not executable
	// programs at all.
	require.NoError(t, os.WriteFile(newPath, []byte("garbage-partial-binary"), 0o755))

	applyStaged(exePath, newPath)

	got, err := os.ReadFile(exePath)
	require.NoError(t, err)
	assert.Equal(t, []byte("known-good-binary"), got, "garbage must never replace a working binary")

	_, err = os.Stat(newPath)
	assert.True(t, os.IsNotExist(err), "the rejected staged file is discarded")
}

func TestApplyStaged_CrashingStagedBinaryIsDiscarded(t *testing.T) {
	exePath, newPath := stagedFixture(t)
	writeStagedScript(t, newPath, "exit 1")

	applyStaged(exePath, newPath)

	got, err := os.ReadFile(exePath)
	require.NoError(t, err)
	assert.Equal(t, []byte("known-good-binary"), got)
}
