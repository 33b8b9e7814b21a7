package updateservice

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeExe(t *testing.T, dir string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, "app")
	require.NoError(t, os.WriteFile(path, content, 0o755))
	return path
}

func TestBackupSlot_CreateCopiesBytes(t *testing.T) {
	original := writeExe(t, t.TempDir(), []byte("old-binary"))
	slot := NewBackupSlot(original)

	require.NoError(t, slot.Create())

	assert.Equal(t, original+BackupExt, slot.Path())
	assert.True(t, slot.Exists())

	got, err := os.ReadFile(slot.Path())
	require.NoError(t, err)
	assert.Equal(t, []byte("old-binary"), got)
}

func TestBackupSlot_CreateFailsWithoutOriginal(t *testing.T) {
	slot := NewBackupSlot(filepath.Join(t.TempDir(), "missing"))

	assert.Error(t, slot.Create())
	assert.False(t, slot.Exists())
}

func TestBackupSlot_CommitRemovesSlot(t *testing.T) {
	original := writeExe(t, t.TempDir(), []byte("old-binary"))
	slot := NewBackupSlot(original)
	require.NoError(t, slot.Create())

	require.NoError(t, slot.Commit())

	assert.False(t, slot.Exists())
}

func TestBackupSlot_RestoreReplacesOriginal(t *testing.T) {
	original := writeExe(t, t.TempDir(), []byte("old-binary"))
	slot := NewBackupSlot(original)
	require.NoError(t, slot.Create())

	// Simulate a swap that installed a broken binary.
	require.NoError(t, os.WriteFile(original, []byte("broken-binary"), 0o755))

	require.NoError(t, slot.Restore())

	got, err := os.ReadFile(original)
	require.NoError(t, err)
	assert.Equal(t, []byte("old-binary"), got, "on-disk bytes must equal the pre-update backup")
	assert.False(t, slot.Exists(), "the slot no longer exists after restore")
}

func TestBackupSlot_RestoreWithoutBackupIsRollbackError(t *testing.T) {
	original := writeExe(t, t.TempDir(), []byte("old-binary"))
	slot := NewBackupSlot(original)

	err := slot.Restore()

	var rbErr *RollbackError
	require.True(t, errors.As(err, &rbErr))
	assert.Equal(t, slot.Path(), rbErr.BackupPath)
	assert.Equal(t, original, rbErr.TargetPath)
	assert.Contains(t, rbErr.Error(), original, "manual recovery needs the paths involved")
}
