package updateservice

import (
	"fmt"
	"io"
	"os"
)

// BackupExt is appended to the executable path to form the backup slot.
const BackupExt = ".bak"

// BackupSlot is the single reserved pre-swap copy of the executable. It
// exists on disk only between "swap about to happen" and "swap outcome
// resolved"; a slot found at startup means a previous attempt never reached
// a terminal state.
type BackupSlot struct {
	original string
	path     string
}

// NewBackupSlot derives the slot path for the executable at original:
// same directory, same base name, ".bak" extension.
func NewBackupSlot(original string) *BackupSlot {
	return &BackupSlot{
		original: original,
		path:     original + BackupExt,
	}
}

// Path returns the slot's on-disk location.
func (s *BackupSlot) Path() string {
	return s.path
}

// Exists reports whether a backup file currently occupies the slot.
func (s *BackupSlot) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Create copies the executable's bytes and mode into the slot. This must
// succeed before any destructive swap; a failure here aborts the attempt
// with the installation untouched.
func (s *BackupSlot) Create() error {
	in, err := os.Open(s.original)
	if err != nil {
		return fmt.Errorf("failed to open executable for backup: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat executable: %w", err)
	}

	out, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create backup %s: %w", s.path, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(s.path)
		return fmt.Errorf("failed to write backup %s: %w", s.path, err)
	}

	if err := out.Close(); err != nil {
		os.Remove(s.path)
		return fmt.Errorf("failed to flush backup %s: %w", s.path, err)
	}
	return nil
}

// Commit discards the backup after a verified swap. Deletion is best-effort:
// the update already succeeded, so a leftover slot is reported by the caller
// but does not change the outcome.
func (s *BackupSlot) Commit() error {
	if err := os.Remove(s.path); err != nil {
		return fmt.Errorf("failed to remove backup %s: %w", s.path, err)
	}
	return nil
}

// Restore renames the backup over the executable, atomically replacing it.
// After a successful restore the slot no longer exists. A failure here is
// the worst outcome the updater can produce: the on-disk binary may be the
// broken one with no backup left, so the error names both paths for manual
// recovery.
func (s *BackupSlot) Restore() error {
	if err := os.Rename(s.path, s.original); err != nil {
		return &RollbackError{
			BackupPath: s.path,
			TargetPath: s.original,
			Err:        err,
		}
	}
	return nil
}
