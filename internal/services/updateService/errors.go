package updateservice

import (
	"errors"
	"fmt"
)

// Error categories for the fallible steps of an update attempt. Transport
// and verification failures are recoverable (retry on next launch); a
// failed rollback is not recoverable by this process.
var (
	// ErrQuery wraps failures while asking the release service for the
	// latest release.
	ErrQuery = errors.New("release query failed")
	// ErrSwap wraps download, verification and placement failures reported
	// by the release service after a backup was created.
	ErrSwap = errors.New("binary swap failed")
	// ErrBlacklistWrite wraps a failed synchronous persist of the
	// blacklist. The in-memory set still functions for this process.
	ErrBlacklistWrite = errors.New("blacklist persist failed")
)

// RollbackError means restoring the backup over a broken binary failed.
// It is deliberately distinct from "the new version was broken": the
// installation may now be non-functional and needs manual recovery, so the
// error carries both paths involved.
type RollbackError struct {
	BackupPath string
	TargetPath string
	Err        error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("rollback failed: could not restore %s over %s: %v",
		e.BackupPath, e.TargetPath, e.Err)
}

func (e *RollbackError) Unwrap() error {
	return e.Err
}
