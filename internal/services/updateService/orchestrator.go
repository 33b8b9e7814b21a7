package updateservice

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	goversion "github.com/hashicorp/go-version"
)

// Outcome is the terminal state of one update attempt. Exactly one outcome
// is produced per run, and exactly one terminal event is sent for it.
type Outcome int

const (
	// OutcomeQueryFailed: the release service could not resolve the latest
	// release. Nothing on disk changed.
	OutcomeQueryFailed Outcome = iota
	// OutcomeBlacklisted: the latest release is known-broken and was skipped.
	OutcomeBlacklisted
	// OutcomeUpToDate: no strictly newer release exists.
	OutcomeUpToDate
	// OutcomeSwapFailed: backup or download/verify/placement failed; the
	// original binary is back in place.
	OutcomeSwapFailed
	// OutcomeCommitted: the new binary passed its health check and the
	// backup was discarded.
	OutcomeCommitted
	// OutcomeRolledBack: the new binary failed its health check and the
	// backup was restored; the version is blacklisted.
	OutcomeRolledBack
	// OutcomeRollbackFailed: restoring the backup itself failed. The
	// installation may be broken and needs manual recovery.
	OutcomeRollbackFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeQueryFailed:
		return "QueryFailed"
	case OutcomeBlacklisted:
		return "Blacklisted"
	case OutcomeUpToDate:
		return "UpToDate"
	case OutcomeSwapFailed:
		return "SwapFailed"
	case OutcomeCommitted:
		return "Committed"
	case OutcomeRolledBack:
		return "RolledBack"
	case OutcomeRollbackFailed:
		return "RollbackFailed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Orchestrator sequences one update attempt: query, blacklist and version
// gates, backup, swap, health check, then commit or rollback. It runs
// strictly sequentially on one background worker and reports progress
// through the Notifier; it never terminates the process.
type Orchestrator struct {
	// CurrentVersion is the running binary's version.
	CurrentVersion string
	// ExePath is the on-disk location of the running executable, the one
	// resource this process mutates.
	ExePath string

	Releases  ReleaseService
	Health    HealthChecker
	Blacklist *Blacklist
	Notifier  *Notifier

	// Logger is optional; events remain the user-facing surface.
	Logger *log.Logger
}

// Start launches the attempt on a background goroutine and closes the
// notifier when it reaches a terminal state. The returned channel yields
// the terminal outcome exactly once.
func (o *Orchestrator) Start(ctx context.Context) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer o.Notifier.Close()
		out <- o.Run(ctx)
	}()
	return out
}

// Run executes the attempt to a terminal state. It is the only writer of
// the executable path, and it maintains the invariant that a backup exists
// whenever the live path may be in a transient state.
func (o *Orchestrator) Run(ctx context.Context) Outcome {
	logger := o.logger().With("attempt", uuid.NewString())

	o.Notifier.Send(MessageEvent("Querying GitHub..."))

	target := Target()
	rel, err := o.Releases.GetLatestRelease(ctx, target)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrQuery, err)
		logger.Error("release query failed", "target", target, "err", err)
		o.Notifier.Send(ErrorEvent(err.Error()))
		return OutcomeQueryFailed
	}

	if o.Blacklist.IsBad(rel.Version) {
		logger.Info("latest release is blacklisted", "version", rel.Version)
		o.Notifier.Send(MessageEvent(fmt.Sprintf("Skipping bad version %s", rel.Version)))
		return OutcomeBlacklisted
	}

	latest := strings.TrimPrefix(rel.Version, "v")
	newer, err := IsStrictlyNewer(o.CurrentVersion, latest)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrQuery, err)
		logger.Error("version comparison failed", "current", o.CurrentVersion, "latest", rel.Version, "err", err)
		o.Notifier.Send(ErrorEvent(err.Error()))
		return OutcomeQueryFailed
	}
	if !newer {
		logger.Info("already up to date", "current", o.CurrentVersion, "latest", latest)
		o.Notifier.Send(UpToDateEvent())
		return OutcomeUpToDate
	}

	o.Notifier.Send(MessageEvent(fmt.Sprintf("Downloading v%s...", latest)))

	// The backup must exist before anything destructive touches ExePath.
	backup := NewBackupSlot(o.ExePath)
	if backup.Exists() {
		// A previous attempt died between swap and verdict. The running
		// binary evidently starts, so its bytes become the new backup.
		logger.Warn("stale backup from an unresolved attempt, overwriting", "path", backup.Path())
	}
	if err := backup.Create(); err != nil {
		logger.Error("backup creation failed, aborting before swap", "err", err)
		o.Notifier.Send(ErrorEvent(fmt.Sprintf("%v: %v", ErrSwap, err)))
		return OutcomeSwapFailed
	}

	status, err := o.Releases.Update(ctx, rel, o.ExePath)
	if err != nil {
		// Transport or verification failure mid-swap. The new binary never
		// ran; put the original back and end the attempt.
		logger.Error("swap failed, restoring backup", "version", latest, "err", err)
		if rerr := backup.Restore(); rerr != nil {
			logger.Error("restore after failed swap also failed", "err", rerr)
		}
		o.Notifier.Send(ErrorEvent(fmt.Sprintf("%v: %v", ErrSwap, err)))
		return OutcomeSwapFailed
	}

	if !status.Updated {
		// The service decided no swap was needed after all; release the slot.
		if err := backup.Commit(); err != nil {
			logger.Warn("failed to remove unused backup", "err", err)
		}
		o.Notifier.Send(UpToDateEvent())
		return OutcomeUpToDate
	}

	newVersion := strings.TrimPrefix(status.Version, "v")
	o.Notifier.Send(MessageEvent("Verifying new binary health..."))

	if herr := o.Health.Verify(ctx, o.ExePath); herr != nil {
		logger.Error("health check failed", "version", newVersion, "err", herr)
		o.Notifier.Send(MessageEvent("Health check failed. Rolling back..."))

		// Record first: even if rollback fails, this version must never be
		// retried.
		if merr := o.Blacklist.MarkBad(newVersion); merr != nil {
			logger.Warn("blacklist entry recorded in memory only", "version", newVersion, "err", merr)
			o.Notifier.Send(MessageEvent(fmt.Sprintf("%v: %v", ErrBlacklistWrite, merr)))
		}

		if rerr := backup.Restore(); rerr != nil {
			logger.Error("ROLLBACK FAILED, manual recovery required", "err", rerr)
			o.Notifier.Send(ErrorEvent(rerr.Error()))
			return OutcomeRollbackFailed
		}

		o.Notifier.Send(ErrorEvent(fmt.Sprintf("Version %s broken. Rolled back.", newVersion)))
		return OutcomeRolledBack
	}

	// Healthy: the swap is final. Backup removal is best-effort.
	if err := backup.Commit(); err != nil {
		logger.Warn("failed to remove backup after commit", "err", err)
	}
	logger.Info("update installed", "version", newVersion)
	o.Notifier.Send(SuccessEvent(newVersion))
	return OutcomeCommitted
}

func (o *Orchestrator) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(io.Discard)
}

// IsStrictlyNewer reports whether latest is semantically greater than
// current. Equal or older versions never trigger a swap.
func IsStrictlyNewer(current, latest string) (bool, error) {
	cur, err := goversion.NewVersion(strings.TrimPrefix(current, "v"))
	if err != nil {
		return false, fmt.Errorf("bad running version %q: %w", current, err)
	}
	lat, err := goversion.NewVersion(strings.TrimPrefix(latest, "v"))
	if err != nil {
		return false, fmt.Errorf("bad release version %q: %w", latest, err)
	}
	return lat.GreaterThan(cur), nil
}
