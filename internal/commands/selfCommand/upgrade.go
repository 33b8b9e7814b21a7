package selfcommand

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	updateservice "github.com/redjax/upkeep/internal/services/updateService"
	"github.com/redjax/upkeep/internal/utils/spinner"
	"github.com/redjax/upkeep/internal/version"
)

// NewUpgradeCommand creates the 'self upgrade' command: a synchronous,
// one-shot run of the same update sequence the background worker uses.
func NewUpgradeCommand() *cobra.Command {
	var checkOnly bool

	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade upkeep CLI to the latest release",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return upgradeSelf(cmd, checkOnly)
		},
	}

	// Register flags
	cmd.Flags().BoolVar(&checkOnly, "check", false, "Only check for latest version, don't upgrade if one is found.")

	return cmd
}

func upgradeSelf(cmd *cobra.Command, checkOnly bool) error {
	info := version.GetPackageInfo()

	if info.PackageVersion == "dev" {
		fmt.Fprintf(cmd.ErrOrStderr(), "🛠️  This is a development build (%s), not upgrading.\n", info.PackageVersion)
		return nil
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "updater"})
	logger.SetLevel(log.WarnLevel)

	orch, err := updateservice.New(updateservice.Options{
		Owner:          info.RepoUser,
		Repo:           info.RepoName,
		BinName:        info.PackageName,
		CurrentVersion: info.PackageVersion,
		SelfTestArg:    "healthcheck",
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	if checkOnly {
		return checkLatest(cmd, orch, info.PackageVersion)
	}

	sp := spinner.StartStatusSpinner("Checking for updates...")
	outcome := orch.Start(cmd.Context())

	// Drain events without blocking so the spinner keeps painting; the
	// worker's channel closing marks the terminal state.
	var last updateservice.UpdateEvent
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

poll:
	for range ticker.C {
		for {
			ev, ok, closed := orch.Notifier.TryRecv()
			if closed {
				break poll
			}
			if !ok {
				break
			}
			last = ev
			if ev.Kind == updateservice.EventMessage {
				sp.SetMessage(ev.Text)
			}
		}
	}
	sp.Stop()

	switch last.Kind {
	case updateservice.EventSuccess:
		fmt.Fprintf(cmd.ErrOrStderr(), "✅ Upgraded to v%s (outcome: %s). Restart to use it.\n", last.Version, <-outcome)
		return nil
	case updateservice.EventUpToDate:
		fmt.Fprintf(cmd.ErrOrStderr(), "🔄 No new release available, upkeep is up to date (%s).\n", info.PackageVersion)
		return nil
	case updateservice.EventError:
		return errors.New(last.Text)
	default:
		// Terminal informational message, e.g. a blacklisted release.
		fmt.Fprintln(cmd.ErrOrStderr(), last.Text)
		return nil
	}
}

// checkLatest implements --check: query and compare, change nothing.
func checkLatest(cmd *cobra.Command, orch *updateservice.Orchestrator, current string) error {
	rel, err := orch.Releases.GetLatestRelease(cmd.Context(), updateservice.Target())
	if err != nil {
		return fmt.Errorf("failed to check latest release: %w", err)
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Current version:", current)
	fmt.Fprintln(cmd.ErrOrStderr(), "Latest version: ", rel.Version)

	newer, err := updateservice.IsStrictlyNewer(current, rel.Version)
	if err != nil {
		return err
	}

	if newer {
		if orch.Blacklist.IsBad(rel.Version) {
			fmt.Fprintf(cmd.ErrOrStderr(), "⛔ %s is newer but blacklisted; it will not be installed.\n", rel.Version)
			return nil
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "🚀 Upgrade available: %s → %s\n", current, rel.Version)
		fmt.Fprintln(cmd.ErrOrStderr(), "✅ Use this command without --check to upgrade.")
		return nil
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "🔄 No new release available, upkeep is up to date (%s).\n", current)
	return nil
}
