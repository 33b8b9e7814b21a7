package blacklistcommand

import (
	"fmt"

	"github.com/spf13/cobra"

	updateservice "github.com/redjax/upkeep/internal/services/updateService"
	"github.com/redjax/upkeep/internal/version"
)

// NewBlacklistCommand creates the 'blacklist' parent command. These are
// one-shot maintenance invocations: each loads, mutates and persists its own
// blacklist instance and must not run concurrently with an update.
func NewBlacklistCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blacklist",
		Short: "Inspect or edit the known-bad version list",
		Long:  "Maintenance operations on the persisted set of versions that failed their health check.",
	}

	cmd.AddCommand(NewListCommand())
	cmd.AddCommand(NewAddCommand())

	return cmd
}

// NewListCommand prints the persisted blacklist.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print versions that will never be installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			bl := updateservice.LoadBlacklist(updateservice.BlacklistPath(version.Package))

			versions := bl.Versions()
			if len(versions) == 0 {
				fmt.Println("Ignored versions: (none)")
				return nil
			}

			fmt.Println("Ignored versions:")
			for _, v := range versions {
				fmt.Printf("  %s\n", v)
			}
			return nil
		},
	}
}

// NewAddCommand forces a blacklist entry, mainly for testing the skip path
// against a real release.
func NewAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add [version]",
		Short: "Mark a version as bad so it is never installed",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default mirrors the classic "mark a version that will never
			// ship" test affordance.
			v := "9.9.9"
			if len(args) > 0 {
				v = args[0]
			}

			bl := updateservice.LoadBlacklist(updateservice.BlacklistPath(version.Package))
			if err := bl.MarkBad(v); err != nil {
				return fmt.Errorf("failed to persist blacklist: %w", err)
			}

			fmt.Printf("Marked %s as bad.\n", v)
			return nil
		},
	}
}
