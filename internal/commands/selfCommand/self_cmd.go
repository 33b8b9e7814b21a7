package selfcommand

import (
	"github.com/spf13/cobra"

	"github.com/redjax/upkeep/internal/version"
)

// NewSelfCommand creates the 'self' parent command
func NewSelfCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "self",
		Short: "Manage this upkeep CLI",
		Long:  "Self-management operations for upkeep, e.g. upgrade to latest version.",
	}

	// Attach 'upgrade' as a subcommand
	cmd.AddCommand(NewUpgradeCommand())
	// Attach 'info' as a subcommand
	cmd.AddCommand(version.NewPackageInfoCommand())
	// Attach 'version' as a subcommand
	cmd.AddCommand(version.NewVersionCommand())

	return cmd
}
