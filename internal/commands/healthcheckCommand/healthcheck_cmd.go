package healthcheckcommand

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/redjax/upkeep/internal/config"
)

// NewHealthcheckCommand creates the 'healthcheck' command: the self-test the
// updater runs against a freshly installed binary before trusting it. It
// performs minimal startup validation and exits; it must never start the
// update flow itself, or a candidate binary would recurse into updating.
func NewHealthcheckCommand() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Validate startup and exit (used by the self-updater)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Validate(cfgFile); err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}

			fmt.Println("Health check passed!")
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "config file to validate")

	return cmd
}
