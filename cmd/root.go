// The root command for the CLI.
// This root 'composes' your subcommands and provides global config flags like --debug.
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	blacklistCmd "github.com/redjax/upkeep/internal/commands/blacklistCommand"
	healthcheckCmd "github.com/redjax/upkeep/internal/commands/healthcheckCommand"
	selfCmd "github.com/redjax/upkeep/internal/commands/selfCommand"

	"github.com/redjax/upkeep/internal/config"
	updateservice "github.com/redjax/upkeep/internal/services/updateService"
	"github.com/redjax/upkeep/internal/services/updateService/ui"
	"github.com/redjax/upkeep/internal/version"
)

var (
	// A path to a file to load configuration from
	cfgFile string
	// For enabling debug logging with --debug/-D
	debug bool
	// Exit non-zero immediately, so a staged release can be proven to fail
	// its health check and exercise the rollback path end to end.
	simulateFailure bool
)

// Cobra root command
var rootCmd = &cobra.Command{
	// The command you run to call the compiled binary
	Use: "upkeep",
	// A short description of what the command does
	Short: "Self-updating demo app with rollback and version blacklisting.",
	// A longer description for the command
	Long: `Runs the application foreground loop while a background worker checks GitHub
releases for a newer build of this binary, swaps it on disk, verifies it
starts, and rolls back broken versions so they are never retried.`,
	RunE: runForeground,
}

// Execute the root Cobra command
func Execute() {
	// Import this into a main.go and call with cmd.Execute()
	cobra.CheckErr(rootCmd.Execute())
}

// Initialize the root command
func init() {
	// Add flags to the CLI's root command, making them 'global'
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (JSON/YAML/TOML/env)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "D", false, "Enable debug logging")
	rootCmd.Flags().BoolVar(&simulateFailure, "simulate-failure", false, "Exit with an error immediately (for update rollback testing)")
	rootCmd.Flags().MarkHidden("simulate-failure")

	// Add other CLI subcommands
	rootCmd.AddCommand(selfCmd.NewSelfCommand())
	rootCmd.AddCommand(blacklistCmd.NewBlacklistCommand())
	rootCmd.AddCommand(healthcheckCmd.NewHealthcheckCommand())

	// Call the initConfig function when the root command is initialized
	cobra.OnInitialize(initConfig)
}

// Load configuration for CLI app
func initConfig() {
	config.LoadConfig(rootCmd.PersistentFlags(), cfgFile)
}

// runForeground starts the background update worker and the status UI. The
// UI is the sole consumer of the worker's events; the worker is the sole
// producer. Quitting the UI does not abandon an in-flight swap: the process
// waits for the worker's terminal state before exiting.
func runForeground(cmd *cobra.Command, args []string) error {
	if simulateFailure {
		fmt.Println("SIMULATED FAILURE: Exiting with error.")
		os.Exit(1)
	}

	notifier, outcome := startWorker(cmd)

	model := ui.NewUIModel(notifier.Events(), version.Version)
	if _, err := tea.NewProgram(model).Run(); err != nil {
		return fmt.Errorf("UI loop failed: %v", err)
	}

	if outcome != nil {
		// Once a swap begins it must reach a terminal state; block here so
		// an early quit can't leave the binary half-replaced.
		<-outcome
	}
	return nil
}

// startWorker assembles the orchestrator from config and launches it. When
// updates can't or shouldn't run, it returns a notifier that only carries an
// explanatory message, and no outcome channel.
func startWorker(cmd *cobra.Command) (*updateservice.Notifier, <-chan updateservice.Outcome) {
	k := config.K

	skipReason := ""
	switch {
	case k.Bool("update.disabled"):
		skipReason = "Auto-update disabled by configuration."
	case version.Version == "dev":
		skipReason = "Development build, auto-update skipped."
	}
	if skipReason != "" {
		notifier := updateservice.NewNotifier()
		notifier.Send(updateservice.MessageEvent(skipReason))
		notifier.Close()
		return notifier, nil
	}

	owner := k.String("update.owner")
	if owner == "" {
		owner = version.RepoUser
	}
	repo := k.String("update.repo")
	if repo == "" {
		repo = version.RepoName
	}

	orch, err := updateservice.New(updateservice.Options{
		Owner:          owner,
		Repo:           repo,
		BinName:        version.Package,
		CurrentVersion: version.Version,
		SelfTestArg:    "healthcheck",
		HealthTimeout:  k.Duration("update.timeout"),
		Logger:         workerLogger(),
	})
	if err != nil {
		notifier := updateservice.NewNotifier()
		notifier.Send(updateservice.ErrorEvent(err.Error()))
		notifier.Close()
		return notifier, nil
	}

	return orch.Notifier, orch.Start(cmd.Context())
}

// workerLogger writes worker diagnostics to a file so they don't tear the
// TUI; without --debug they are discarded (events remain the user surface).
func workerLogger() *log.Logger {
	if !debug {
		return log.New(io.Discard)
	}

	path := debugLogPath()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return log.New(io.Discard)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return log.New(io.Discard)
	}
	logger := log.NewWithOptions(f, log.Options{Prefix: "updater", ReportTimestamp: true})
	logger.SetLevel(log.DebugLevel)
	return logger
}

// debugLogPath puts the debug log in the same per-user cache dir as the
// blacklist rather than littering whatever directory the user runs from.
func debugLogPath() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "upkeep.log"
	}
	return filepath.Join(cacheDir, version.Package, "upkeep.log")
}
