// Vininsight browses a vehicle list and decodes VINs with the auto.dev API.
//
// Running without arguments launches the interactive terminal UI: pick a
// vehicle on the left, press d to decode its VIN and read the summary and
// raw response on the right. The subcommands run the same workflow once and
// exit, for scripts and terminals without full-screen support.
//
// Usage:
//
//	vininsight [command] [flags]
//
// See 'vininsight --help' for available commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/muurk/vininsight/internal/config"
	"github.com/muurk/vininsight/internal/logging"
	"github.com/muurk/vininsight/internal/version"
)

// errReported marks a failure whose details were already printed.
var errReported = errors.New("command failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Sync()

	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// Global flags
var (
	configFile   string
	flagSettings = config.NewSettings()

	// settings is resolved before any command runs.
	settings *config.Settings
)

var rootCmd = &cobra.Command{
	Use:   "vininsight",
	Short: "VIN lookup for a vehicle list",
	Long: `Browse a list of vehicles and decode their VINs with the auto.dev API.

The API key is stored locally in plain text. Set it with 'vininsight key set'
or from the interactive UI.

If no command is specified, the interactive UI will launch automatically.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentPreRunE = setup

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Settings file (default is <config dir>/settings.yaml)")
	flagSettings.AddFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(versionCmd)
}

// setup resolves settings and starts logging. The interactive UI owns the
// terminal, so its logs go to a file.
func setup(cmd *cobra.Command, args []string) error {
	s, err := config.LoadSettings(cmd.Flags(), configFile)
	if err != nil {
		return err
	}
	settings = s

	output := ""
	if !cmd.HasParent() && s.LogLevel != "" {
		if output, err = tuiLogPath(s); err != nil {
			return err
		}
	}
	if err := logging.Initialize(s.LogLevel, output); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	return nil
}

func tuiLogPath(s *config.Settings) (string, error) {
	path := s.LogFile
	if path == "" {
		p, err := config.GetLogPath()
		if err != nil {
			return "", fmt.Errorf("failed to get log path: %w", err)
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}
	return path, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "vininsight %s (commit: %s)\n", version.Version, version.Commit)
	},
}
