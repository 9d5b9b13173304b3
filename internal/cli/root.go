// Package cli wires the cobra commands for the nitpick binary.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

// Exit codes.
const (
	ExitSuccess      = 0
	ExitConfigError  = 1
	ExitUsageError   = 2
	ExitRuntimeError = 3
)

var (
	flagConfig string
	flagDebug  bool
)

var rootCmd = &cobra.Command{
	Use:   "nitpick",
	Short: "Static-analysis review comments for GitHub pull requests",
	Long: "Nitpick polls configured repositories for open pull requests, runs the\n" +
		"appropriate linters against changed files, and posts review comments for\n" +
		"newly detected issues without repeating itself.",
}

// Execute runs the root command and returns a process exit code.
func Execute() int {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to the YAML config file (default: ./nitpick.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Verbose logging; log comments instead of posting them")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error; handlers set exitCode for their
		// own failures, anything else is a usage problem.
		if exitCode == ExitSuccess {
			return ExitUsageError
		}
	}
	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print nitpick version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Fprintf(os.Stdout, "nitpick version %s\n", version)
	},
}

// setupLogging configures the default slog handler.
func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
