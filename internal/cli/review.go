package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	flagRepo   string
	flagNumber int
	flagForce  bool
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review one pull request and exit",
	Long: "Review runs the same pipeline as the polling loop for a single pull\n" +
		"request. --force reviews a closed pull request; author rules and the\n" +
		"ignore marker still apply.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true
		if err := reviewOne(); err != nil {
			exitCode = ExitRuntimeError
			if errors.Is(err, errConfig) {
				exitCode = ExitConfigError
			}
			return err
		}
		return nil
	},
}

func init() {
	reviewCmd.Flags().StringVar(&flagRepo, "repo", "", "Repository as owner/name (required)")
	reviewCmd.Flags().IntVar(&flagNumber, "number", 0, "Pull request number (required)")
	reviewCmd.Flags().BoolVar(&flagForce, "force", false, "Review even if the pull request is not open")
	_ = reviewCmd.MarkFlagRequired("repo")
	_ = reviewCmd.MarkFlagRequired("number")
}

func reviewOne() error {
	_, orch, _, err := buildCore()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := orch.ReviewPullRequest(ctx, flagRepo, flagNumber, flagForce); err != nil {
		return fmt.Errorf("reviewing %s#%d: %w", flagRepo, flagNumber, err)
	}
	return nil
}
