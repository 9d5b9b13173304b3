package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	githubadapter "github.com/nitpickbot/nitpick/internal/adapter/driven/github"
	"github.com/nitpickbot/nitpick/internal/analyzer"
	"github.com/nitpickbot/nitpick/internal/application"
	"github.com/nitpickbot/nitpick/internal/config"
	"github.com/nitpickbot/nitpick/internal/status"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Poll configured repositories and review open pull requests",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true
		if err := runDaemon(); err != nil {
			exitCode = ExitRuntimeError
			if errors.Is(err, errConfig) {
				exitCode = ExitConfigError
			}
			return err
		}
		return nil
	},
}

// errConfig marks configuration failures so the exit code can distinguish
// them from runtime failures.
var errConfig = errors.New("configuration error")

func runDaemon() error {
	cfg, orch, tracker, err := buildCore()
	if err != nil {
		return err
	}
	if len(cfg.Repositories) == 0 {
		return errors.Join(errConfig, errors.New("at least one repository must be configured"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           tracker.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("status server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("status server error", "error", err)
		}
	}()

	slog.Info("nitpick started",
		"repositories", cfg.Repositories,
		"poll_interval", cfg.PollInterval,
		"max_comments", cfg.MaxComments,
		"debug", cfg.Debug,
	)

	// Blocks until the context is canceled; the in-flight PR finishes first.
	orch.Start(ctx)

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("status server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// buildCore loads configuration and wires the orchestrator with its
// collaborators. Shared by the run and review commands.
func buildCore() (*config.Config, *application.Orchestrator, *status.Tracker, error) {
	setupLogging(flagDebug)

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, nil, errors.Join(errConfig, err)
	}
	cfg.Debug = cfg.Debug || flagDebug

	registry, err := analyzer.BuildRegistry(cfg.Handlers)
	if err != nil {
		return nil, nil, nil, errors.Join(errConfig, err)
	}

	host := githubadapter.NewClient(cfg.GitHubToken, cfg.GitHubUsername)
	filter := application.NewFilter(cfg.UserWhitelist, cfg.UserBlacklist, cfg.IgnoreMarker)
	tracker := status.NewTracker()

	orch := application.NewOrchestrator(host, registry, filter, tracker, application.OrchestratorConfig{
		Repositories:  cfg.Repositories,
		PollInterval:  cfg.PollInterval,
		MaxComments:   cfg.MaxComments,
		ExcludePaths:  cfg.ExcludePaths,
		ToolTimeout:   cfg.ToolTimeout,
		RemoteTimeout: cfg.RemoteTimeout,
		Debug:         cfg.Debug,
	})
	return cfg, orch, tracker, nil
}
