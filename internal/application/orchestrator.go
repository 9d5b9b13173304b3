package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/nitpickbot/nitpick/internal/analyzer"
	"github.com/nitpickbot/nitpick/internal/domain/model"
	"github.com/nitpickbot/nitpick/internal/domain/port/driven"
	"github.com/nitpickbot/nitpick/internal/status"
)

// OrchestratorConfig is the immutable configuration slice the orchestrator
// needs. It is fixed at construction; no ambient mutable state.
type OrchestratorConfig struct {
	Repositories  []string
	PollInterval  time.Duration
	MaxComments   int
	ExcludePaths  []string // path.Match globs, matched against the full path and base name
	ToolTimeout   time.Duration
	RemoteTimeout time.Duration // per-call deadline on host client calls; 0 disables
	Debug         bool          // log would-be comments instead of posting
}

// shutdownGrace is how long an in-flight pull request may keep using the
// remote after the run context is canceled.
const shutdownGrace = 30 * time.Second

// Orchestrator runs the review loop: discover eligible pull requests, dispatch
// changed files to analyzers, reconcile against existing comments, and post
// what is new. All pull request state is re-derived from the remote each
// cycle; nothing survives a cycle boundary except the disabled-repository set.
type Orchestrator struct {
	host     driven.HostClient
	registry *analyzer.Registry
	filter   *Filter
	tracker  *status.Tracker
	cfg      OrchestratorConfig

	// Repositories that failed with a permanent error are skipped for the
	// remainder of the run. Touched only from the polling goroutine.
	disabled map[string]bool
}

// NewOrchestrator creates an Orchestrator. The registry must already be frozen.
func NewOrchestrator(host driven.HostClient, registry *analyzer.Registry, filter *Filter, tracker *status.Tracker, cfg OrchestratorConfig) *Orchestrator {
	if cfg.RemoteTimeout > 0 {
		host = WithRemoteTimeout(host, cfg.RemoteTimeout)
	}
	return &Orchestrator{
		host:     host,
		registry: registry,
		filter:   filter,
		tracker:  tracker,
		cfg:      cfg,
		disabled: make(map[string]bool),
	}
}

// Start begins the polling loop. It runs an immediate cycle, then polls on
// the configured interval. Start blocks until the context is canceled; the
// in-flight pull request is finished before returning.
func (o *Orchestrator) Start(ctx context.Context) {
	o.RunCycle(ctx)

	ticker := time.NewTicker(o.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("orchestrator stopped")
			return
		case <-ticker.C:
			o.RunCycle(ctx)
		}
	}
}

// RunCycle executes one full pass over all configured repositories. Errors
// are contained per repository; a cycle never fails as a whole.
func (o *Orchestrator) RunCycle(ctx context.Context) {
	start := time.Now()

	var cycleErrors int
	for _, repo := range o.cfg.Repositories {
		if ctx.Err() != nil {
			return
		}
		if o.disabled[repo] {
			continue
		}

		if err := o.pollRepo(ctx, repo); err != nil {
			cycleErrors++
			if errors.Is(err, model.ErrPermanentRemote) {
				o.disabled[repo] = true
				slog.Error("repository disabled for remainder of run", "repo", repo, "error", err)
			} else {
				slog.Error("repo poll failed", "repo", repo, "error", err)
			}
		}
	}

	o.tracker.CycleComplete(time.Since(start))
	slog.Info("poll cycle complete",
		"repos", len(o.cfg.Repositories),
		"errors", cycleErrors,
		"duration", time.Since(start).Round(time.Millisecond),
	)
}

// pollRepo discovers and reviews the eligible open pull requests of a single
// repository. Per-PR failures are contained here; only permanent remote
// errors propagate so the caller can disable the repository.
func (o *Orchestrator) pollRepo(ctx context.Context, repo string) error {
	prs, err := o.host.ListOpenPullRequests(ctx, repo)
	if err != nil {
		return err
	}

	var reviewed, skipped int
	for _, pr := range prs {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if ok, reason := o.filter.IsEligible(pr, false); !ok {
			skipped++
			slog.Debug("pull request skipped", "repo", repo, "pr", pr.Number, "reason", reason)
			continue
		}

		if err := o.reviewPR(ctx, pr); err != nil {
			if errors.Is(err, model.ErrPermanentRemote) {
				return err
			}
			slog.Error("pull request abandoned for this cycle", "repo", repo, "pr", pr.Number, "error", err)
			continue
		}
		reviewed++
	}

	slog.Info("repo polled",
		"repo", repo,
		"open", len(prs),
		"reviewed", reviewed,
		"skipped", skipped,
	)
	return nil
}

// ReviewPullRequest runs the review pipeline for one explicit pull request,
// bypassing repository enumeration. force skips the open-state check only;
// author rules and the ignore marker still apply.
func (o *Orchestrator) ReviewPullRequest(ctx context.Context, repo string, number int, force bool) error {
	pr, err := o.host.FetchPullRequest(ctx, repo, number)
	if err != nil {
		return err
	}

	if ok, reason := o.filter.IsEligible(*pr, force); !ok {
		return fmt.Errorf("%s#%d is not eligible for review: %s", repo, number, reason)
	}

	return o.reviewPR(ctx, *pr)
}

// reviewPR runs the per-PR pipeline: fetch diff and existing comments, analyze
// changed files, reconcile, post. A remote failure on the PR-level fetches
// abandons the PR; a per-file failure, remote or analyzer, drops only that
// file's findings. Shutdown mid-review does not abort the pull request: the
// whole pipeline runs on a context that survives the run context's
// cancellation for a grace period.
func (o *Orchestrator) reviewPR(ctx context.Context, pr model.PullRequestRef) error {
	prCtx, cancel := graceDetach(ctx, shutdownGrace)
	defer cancel()

	files, err := o.host.FetchDiff(prCtx, pr.RepoFullName, pr.Number)
	if err != nil {
		return err
	}

	existing, err := o.host.ListReviewComments(prCtx, pr.RepoFullName, pr.Number)
	if err != nil {
		return err
	}

	var candidates []model.Violation
	cleanPass := true
	for _, f := range files {
		violations, err := o.analyzeFile(prCtx, pr, f)
		if err == nil {
			candidates = append(candidates, violations...)
			continue
		}
		cleanPass = false
		slog.Warn("file analysis failed",
			"repo", pr.RepoFullName,
			"pr", pr.Number,
			"file", f.Path,
			"error", err,
		)
	}

	remaining := o.cfg.MaxComments - CountBotComments(existing)
	toPost, suppressed := Reconcile(existing, candidates, remaining)

	posted := 0
	for _, v := range toPost {
		if err := o.postComment(prCtx, pr, v); err != nil {
			o.tracker.PRReviewed(posted, suppressed)
			return err
		}
		posted++
	}

	if suppressed > 0 {
		slog.Info("violations suppressed over comment budget",
			"repo", pr.RepoFullName,
			"pr", pr.Number,
			"suppressed", suppressed,
			"budget", o.cfg.MaxComments,
		)
	}
	o.tracker.PRReviewed(posted, suppressed)

	// Only a fully clean pass may report an authoritative commit status;
	// partial results must not show up as "approves!".
	if cleanPass {
		o.setCommitStatus(prCtx, pr, len(candidates))
	}
	return nil
}

// graceDetach returns a context that ignores the parent's cancellation for up
// to grace afterwards, so in-flight work can finish during shutdown without
// letting a canceled run hang forever.
func graceDetach(parent context.Context, grace time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	stop := context.AfterFunc(parent, func() {
		time.AfterFunc(grace, cancel)
	})
	return ctx, func() {
		stop()
		cancel()
	}
}

// analyzeFile dispatches one changed file to its analyzers and returns the
// violations restricted to the file's added lines.
func (o *Orchestrator) analyzeFile(ctx context.Context, pr model.PullRequestRef, f model.DiffFile) ([]model.Violation, error) {
	if f.Status == "removed" || f.Patch == "" {
		slog.Debug("file ignored", "repo", pr.RepoFullName, "pr", pr.Number, "file", f.Path, "status", f.Status)
		return nil, nil
	}
	if o.excluded(f.Path) {
		slog.Debug("file excluded by config", "repo", pr.RepoFullName, "pr", pr.Number, "file", f.Path)
		return nil, nil
	}

	analyzers := o.registry.Resolve(path.Ext(f.Path))
	if len(analyzers) == 0 {
		return nil, nil
	}

	content, err := o.host.FetchFileContent(ctx, pr.RepoFullName, pr.HeadSHA, f.Path)
	if err != nil {
		return nil, err
	}

	var out []model.Violation
	for _, a := range analyzers {
		violations, err := o.runAnalyzer(ctx, a, f.Path, content)
		if err != nil {
			return nil, &model.AdapterError{Tool: a.Name(), Path: f.Path, Err: err}
		}
		for _, v := range violations {
			if f.LineAdded(v.Line) {
				out = append(out, v)
			}
		}
	}
	return out, nil
}

func (o *Orchestrator) runAnalyzer(ctx context.Context, a driven.Analyzer, filePath string, content []byte) ([]model.Violation, error) {
	toolCtx, cancel := context.WithTimeout(ctx, o.cfg.ToolTimeout)
	defer cancel()
	return a.Analyze(toolCtx, filePath, content)
}

func (o *Orchestrator) postComment(ctx context.Context, pr model.PullRequestRef, v model.Violation) error {
	body := FormatCommentBody(v)

	if o.cfg.Debug {
		slog.Debug("would post comment",
			"repo", pr.RepoFullName,
			"pr", pr.Number,
			"file", v.FilePath,
			"line", v.Line,
			"body", body,
		)
		return nil
	}

	err := o.host.PostReviewComment(ctx, pr.RepoFullName, pr.Number, driven.DraftComment{
		Path:      v.FilePath,
		Line:      v.Line,
		Body:      body,
		CommitSHA: pr.HeadSHA,
	})
	if err != nil {
		return err
	}

	slog.Info("comment posted",
		"repo", pr.RepoFullName,
		"pr", pr.Number,
		"file", v.FilePath,
		"line", v.Line,
		"tool", v.Tool,
	)
	return nil
}

// setCommitStatus reports the pass outcome on the head SHA. Status failures
// are logged and swallowed; the review itself already succeeded.
func (o *Orchestrator) setCommitStatus(ctx context.Context, pr model.PullRequestRef, issueCount int) {
	state := "success"
	description := "approves!"
	if issueCount > 0 {
		state = "error"
		description = fmt.Sprintf("found %s", pluralize(issueCount, "issue"))
	}

	if o.cfg.Debug {
		slog.Debug("would set commit status", "repo", pr.RepoFullName, "pr", pr.Number, "state", state, "description", description)
		return
	}

	if err := o.host.CreateCommitStatus(ctx, pr.RepoFullName, pr.HeadSHA, state, description); err != nil {
		slog.Warn("commit status update failed", "repo", pr.RepoFullName, "pr", pr.Number, "error", err)
	}
}

func (o *Orchestrator) excluded(filePath string) bool {
	for _, glob := range o.cfg.ExcludePaths {
		if ok, _ := path.Match(glob, filePath); ok {
			return true
		}
		if ok, _ := path.Match(glob, path.Base(filePath)); ok {
			return true
		}
	}
	return false
}

func pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
