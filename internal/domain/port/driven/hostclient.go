package driven

import (
	"context"

	"github.com/nitpickbot/nitpick/internal/domain/model"
)

// DraftComment is a review comment to be created on a pull request.
type DraftComment struct {
	Path      string // File path relative to repository root.
	Line      int    // New-file line number the comment attaches to.
	Body      string
	CommitSHA string // Head SHA the comment is anchored to.
}

// HostClient defines the driven port for the code-hosting API. Every method
// wraps failures with model.ErrTransientRemote or model.ErrPermanentRemote
// so the orchestrator can apply its containment policy.
type HostClient interface {
	// ListOpenPullRequests returns all open pull requests for a repository.
	ListOpenPullRequests(ctx context.Context, repoFullName string) ([]model.PullRequestRef, error)

	// FetchPullRequest returns a single pull request regardless of state.
	FetchPullRequest(ctx context.Context, repoFullName string, number int) (*model.PullRequestRef, error)

	// FetchDiff returns the changed files of a pull request, including the
	// set of added line numbers parsed from each file's patch.
	FetchDiff(ctx context.Context, repoFullName string, number int) ([]model.DiffFile, error)

	// ListReviewComments returns all inline review comments on a pull request.
	ListReviewComments(ctx context.Context, repoFullName string, number int) ([]model.ExistingComment, error)

	// FetchFileContent returns the contents of a file at the given ref.
	FetchFileContent(ctx context.Context, repoFullName, ref, path string) ([]byte, error)

	// PostReviewComment creates an inline review comment.
	PostReviewComment(ctx context.Context, repoFullName string, number int, comment DraftComment) error

	// CreateCommitStatus sets a commit status on the given SHA.
	// state must be one of "success", "error", "failure", or "pending".
	CreateCommitStatus(ctx context.Context, repoFullName, sha, state, description string) error
}
