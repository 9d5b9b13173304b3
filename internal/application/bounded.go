package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nitpickbot/nitpick/internal/domain/model"
	"github.com/nitpickbot/nitpick/internal/domain/port/driven"
)

// WithRemoteTimeout wraps a host client so every call carries its own
// deadline. A call that outlives it fails as a transient remote error; a
// stalled connection must never halt the polling loop.
func WithRemoteTimeout(host driven.HostClient, timeout time.Duration) driven.HostClient {
	return &boundedHost{inner: host, timeout: timeout}
}

type boundedHost struct {
	inner   driven.HostClient
	timeout time.Duration
}

func (h *boundedHost) ListOpenPullRequests(ctx context.Context, repoFullName string) ([]model.PullRequestRef, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	prs, err := h.inner.ListOpenPullRequests(ctx, repoFullName)
	return prs, h.classifyTimeout(err)
}

func (h *boundedHost) FetchPullRequest(ctx context.Context, repoFullName string, number int) (*model.PullRequestRef, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	pr, err := h.inner.FetchPullRequest(ctx, repoFullName, number)
	return pr, h.classifyTimeout(err)
}

func (h *boundedHost) FetchDiff(ctx context.Context, repoFullName string, number int) ([]model.DiffFile, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	files, err := h.inner.FetchDiff(ctx, repoFullName, number)
	return files, h.classifyTimeout(err)
}

func (h *boundedHost) ListReviewComments(ctx context.Context, repoFullName string, number int) ([]model.ExistingComment, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	comments, err := h.inner.ListReviewComments(ctx, repoFullName, number)
	return comments, h.classifyTimeout(err)
}

func (h *boundedHost) FetchFileContent(ctx context.Context, repoFullName, ref, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	content, err := h.inner.FetchFileContent(ctx, repoFullName, ref, path)
	return content, h.classifyTimeout(err)
}

func (h *boundedHost) PostReviewComment(ctx context.Context, repoFullName string, number int, comment driven.DraftComment) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return h.classifyTimeout(h.inner.PostReviewComment(ctx, repoFullName, number, comment))
}

func (h *boundedHost) CreateCommitStatus(ctx context.Context, repoFullName, sha, state, description string) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return h.classifyTimeout(h.inner.CreateCommitStatus(ctx, repoFullName, sha, state, description))
}

// classifyTimeout marks a deadline-exceeded failure as transient so the
// orchestrator retries it on a later cycle. Errors the adapter already
// classified pass through unchanged.
func (h *boundedHost) classifyTimeout(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, model.ErrTransientRemote) || errors.Is(err, model.ErrPermanentRemote) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("remote call exceeded %s: %w: %w", h.timeout, model.ErrTransientRemote, err)
	}
	return err
}
