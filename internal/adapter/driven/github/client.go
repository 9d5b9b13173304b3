// Package github implements the HostClient port using the go-github library.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/nitpickbot/nitpick/internal/domain/model"
	"github.com/nitpickbot/nitpick/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.HostClient = (*Client)(nil)

// Client implements the driven.HostClient port against the GitHub API.
type Client struct {
	gh       *gh.Client
	username string
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
func NewClient(token, username string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	return &Client{gh: client, username: username}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, username string) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{gh: client, username: username}, nil
}

// ListOpenPullRequests retrieves all open pull requests for the repository.
// It handles pagination automatically and maps go-github types to domain
// model types.
func (c *Client) ListOpenPullRequests(ctx context.Context, repoFullName string) ([]model.PullRequestRef, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	opts := &gh.PullRequestListOptions{
		State:     "open",
		Sort:      "updated",
		Direction: "desc",
		ListOptions: gh.ListOptions{
			PerPage: 100,
		},
	}

	prs := []model.PullRequestRef{}
	for {
		page, resp, err := c.gh.PullRequests.List(ctx, owner, repo, opts)
		if err != nil {
			return nil, classify(fmt.Sprintf("listing pull requests for %s (page %d)", repoFullName, opts.Page), err)
		}

		logRateLimit(resp, repoFullName, opts.Page, len(page))

		for _, pr := range page {
			prs = append(prs, mapPullRequest(pr, repoFullName))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return prs, nil
}

// FetchPullRequest retrieves a single pull request regardless of state.
func (c *Client) FetchPullRequest(ctx context.Context, repoFullName string, number int) (*model.PullRequestRef, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	pr, resp, err := c.gh.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, classify(fmt.Sprintf("fetching pull request %s#%d", repoFullName, number), err)
	}

	logRateLimit(resp, repoFullName, 0, 1)

	ref := mapPullRequest(pr, repoFullName)
	return &ref, nil
}

// FetchDiff retrieves the changed files of a pull request. Added line numbers
// are parsed from each file's unified-diff patch; files without a patch (for
// example binary files) carry an empty added-line set.
func (c *Client) FetchDiff(ctx context.Context, repoFullName string, number int) ([]model.DiffFile, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	opts := &gh.ListOptions{PerPage: 100}
	files := []model.DiffFile{}

	for {
		page, resp, err := c.gh.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, classify(fmt.Sprintf("listing files for %s#%d (page %d)", repoFullName, number, opts.Page), err)
		}

		for _, f := range page {
			files = append(files, model.DiffFile{
				Path:       f.GetFilename(),
				Status:     f.GetStatus(),
				Patch:      f.GetPatch(),
				AddedLines: addedLines(f.GetPatch()),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return files, nil
}

// ListReviewComments retrieves all inline review comments for a pull request.
func (c *Client) ListReviewComments(ctx context.Context, repoFullName string, number int) ([]model.ExistingComment, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	opts := &gh.PullRequestListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	comments := []model.ExistingComment{}
	for {
		page, resp, err := c.gh.PullRequests.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, classify(fmt.Sprintf("listing review comments for %s#%d (page %d)", repoFullName, number, opts.Page), err)
		}

		for _, cm := range page {
			comments = append(comments, model.ExistingComment{
				FilePath: cm.GetPath(),
				Line:     cm.GetLine(),
				Body:     cm.GetBody(),
				Author:   cm.GetUser().GetLogin(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return comments, nil
}

// FetchFileContent retrieves the contents of a file at the given ref.
func (c *Client) FetchFileContent(ctx context.Context, repoFullName, ref, path string) ([]byte, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	fc, _, resp, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, &gh.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		return nil, classify(fmt.Sprintf("fetching %s@%s:%s", repoFullName, ref, path), err)
	}
	if fc == nil {
		return nil, fmt.Errorf("%s:%s is not a file", repoFullName, path)
	}

	logRateLimit(resp, repoFullName+"/contents", 0, 1)

	content, err := fc.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decoding %s:%s: %w", repoFullName, path, err)
	}
	return []byte(content), nil
}

// PostReviewComment creates an inline review comment attached to the new side
// of the diff.
func (c *Client) PostReviewComment(ctx context.Context, repoFullName string, number int, comment driven.DraftComment) error {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return err
	}

	prComment := &gh.PullRequestComment{
		Body:     gh.Ptr(comment.Body),
		Path:     gh.Ptr(comment.Path),
		Line:     gh.Ptr(comment.Line),
		Side:     gh.Ptr("RIGHT"),
		CommitID: gh.Ptr(comment.CommitSHA),
	}

	_, resp, err := c.gh.PullRequests.CreateComment(ctx, owner, repo, number, prComment)
	if err != nil {
		return classify(fmt.Sprintf("posting comment on %s#%d (%s:%d)", repoFullName, number, comment.Path, comment.Line), err)
	}

	logRateLimit(resp, repoFullName+"/create-comment", 0, 1)
	return nil
}

// CreateCommitStatus sets a commit status on the given SHA under the bot's
// status context.
func (c *Client) CreateCommitStatus(ctx context.Context, repoFullName, sha, state, description string) error {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return err
	}

	status := gh.RepoStatus{
		State:       gh.Ptr(state),
		Description: gh.Ptr(description),
		Context:     gh.Ptr("nitpick"),
	}

	_, resp, err := c.gh.Repositories.CreateStatus(ctx, owner, repo, sha, status)
	if err != nil {
		return classify(fmt.Sprintf("setting commit status on %s@%s", repoFullName, sha), err)
	}

	logRateLimit(resp, repoFullName+"/create-status", 0, 1)
	return nil
}

func mapPullRequest(pr *gh.PullRequest, repoFullName string) model.PullRequestRef {
	return model.PullRequestRef{
		RepoFullName: repoFullName,
		Number:       pr.GetNumber(),
		Title:        pr.GetTitle(),
		Author:       pr.GetUser().GetLogin(),
		Description:  pr.GetBody(),
		IsOpen:       pr.GetState() == "open",
		HeadSHA:      pr.GetHead().GetSHA(),
		URL:          pr.GetHTMLURL(),
		UpdatedAt:    pr.GetUpdatedAt().Time,
	}
}

func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}
