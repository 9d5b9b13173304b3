package application_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitpickbot/nitpick/internal/application"
	"github.com/nitpickbot/nitpick/internal/domain/model"
	"github.com/nitpickbot/nitpick/internal/domain/port/driven"
	"github.com/nitpickbot/nitpick/internal/status"
)

// stallingHost blocks every list call until its context is canceled,
// standing in for a hung TCP connection.
type stallingHost struct {
	driven.HostClient
}

func (stallingHost) ListOpenPullRequests(ctx context.Context, _ string) ([]model.PullRequestRef, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// classifiedHost returns an already-classified permanent error.
type classifiedHost struct {
	driven.HostClient
}

func (classifiedHost) ListOpenPullRequests(_ context.Context, repo string) ([]model.PullRequestRef, error) {
	return nil, fmt.Errorf("listing pull requests for %s: %w", repo, model.ErrPermanentRemote)
}

func TestWithRemoteTimeout_StalledCallIsCutShort(t *testing.T) {
	host := application.WithRemoteTimeout(stallingHost{}, 50*time.Millisecond)

	start := time.Now()
	_, err := host.ListOpenPullRequests(context.Background(), "octo/widgets")

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrTransientRemote, "a timed-out call must be retryable on a later cycle")
	assert.Less(t, time.Since(start), 5*time.Second, "the call must return once the deadline passes")
}

func TestWithRemoteTimeout_PreservesAdapterClassification(t *testing.T) {
	host := application.WithRemoteTimeout(classifiedHost{}, time.Second)

	_, err := host.ListOpenPullRequests(context.Background(), "octo/widgets")

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrPermanentRemote)
	assert.NotErrorIs(t, err, model.ErrTransientRemote)
}

func TestRunCycle_StalledListDoesNotHaltPolling(t *testing.T) {
	reg := testRegistry(t, nil)
	filter := application.NewFilter(nil, nil, "nitpick: ignore")
	o := application.NewOrchestrator(stallingHost{}, reg, filter, status.NewTracker(), application.OrchestratorConfig{
		Repositories:  []string{"octo/widgets"},
		PollInterval:  time.Minute,
		MaxComments:   10,
		ToolTimeout:   time.Second,
		RemoteTimeout: 20 * time.Millisecond,
	})

	done := make(chan struct{})
	go func() {
		o.RunCycle(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("cycle still blocked on a stalled remote call")
	}
}
