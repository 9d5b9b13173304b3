package status_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitpickbot/nitpick/internal/status"
)

func TestTracker_Counters(t *testing.T) {
	tr := status.NewTracker()

	tr.PRReviewed(2, 1)
	tr.PRReviewed(0, 0)
	tr.CycleComplete(120 * time.Millisecond)

	snap := tr.Snapshot()
	assert.Equal(t, 1, snap.Cycles)
	assert.Equal(t, 2, snap.PRsReviewed)
	assert.Equal(t, 2, snap.CommentsPosted)
	assert.Equal(t, 1, snap.Suppressed)
	assert.Equal(t, "120ms", snap.LastCycleDuration)
}

func TestHandler_HealthzBeforeAndAfterFirstCycle(t *testing.T) {
	tr := status.NewTracker()
	srv := httptest.NewServer(tr.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	tr.CycleComplete(time.Millisecond)

	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandler_StatusJSON(t *testing.T) {
	tr := status.NewTracker()
	tr.PRReviewed(3, 2)
	tr.CycleComplete(time.Second)

	srv := httptest.NewServer(tr.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var snap status.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, 3, snap.CommentsPosted)
	assert.Equal(t, 2, snap.Suppressed)
	assert.Equal(t, 1, snap.Cycles)
}
