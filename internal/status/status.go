// Package status tracks run statistics and serves them over HTTP for
// container health checks. All state is in-process; it resets on restart like
// everything else in this system.
package status

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Tracker accumulates counters across polling cycles. Safe for concurrent use.
type Tracker struct {
	mu                sync.Mutex
	started           time.Time
	cycles            int
	prsReviewed       int
	commentsPosted    int
	suppressed        int
	lastCycleAt       time.Time
	lastCycleDuration time.Duration
}

// Snapshot is a point-in-time copy of the tracker's counters.
type Snapshot struct {
	UptimeSeconds     int64     `json:"uptime_seconds"`
	Cycles            int       `json:"cycles"`
	PRsReviewed       int       `json:"prs_reviewed"`
	CommentsPosted    int       `json:"comments_posted"`
	Suppressed        int       `json:"violations_suppressed"`
	LastCycleAt       time.Time `json:"last_cycle_at"`
	LastCycleDuration string    `json:"last_cycle_duration"`
}

// NewTracker returns a tracker with the start time set to now.
func NewTracker() *Tracker {
	return &Tracker{started: time.Now()}
}

// PRReviewed records the outcome of one reviewed pull request.
func (t *Tracker) PRReviewed(posted, suppressed int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.prsReviewed++
	t.commentsPosted += posted
	t.suppressed += suppressed
}

// CycleComplete records the end of a polling cycle.
func (t *Tracker) CycleComplete(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cycles++
	t.lastCycleAt = time.Now()
	t.lastCycleDuration = d
}

// Snapshot returns a copy of the current counters.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{
		UptimeSeconds:     int64(time.Since(t.started).Seconds()),
		Cycles:            t.cycles,
		PRsReviewed:       t.prsReviewed,
		CommentsPosted:    t.commentsPosted,
		Suppressed:        t.suppressed,
		LastCycleAt:       t.lastCycleAt,
		LastCycleDuration: t.lastCycleDuration.Round(time.Millisecond).String(),
	}
}

// Handler returns an http.Handler serving GET /healthz and GET /status.
// /healthz returns 503 until the first polling cycle has completed.
func (t *Tracker) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		if t.Snapshot().Cycles == 0 {
			http.Error(w, "starting", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET /status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(t.Snapshot()); err != nil {
			slog.Error("encoding status response", "error", err)
		}
	})

	return mux
}
