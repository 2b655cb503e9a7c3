package usecase

import (
	"sync"
	"time"

	"github.com/user/taxsale-crawler/internal/entity"
)

// StatusTracker holds the live progress of the current run.
// It is written by the scraper and read by the status endpoint.
type StatusTracker struct {
	mu     sync.RWMutex
	status entity.RunStatus
	now    func() time.Time
}

func NewStatusTracker() *StatusTracker {
	return &StatusTracker{
		status: entity.RunStatus{State: entity.RunPending},
		now:    time.Now,
	}
}

func (t *StatusTracker) start(pagesTotal int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	t.status = entity.RunStatus{
		State:      entity.RunRunning,
		PagesTotal: pagesTotal,
		StartedAt:  &now,
	}
}

func (t *StatusTracker) pageStarted(county, pageURL string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.CurrentCounty = county
	t.status.CurrentPage = pageURL
}

func (t *StatusTracker) pageDone(links int, failed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.PagesDone++
	t.status.LinksFound += links
	if failed {
		t.status.PageErrors++
	}
}

func (t *StatusTracker) downloaded() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.Downloads++
}

func (t *StatusTracker) finish(cancelled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	t.status.FinishedAt = &now
	t.status.CurrentCounty = ""
	t.status.CurrentPage = ""
	t.status.State = entity.RunCompleted
	if cancelled {
		t.status.State = entity.RunCancelled
	}
}

// Snapshot returns a copy of the current status.
func (t *StatusTracker) Snapshot() entity.RunStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}
