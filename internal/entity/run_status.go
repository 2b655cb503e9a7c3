package entity

import "time"

// Run states.
const (
	RunPending   = "pending"
	RunRunning   = "running"
	RunCompleted = "completed"
	RunCancelled = "cancelled"
)

// RunStatus is a point-in-time view of a scrape run.
type RunStatus struct {
	State         string
	CurrentCounty string
	CurrentPage   string
	PagesTotal    int
	PagesDone     int
	PageErrors    int
	LinksFound    int
	Downloads     int
	StartedAt     *time.Time
	FinishedAt    *time.Time
}
