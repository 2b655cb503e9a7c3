package response

import "time"

// RunStatusResponse is a DTO for the live run status, mirroring entity.RunStatus.
type RunStatusResponse struct {
	State         string     `json:"state"` // "pending", "running", "completed", "cancelled"
	CurrentCounty string     `json:"current_county,omitempty"`
	CurrentPage   string     `json:"current_page,omitempty"`
	PagesTotal    int        `json:"pages_total"`
	PagesDone     int        `json:"pages_done"`
	PageErrors    int        `json:"page_errors"`
	LinksFound    int        `json:"links_found"`
	Downloads     int        `json:"downloads"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
}
