package entity

import "time"

// Source row statuses.
const (
	StatusOK          = "OK"
	StatusNoFileLinks = "NO FILE LINKS FOUND"
	statusErrorPrefix = "ERROR: "
)

// ErrorStatus formats the status recorded for a seed page that failed.
func ErrorStatus(err error) string {
	return statusErrorPrefix + err.Error()
}

// SourceRow mirrors one line of the "Sources" sheet.
type SourceRow struct {
	County      string
	ListPageURL string
	ListFileURL string // empty for placeholder rows
	Status      string
}

// DownloadRow mirrors one line of the "Downloads" sheet.
type DownloadRow struct {
	County    string
	FileURL   string
	LocalPath string
}

// Report holds everything one run produced.
type Report struct {
	Sources     []SourceRow
	Downloads   []DownloadRow
	CountyCount int
	StartedAt   time.Time
	FinishedAt  time.Time
}

// LocalPathFor returns the downloaded path for fileURL, if any.
func (r *Report) LocalPathFor(county, fileURL string) (string, bool) {
	for _, d := range r.Downloads {
		if d.County == county && d.FileURL == fileURL {
			return d.LocalPath, true
		}
	}
	return "", false
}
