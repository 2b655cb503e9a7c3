package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/user/taxsale-crawler/internal/entity"
	"github.com/user/taxsale-crawler/pkg/utils"
)

// PageFailure is one seed page that has been failing across runs.
type PageFailure struct {
	County       string
	ListPageURL  string
	LastStatus   string
	LastFailedAt time.Time
	FailureCount int
}

// queuePageFailure records a failed seed page.
// It increments failure_count on conflict.
func queuePageFailure(batch *pgx.Batch, row entity.SourceRow, at time.Time) {
	batch.Queue(`
		INSERT INTO page_failures (url_hash, county, list_page_url, last_status, last_failed_at, failure_count)
		VALUES ($1, $2, $3, $4, $5, 1)
		ON CONFLICT (url_hash) DO UPDATE SET
			last_status = EXCLUDED.last_status,
			last_failed_at = EXCLUDED.last_failed_at,
			failure_count = page_failures.failure_count + 1;`,
		utils.HashURL(row.ListPageURL),
		row.County,
		row.ListPageURL,
		row.Status,
		at,
	)
}

// queuePageRecovered forgets the failure history of a page that loaded.
func queuePageRecovered(batch *pgx.Batch, pageURL string) {
	batch.Queue(`DELETE FROM page_failures WHERE url_hash = $1;`, utils.HashURL(pageURL))
}

// FailingPages retrieves seed pages that failed at least minCount runs in a row.
func (s *ArchiveSink) FailingPages(ctx context.Context, minCount int) ([]*PageFailure, error) {
	query := `
		SELECT county, list_page_url, last_status, last_failed_at, failure_count
		FROM page_failures
		WHERE failure_count >= $1
		ORDER BY failure_count DESC, county ASC;
	`
	rows, err := s.db.Query(ctx, query, minCount)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*PageFailure
	for rows.Next() {
		var f PageFailure
		if err := rows.Scan(&f.County, &f.ListPageURL, &f.LastStatus, &f.LastFailedAt, &f.FailureCount); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}
