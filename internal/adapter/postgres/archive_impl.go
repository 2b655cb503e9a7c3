package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/taxsale-crawler/internal/entity"
	"github.com/user/taxsale-crawler/pkg/utils"
)

const schema = `
CREATE TABLE IF NOT EXISTS scrape_runs (
	id             BIGSERIAL PRIMARY KEY,
	started_at     TIMESTAMPTZ NOT NULL,
	finished_at    TIMESTAMPTZ NOT NULL,
	county_count   INTEGER NOT NULL,
	source_count   INTEGER NOT NULL,
	download_count INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS scrape_sources (
	id            BIGSERIAL PRIMARY KEY,
	run_id        BIGINT NOT NULL REFERENCES scrape_runs(id) ON DELETE CASCADE,
	county        TEXT NOT NULL,
	list_page_url TEXT NOT NULL,
	list_file_url TEXT NOT NULL,
	status        TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS scrape_downloads (
	id         BIGSERIAL PRIMARY KEY,
	run_id     BIGINT NOT NULL REFERENCES scrape_runs(id) ON DELETE CASCADE,
	county     TEXT NOT NULL,
	file_url   TEXT NOT NULL,
	local_path TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS list_files (
	url_hash      TEXT PRIMARY KEY,
	county        TEXT NOT NULL,
	file_url      TEXT NOT NULL,
	first_seen_at TIMESTAMPTZ NOT NULL,
	last_seen_at  TIMESTAMPTZ NOT NULL,
	seen_count    INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS page_failures (
	url_hash        TEXT PRIMARY KEY,
	county          TEXT NOT NULL,
	list_page_url   TEXT NOT NULL,
	last_status     TEXT NOT NULL,
	last_failed_at  TIMESTAMPTZ NOT NULL,
	failure_count   INTEGER NOT NULL DEFAULT 1
);
`

const (
	insertSourceSQL = `
		INSERT INTO scrape_sources (run_id, county, list_page_url, list_file_url, status)
		VALUES ($1, $2, $3, $4, $5);`
	insertDownloadSQL = `
		INSERT INTO scrape_downloads (run_id, county, file_url, local_path)
		VALUES ($1, $2, $3, $4);`
	// A list file seen again keeps its first_seen_at.
	upsertListFileSQL = `
		INSERT INTO list_files (url_hash, county, file_url, first_seen_at, last_seen_at, seen_count)
		VALUES ($1, $2, $3, $4, $4, 1)
		ON CONFLICT (url_hash) DO UPDATE SET
			last_seen_at = EXCLUDED.last_seen_at,
			seen_count = list_files.seen_count + 1;`
)

// ArchiveSink appends every run to PostgreSQL.
type ArchiveSink struct {
	db *pgxpool.Pool
}

// NewArchiveSink creates a new instance of ArchiveSink.
func NewArchiveSink(db *pgxpool.Pool) *ArchiveSink {
	return &ArchiveSink{db: db}
}

func (s *ArchiveSink) Name() string { return "postgres" }

// EnsureSchema creates the archive tables if they are missing.
func (s *ArchiveSink) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create archive schema: %w", err)
	}
	return nil
}

// Publish stores the run and all of its rows in a single transaction.
func (s *ArchiveSink) Publish(ctx context.Context, report *entity.Report) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var runID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO scrape_runs (started_at, finished_at, county_count, source_count, download_count)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id;`,
		report.StartedAt,
		report.FinishedAt,
		report.CountyCount,
		len(report.Sources),
		len(report.Downloads),
	).Scan(&runID)
	if err != nil {
		return fmt.Errorf("insert scrape run: %w", err)
	}

	batch := buildBatch(runID, report)
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("archive run %d rows: %w", runID, err)
	}
	return tx.Commit(ctx)
}

// buildBatch queues every row of the report against runID.
func buildBatch(runID int64, report *entity.Report) *pgx.Batch {
	batch := &pgx.Batch{}
	recovered := make(map[string]bool)
	for _, row := range report.Sources {
		batch.Queue(insertSourceSQL, runID, row.County, row.ListPageURL, row.ListFileURL, row.Status)
		if row.ListFileURL != "" {
			batch.Queue(upsertListFileSQL, utils.HashURL(row.ListFileURL), row.County, row.ListFileURL, report.FinishedAt)
		}
		if isPageError(row) {
			queuePageFailure(batch, row, report.FinishedAt)
			continue
		}
		if !recovered[row.ListPageURL] {
			recovered[row.ListPageURL] = true
			queuePageRecovered(batch, row.ListPageURL)
		}
	}
	for _, d := range report.Downloads {
		batch.Queue(insertDownloadSQL, runID, d.County, d.FileURL, d.LocalPath)
	}
	return batch
}

func isPageError(row entity.SourceRow) bool {
	return row.ListFileURL == "" && row.Status != entity.StatusNoFileLinks
}
