package usecase

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/user/taxsale-crawler/internal/entity"
	"github.com/user/taxsale-crawler/internal/repository"
	"github.com/user/taxsale-crawler/pkg/metrics"
	"go.uber.org/zap"
)

// Scraper defines the interface for one crawl over all counties.
type Scraper interface {
	Run(ctx context.Context, counties []entity.County) *entity.Report
}

type scraperUseCase struct {
	fetcher      repository.PageFetcher
	downloader   repository.Downloader
	downloadsDir string
	metrics      *metrics.Metrics
	progress     io.Writer
	tracker      *StatusTracker
	logger       *zap.Logger
	now          func() time.Time
}

// NewScraperUseCase builds the scraper over the given fetcher and downloader.
// Progress lines are written to progress; live counters go to tracker.
func NewScraperUseCase(
	fetcher repository.PageFetcher,
	downloader repository.Downloader,
	downloadsDir string,
	m *metrics.Metrics,
	tracker *StatusTracker,
	progress io.Writer,
	logger *zap.Logger,
) Scraper {
	return &scraperUseCase{
		fetcher:      fetcher,
		downloader:   downloader,
		downloadsDir: downloadsDir,
		metrics:      m,
		progress:     progress,
		tracker:      tracker,
		logger:       logger,
		now:          time.Now,
	}
}

// Run visits every seed page of every county in order. Per-page failures are
// recorded as rows and never stop the run; a cancelled context stops it
// between pages and the partial report is returned.
func (uc *scraperUseCase) Run(ctx context.Context, counties []entity.County) *entity.Report {
	report := &entity.Report{
		CountyCount: len(counties),
		StartedAt:   uc.now(),
	}
	pages := 0
	for _, county := range counties {
		pages += len(county.SeedPages)
	}
	uc.tracker.start(pages)

	for _, county := range counties {
		for _, pageURL := range county.SeedPages {
			if err := ctx.Err(); err != nil {
				uc.logger.Warn("run cancelled, skipping remaining pages", zap.Error(err))
				report.FinishedAt = uc.now()
				uc.tracker.finish(true)
				return report
			}
			uc.processPage(ctx, report, county.Name, pageURL)
		}
	}

	report.FinishedAt = uc.now()
	uc.tracker.finish(false)
	return report
}

func (uc *scraperUseCase) processPage(ctx context.Context, report *entity.Report, county, pageURL string) {
	var (
		found  int
		failed bool
	)
	uc.tracker.pageStarted(county, pageURL)
	defer func() {
		if r := recover(); r != nil {
			failed = true
			uc.recordPageError(report, county, pageURL, fmt.Errorf("panic: %v", r))
		}
		uc.tracker.pageDone(found, failed)
	}()

	fmt.Fprintf(uc.progress, "Processing %s: %s\n", county, pageURL)

	start := uc.now()
	anchors, err := uc.fetcher.FetchLinks(ctx, pageURL)
	uc.metrics.ObserveFetch(uc.now().Sub(start))
	if err != nil {
		failed = true
		uc.recordPageError(report, county, pageURL, err)
		return
	}

	links := FilterListLinks(anchors)
	if len(links) == 0 {
		report.Sources = append(report.Sources, entity.SourceRow{
			County:      county,
			ListPageURL: pageURL,
			Status:      entity.StatusNoFileLinks,
		})
		uc.metrics.IncPage(metrics.PageEmpty)
		uc.logger.Info("no list links found", zap.String("county", county), zap.String("url", pageURL))
		return
	}

	found = len(links)
	uc.metrics.IncPage(metrics.PageOK)
	uc.metrics.AddLinks(found)
	uc.logger.Info("list links found",
		zap.String("county", county),
		zap.String("url", pageURL),
		zap.Int("anchors", len(anchors)),
		zap.Int("links", len(links)),
	)

	for _, link := range links {
		report.Sources = append(report.Sources, entity.SourceRow{
			County:      county,
			ListPageURL: pageURL,
			ListFileURL: link,
			Status:      entity.StatusOK,
		})
		if !HasListFileExtension(link) {
			continue
		}
		uc.download(ctx, report, county, link)
	}
}

// download saves one list file. Failures are logged and leave no row behind.
func (uc *scraperUseCase) download(ctx context.Context, report *entity.Report, county, link string) {
	path, err := uc.downloader.Download(ctx, link, uc.downloadsDir)
	if err != nil {
		uc.metrics.IncDownload(metrics.DownloadFailure)
		fmt.Fprintf(uc.progress, "Failed to download %s: %v\n", link, err)
		uc.logger.Warn("download failed", zap.String("county", county), zap.String("url", link), zap.Error(err))
		return
	}
	uc.metrics.IncDownload(metrics.DownloadSuccess)
	uc.tracker.downloaded()
	report.Downloads = append(report.Downloads, entity.DownloadRow{
		County:    county,
		FileURL:   link,
		LocalPath: path,
	})
}

func (uc *scraperUseCase) recordPageError(report *entity.Report, county, pageURL string, err error) {
	report.Sources = append(report.Sources, entity.SourceRow{
		County:      county,
		ListPageURL: pageURL,
		Status:      entity.ErrorStatus(err),
	})
	uc.metrics.IncPage(metrics.PageError)
	fmt.Fprintf(uc.progress, "Error processing %s: %v\n", county, err)
	uc.logger.Error("seed page failed", zap.String("county", county), zap.String("url", pageURL), zap.Error(err))
}
