package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/user/taxsale-crawler/internal/adapter/chromedp_fetcher"
	"github.com/user/taxsale-crawler/internal/adapter/countyfile"
	"github.com/user/taxsale-crawler/internal/adapter/excel"
	"github.com/user/taxsale-crawler/internal/adapter/http_fetcher"
	"github.com/user/taxsale-crawler/internal/adapter/httpdownload"
	"github.com/user/taxsale-crawler/internal/adapter/postgres"
	redis_adapter "github.com/user/taxsale-crawler/internal/adapter/redis"
	"github.com/user/taxsale-crawler/internal/delivery/http/handler"
	"github.com/user/taxsale-crawler/internal/delivery/http/router"
	"github.com/user/taxsale-crawler/internal/entity"
	"github.com/user/taxsale-crawler/internal/repository"
	"github.com/user/taxsale-crawler/internal/usecase"
	"github.com/user/taxsale-crawler/pkg/config"
	"github.com/user/taxsale-crawler/pkg/metrics"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// runScrape performs one full run: load counties, crawl, write the workbook,
// then hand the report to the optional sinks.
func runScrape(ctx context.Context, cfg *config.Config, out io.Writer, log *zap.Logger) error {
	var countyRepo repository.CountyRepository = countyfile.NewCountyRepo(cfg.CountiesFile)
	counties, err := countyRepo.Load()
	if err != nil {
		return fmt.Errorf("load counties: %w", err)
	}
	log.Info("Counties loaded", zap.String("file", cfg.CountiesFile), zap.Int("count", counties.Len()))
	fmt.Fprintf(out, "Starting scrape for %d counties...\n", counties.Len())

	m := metrics.New()
	tracker := usecase.NewStatusTracker()

	if cfg.MetricsAddr != "" {
		stopServer := startStatusServer(cfg.MetricsAddr, tracker, m, log)
		defer stopServer()
	}

	scraper := usecase.NewScraperUseCase(
		newFetcher(cfg, log),
		httpdownload.NewDownloader(cfg.DownloadTimeout, cfg.UserAgent, log),
		cfg.DownloadsDir,
		m,
		tracker,
		out,
		log,
	)
	report := scraper.Run(ctx, counties.Counties())

	var writer repository.ReportWriter = excel.NewReportWriter(cfg.OutputFile)
	if err := writer.Write(ctx, report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(out, "Wrote %s\n", cfg.OutputFile)

	// Sinks still run after a cancelled crawl; give them a fresh context.
	sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Minute)
	defer cancel()
	publish(sinkCtx, cfg, report, log)

	if cfg.MetricsTextfile != "" {
		if err := m.WriteTextfile(cfg.MetricsTextfile); err != nil {
			log.Error("Failed to write metrics textfile", zap.String("path", cfg.MetricsTextfile), zap.Error(err))
		}
	}

	fmt.Fprintf(out, "Found %d source links across %d counties\n", len(report.Sources), report.CountyCount)
	fmt.Fprintf(out, "Downloaded %d files\n", len(report.Downloads))
	return nil
}

func newFetcher(cfg *config.Config, log *zap.Logger) repository.PageFetcher {
	if cfg.FetchMode == config.FetchModeHTTP {
		return http_fetcher.NewHTTPFetcher(cfg.PageTimeout, cfg.UserAgent, log)
	}
	return chromedp_fetcher.NewChromedpFetcher(cfg.PageTimeout, cfg.UserAgent, cfg.ChromePath, log)
}

// publish hands the report to every configured sink. Failures are logged only.
func publish(ctx context.Context, cfg *config.Config, report *entity.Report, log *zap.Logger) {
	sinks, closeAll := openSinks(ctx, cfg, log)
	defer closeAll()

	for _, sink := range sinks {
		if err := sink.Publish(ctx, report); err != nil {
			log.Error("Sink publish failed", zap.String("sink", sink.Name()), zap.Error(err))
			continue
		}
		log.Info("Report published", zap.String("sink", sink.Name()))
	}
}

func openSinks(ctx context.Context, cfg *config.Config, log *zap.Logger) ([]repository.ResultSink, func()) {
	var (
		sinks   []repository.ResultSink
		closers []func()
	)

	if cfg.PostgresURL != "" {
		if sink, closeFn, err := openArchive(ctx, cfg.PostgresURL); err != nil {
			log.Error("Unable to open postgres archive", zap.Error(err))
		} else {
			sinks = append(sinks, sink)
			closers = append(closers, closeFn)
		}
	}

	if cfg.RedisAddr != "" {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Error("Unable to connect to Redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			_ = rdb.Close()
		} else {
			sinks = append(sinks, redis_adapter.NewLinkStreamSink(rdb))
			closers = append(closers, func() { _ = rdb.Close() })
		}
	}

	return sinks, func() {
		for _, c := range closers {
			c()
		}
	}
}

func openArchive(ctx context.Context, dsn string) (*postgres.ArchiveSink, func(), error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	sink := postgres.NewArchiveSink(pool)
	if err := sink.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return sink, pool.Close, nil
}

// startStatusServer serves metrics and run status until the returned func is called.
func startStatusServer(addr string, tracker *usecase.StatusTracker, m *metrics.Metrics, log *zap.Logger) func() {
	server := &http.Server{
		Addr:         addr,
		Handler:      router.New(handler.NewHandler(tracker, log), m, log),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("Starting status server", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Status server stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Warn("Status server shutdown", zap.Error(err))
		}
	}
}
