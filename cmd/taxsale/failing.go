package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/user/taxsale-crawler/internal/adapter/postgres"
	"github.com/user/taxsale-crawler/pkg/logger"
	"go.uber.org/zap"
)

func newFailingCommand() *cobra.Command {
	var minCount int

	cmd := &cobra.Command{
		Use:   "failing",
		Short: "List seed pages that keep failing across archived runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.PostgresURL == "" {
				return fmt.Errorf("POSTGRES_URL is required")
			}
			log := logger.Must(cfg.LogLevel, cfg.LogFormat)
			defer func() { _ = log.Sync() }()

			ctx := cmd.Context()
			sink, closeFn, err := openArchive(ctx, cfg.PostgresURL)
			if err != nil {
				return fmt.Errorf("open archive: %w", err)
			}
			defer closeFn()

			pages, err := sink.FailingPages(ctx, minCount)
			if err != nil {
				return fmt.Errorf("query failing pages: %w", err)
			}
			log.Debug("Failing pages loaded", zap.Int("count", len(pages)), zap.Int("min", minCount))

			renderFailures(cmd, pages)
			return nil
		},
	}
	cmd.Flags().IntVar(&minCount, "min", 2, "minimum consecutive failures")
	return cmd
}

// renderFailures prints the failing pages as a table on the command's output.
func renderFailures(cmd *cobra.Command, pages []*postgres.PageFailure) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"County", "Failures", "Last Failed", "Seed Page", "Status"})
	for _, p := range pages {
		t.AppendRow(table.Row{
			p.County,
			p.FailureCount,
			p.LastFailedAt.Format("2006-01-02 15:04"),
			p.ListPageURL,
			p.LastStatus,
		})
	}
	t.Render()
}
