package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/user/taxsale-crawler/pkg/config"
	"github.com/user/taxsale-crawler/pkg/logger"
)

// Flag names. Each overrides the configuration key of the same meaning.
const (
	flagEnvFile     = "env-file"
	flagCounties    = "counties"
	flagOutput      = "output"
	flagDownloads   = "downloads"
	flagFetchMode   = "fetch-mode"
	flagPageTimeout = "page-timeout"
	flagLogLevel    = "log-level"
	flagLogFormat   = "log-format"
	flagMetricsAddr = "metrics-addr"
	flagTextfile    = "metrics-textfile"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taxsale",
		Short: "Collect county tax-sale list links and files",
		Long: `taxsale visits each county's tax-sale page, records every link that looks
like a tax-sale list, downloads the list files and writes an xlsx report.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log := logger.Must(cfg.LogLevel, cfg.LogFormat)
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runScrape(ctx, cfg, cmd.OutOrStdout(), log)
		},
	}

	f := cmd.PersistentFlags()
	f.String(flagEnvFile, ".env", "optional env file with configuration")
	f.String(flagLogLevel, "", "log level (debug, info, warn, error)")
	f.String(flagLogFormat, "", "log format (json or console)")

	rf := cmd.Flags()
	rf.String(flagCounties, "", "counties JSON file")
	rf.String(flagOutput, "", "output xlsx file")
	rf.String(flagDownloads, "", "folder for downloaded list files")
	rf.String(flagFetchMode, "", "page fetch mode (browser or http)")
	rf.Duration(flagPageTimeout, 0, "per-page load timeout")
	rf.String(flagMetricsAddr, "", "serve /metrics and /api/status on this address during the run")
	rf.String(flagTextfile, "", "write metrics in text format to this file after the run")

	cmd.AddCommand(newFailingCommand())
	return cmd
}

// loadConfig reads configuration and applies the flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, err := cmd.Flags().GetString(flagEnvFile)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	stringFlags := map[string]*string{
		flagCounties:    &cfg.CountiesFile,
		flagOutput:      &cfg.OutputFile,
		flagDownloads:   &cfg.DownloadsDir,
		flagFetchMode:   &cfg.FetchMode,
		flagLogLevel:    &cfg.LogLevel,
		flagLogFormat:   &cfg.LogFormat,
		flagMetricsAddr: &cfg.MetricsAddr,
		flagTextfile:    &cfg.MetricsTextfile,
	}
	for name, dst := range stringFlags {
		if flags.Lookup(name) == nil || !flags.Changed(name) {
			continue
		}
		v, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	if flags.Lookup(flagPageTimeout) != nil && flags.Changed(flagPageTimeout) {
		d, err := flags.GetDuration(flagPageTimeout)
		if err != nil {
			return err
		}
		cfg.PageTimeout = d
	}
	return nil
}
