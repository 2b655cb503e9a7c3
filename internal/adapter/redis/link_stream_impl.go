package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/taxsale-crawler/internal/entity"
	"github.com/user/taxsale-crawler/pkg/utils"
)

const (
	linkStreamKey = "taxsale:links"
	runStreamKey  = "taxsale:runs"
	seenLinksKey  = "taxsale:seen"
)

// LinkStreamSink publishes discovered list links to a Redis stream so that
// downstream consumers can pick up new tax-sale lists.
type LinkStreamSink struct {
	client *redis.Client
}

// NewLinkStreamSink creates a new instance of LinkStreamSink.
func NewLinkStreamSink(client *redis.Client) *LinkStreamSink {
	return &LinkStreamSink{client: client}
}

func (s *LinkStreamSink) Name() string { return "redis" }

// Publish adds one stream entry per OK row and a run summary entry.
// Links never published before are flagged with new=1.
func (s *LinkStreamSink) Publish(ctx context.Context, report *entity.Report) error {
	var rows []entity.SourceRow
	for _, row := range report.Sources {
		if row.Status == entity.StatusOK && row.ListFileURL != "" {
			rows = append(rows, row)
		}
	}

	fresh, err := s.markSeen(ctx, rows)
	if err != nil {
		return err
	}

	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, row := range rows {
			values := map[string]interface{}{
				"county":        row.County,
				"list_page_url": row.ListPageURL,
				"list_file_url": row.ListFileURL,
				"new":           boolFlag(fresh[i]),
			}
			if p, ok := report.LocalPathFor(row.County, row.ListFileURL); ok {
				values["local_path"] = p
			}
			pipe.XAdd(ctx, &redis.XAddArgs{Stream: linkStreamKey, Values: values})
		}
		pipe.XAdd(ctx, &redis.XAddArgs{Stream: runStreamKey, Values: map[string]interface{}{
			"started_at":  report.StartedAt.UTC().Format(time.RFC3339),
			"finished_at": report.FinishedAt.UTC().Format(time.RFC3339),
			"counties":    report.CountyCount,
			"links":       len(rows),
			"downloads":   len(report.Downloads),
		}})
		return nil
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", linkStreamKey, err)
	}
	return nil
}

// markSeen adds every row's file URL hash to the seen set and reports, per
// row, whether the hash was not there yet.
func (s *LinkStreamSink) markSeen(ctx context.Context, rows []entity.SourceRow) ([]bool, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	cmds := make([]*redis.IntCmd, len(rows))
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, row := range rows {
			cmds[i] = pipe.SAdd(ctx, seenLinksKey, utils.HashURL(row.ListFileURL))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("mark links seen: %w", err)
	}

	fresh := make([]bool, len(rows))
	for i, cmd := range cmds {
		fresh[i] = cmd.Val() == 1
	}
	return fresh, nil
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
