package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/taxsale-crawler/internal/entity"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func testReport() *entity.Report {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return &entity.Report{
		Sources: []entity.SourceRow{
			{County: "Fulton", ListPageURL: "https://fulton.gov/sales", ListFileURL: "https://fulton.gov/a.pdf", Status: entity.StatusOK},
			{County: "Fulton", ListPageURL: "https://fulton.gov/sales", ListFileURL: "https://fulton.gov/fifa", Status: entity.StatusOK},
			{County: "Cobb", ListPageURL: "https://cobb.gov/sales", Status: entity.StatusNoFileLinks},
			{County: "Dekalb", ListPageURL: "https://dekalb.gov/sales", Status: "ERROR: timeout"},
		},
		Downloads: []entity.DownloadRow{
			{County: "Fulton", FileURL: "https://fulton.gov/a.pdf", LocalPath: "downloads/a.pdf"},
		},
		CountyCount: 3,
		StartedAt:   start,
		FinishedAt:  start.Add(90 * time.Second),
	}
}

func TestLinkStreamSinkPublish(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	sink := NewLinkStreamSink(client)

	require.NoError(t, sink.Publish(ctx, testReport()))

	links, err := client.XRange(ctx, linkStreamKey, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "Fulton", links[0].Values["county"])
	assert.Equal(t, "https://fulton.gov/a.pdf", links[0].Values["list_file_url"])
	assert.Equal(t, "downloads/a.pdf", links[0].Values["local_path"])
	assert.Equal(t, "1", links[0].Values["new"])
	assert.NotContains(t, links[1].Values, "local_path")

	runs, err := client.XRange(ctx, runStreamKey, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "3", runs[0].Values["counties"])
	assert.Equal(t, "2", runs[0].Values["links"])
	assert.Equal(t, "1", runs[0].Values["downloads"])
	assert.Equal(t, "2026-03-02T09:00:00Z", runs[0].Values["started_at"])
}

func TestLinkStreamSinkFlagsRepeatLinks(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	sink := NewLinkStreamSink(client)

	require.NoError(t, sink.Publish(ctx, testReport()))
	require.NoError(t, sink.Publish(ctx, testReport()))

	links, err := client.XRange(ctx, linkStreamKey, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, links, 4)
	assert.Equal(t, "0", links[2].Values["new"])
	assert.Equal(t, "0", links[3].Values["new"])
}

func TestLinkStreamSinkEmptyReport(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	require.NoError(t, NewLinkStreamSink(client).Publish(ctx, &entity.Report{}))

	n, err := client.XLen(ctx, linkStreamKey).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = client.XLen(ctx, runStreamKey).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
