package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/taxsale-crawler/internal/delivery/http/handler"
	"github.com/user/taxsale-crawler/internal/delivery/http/response"
	"github.com/user/taxsale-crawler/internal/entity"
	"github.com/user/taxsale-crawler/pkg/metrics"
	"go.uber.org/zap"
)

type staticStatus entity.RunStatus

func (s staticStatus) Snapshot() entity.RunStatus { return entity.RunStatus(s) }

func newTestServer(t *testing.T, st entity.RunStatus) (*httptest.Server, *metrics.Metrics) {
	t.Helper()
	m := metrics.New()
	h := handler.NewHandler(staticStatus(st), zap.NewNop())
	srv := httptest.NewServer(New(h, m, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv, m
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestHealth(t *testing.T) {
	srv, m := newTestServer(t, entity.RunStatus{State: entity.RunPending})

	resp, body := get(t, srv.URL+"/api/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/health", "200")))
}

func TestRunStatus(t *testing.T) {
	started := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	srv, _ := newTestServer(t, entity.RunStatus{
		State:         entity.RunRunning,
		CurrentCounty: "Fulton",
		CurrentPage:   "https://fulton.gov/sales",
		PagesTotal:    10,
		PagesDone:     4,
		PageErrors:    1,
		LinksFound:    6,
		Downloads:     3,
		StartedAt:     &started,
	})

	resp, body := get(t, srv.URL+"/api/status")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got response.RunStatusResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "running", got.State)
	assert.Equal(t, "Fulton", got.CurrentCounty)
	assert.Equal(t, 4, got.PagesDone)
	assert.Equal(t, 3, got.Downloads)
	require.NotNil(t, got.StartedAt)
	assert.True(t, started.Equal(*got.StartedAt))
	assert.Nil(t, got.FinishedAt)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, m := newTestServer(t, entity.RunStatus{})
	m.IncPage(metrics.PageOK)

	resp, body := get(t, srv.URL+"/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `taxsale_pages_total{status="ok"} 1`)
}

func TestUnknownRoute(t *testing.T) {
	srv, m := newTestServer(t, entity.RunStatus{})

	resp, _ := get(t, srv.URL+"/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}
