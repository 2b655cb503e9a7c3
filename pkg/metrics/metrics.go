package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Page outcome labels.
const (
	PageOK    = "ok"
	PageEmpty = "empty"
	PageError = "error"
)

// Download outcome labels.
const (
	DownloadSuccess = "success"
	DownloadFailure = "failure"
)

// Metrics holds all Prometheus collectors for a run, on a dedicated registry.
type Metrics struct {
	Registry *prometheus.Registry

	PagesTotal          *prometheus.CounterVec
	LinksFound          prometheus.Counter
	DownloadsTotal      *prometheus.CounterVec
	FetchDuration       prometheus.Histogram
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		PagesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "taxsale_pages_total",
			Help: "Seed pages processed, by outcome.",
		}, []string{"status"}),
		LinksFound: f.NewCounter(prometheus.CounterOpts{
			Name: "taxsale_links_found_total",
			Help: "List links discovered across all seed pages.",
		}),
		DownloadsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "taxsale_downloads_total",
			Help: "List file downloads, by result.",
		}, []string{"result"}),
		FetchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "taxsale_fetch_duration_seconds",
			Help:    "Time spent loading a seed page and reading its anchors.",
			Buckets: []float64{1, 5, 10, 15, 30, 45, 60, 120},
		}),
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests to the status endpoint.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests to the status endpoint.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

func (m *Metrics) IncPage(status string) {
	m.PagesTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) AddLinks(n int) {
	m.LinksFound.Add(float64(n))
}

func (m *Metrics) IncDownload(result string) {
	m.DownloadsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveFetch(d time.Duration) {
	m.FetchDuration.Observe(d.Seconds())
}

// WriteTextfile dumps the registry in text exposition format, for the
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
