package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.IncPage(PageOK)
	m.IncPage(PageOK)
	m.IncPage(PageError)
	m.AddLinks(3)
	m.IncDownload(DownloadSuccess)
	m.IncDownload(DownloadFailure)
	m.IncDownload(DownloadFailure)
	m.ObserveFetch(2 * time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PagesTotal.WithLabelValues(PageOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PagesTotal.WithLabelValues(PageError)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.PagesTotal.WithLabelValues(PageEmpty)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.LinksFound))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DownloadsTotal.WithLabelValues(DownloadSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DownloadsTotal.WithLabelValues(DownloadFailure)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.FetchDuration))
}

func TestInstancesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.AddLinks(5)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.LinksFound))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.AddLinks(7)

	path := filepath.Join(t.TempDir(), "taxsale.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "taxsale_links_found_total 7")
}
