package chromedp_fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/taxsale-crawler/internal/repository"
)

// chromePath returns a local Chrome binary or skips the test.
func chromePath(t *testing.T) string {
	t.Helper()
	if p := os.Getenv("CHROME_PATH"); p != "" {
		return p
	}
	for _, name := range []string{"headless-shell", "chromium", "chromium-browser", "google-chrome", "google-chrome-stable"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	t.Skip("no Chrome binary available")
	return ""
}

const renderedPage = `<html><body>
<a href="/static/list.pdf">Static</a>
<a href="/static/list.pdf">Static again</a>
<div id="late"></div>
<script>
fetch("/api/links").then(r => r.json()).then(items => {
  for (const href of items) {
    const a = document.createElement("a");
    a.href = href;
    a.textContent = href;
    document.getElementById("late").appendChild(a);
  }
});
</script>
</body></html>`

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/sales", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(renderedPage))
	})
	mux.HandleFunc("/api/links", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`["/js/delinquent-list.xlsx"]`))
	})
	mux.HandleFunc("/hang", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><script>fetch("/never")</script></body></html>`))
	})
	mux.HandleFunc("/never", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(10 * time.Second):
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchLinksRendersScripts(t *testing.T) {
	exe := chromePath(t)
	srv := newSite(t)
	f := NewChromedpFetcher(30*time.Second, "test-agent", exe, zap.NewNop())

	links, err := f.FetchLinks(context.Background(), srv.URL+"/sales")
	require.NoError(t, err)
	assert.Equal(t, []string{
		srv.URL + "/static/list.pdf",
		srv.URL + "/js/delinquent-list.xlsx",
	}, links)
}

func TestFetchLinksNavigationError(t *testing.T) {
	exe := chromePath(t)
	f := NewChromedpFetcher(30*time.Second, "test-agent", exe, zap.NewNop())

	_, err := f.FetchLinks(context.Background(), "http://127.0.0.1:1/")
	assert.ErrorIs(t, err, repository.ErrNavigationFailed)
}

func TestFetchLinksTimeout(t *testing.T) {
	exe := chromePath(t)
	srv := newSite(t)
	f := NewChromedpFetcher(2*time.Second, "test-agent", exe, zap.NewNop())

	_, err := f.FetchLinks(context.Background(), srv.URL+"/hang")
	assert.ErrorIs(t, err, repository.ErrPageTimeout)
}

func TestWaitNetworkIdle(t *testing.T) {
	const frame cdp.FrameID = "main"

	t.Run("returns on idle for the navigation loader", func(t *testing.T) {
		events := make(chan *page.EventLifecycleEvent, 4)
		events <- &page.EventLifecycleEvent{FrameID: "child", LoaderID: "L1", Name: lifecycleNetworkIdle}
		events <- &page.EventLifecycleEvent{FrameID: frame, LoaderID: "L0", Name: lifecycleNetworkIdle}
		events <- &page.EventLifecycleEvent{FrameID: frame, LoaderID: "L1", Name: lifecycleNetworkIdle}

		require.NoError(t, waitNetworkIdle(context.Background(), events, frame, "L1"))
	})

	t.Run("follows a new document in the main frame", func(t *testing.T) {
		events := make(chan *page.EventLifecycleEvent, 4)
		events <- &page.EventLifecycleEvent{FrameID: frame, LoaderID: "L2", Name: lifecycleInit}
		events <- &page.EventLifecycleEvent{FrameID: frame, LoaderID: "L2", Name: lifecycleNetworkIdle}

		require.NoError(t, waitNetworkIdle(context.Background(), events, frame, "L1"))
	})

	t.Run("gives up when the context ends", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := waitNetworkIdle(ctx, make(chan *page.EventLifecycleEvent), frame, "L1")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestDrain(t *testing.T) {
	events := make(chan *page.EventLifecycleEvent, 3)
	events <- &page.EventLifecycleEvent{Name: lifecycleInit}
	events <- &page.EventLifecycleEvent{Name: lifecycleNetworkIdle}

	drain(events)
	assert.Empty(t, events)
}
