package http_fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/user/taxsale-crawler/internal/adapter/anchors"
	"github.com/user/taxsale-crawler/internal/repository"
	"go.uber.org/zap"
)

// maxPageBytes caps how much of a seed page is parsed.
const maxPageBytes = 10 << 20

// HTTPFetcher reads anchors from the server-sent HTML without running scripts.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	logger    *zap.Logger
}

// NewHTTPFetcher creates a fetcher that does not execute JavaScript.
// Pages that build their links client-side will come back with fewer or no
// links in this mode; the limitation is logged once at construction.
func NewHTTPFetcher(timeout time.Duration, userAgent string, logger *zap.Logger) *HTTPFetcher {
	logger.Warn("http fetch mode does not render JavaScript; links injected client-side will not be found")
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		logger:    logger,
	}
}

// FetchLinks GETs pageURL and extracts its anchors relative to the final response URL.
func (f *HTTPFetcher) FetchLinks(ctx context.Context, pageURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrNavigationFailed, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil || isTimeout(err) {
			return nil, fmt.Errorf("%w: %s: %v", repository.ErrPageTimeout, pageURL, err)
		}
		return nil, fmt.Errorf("%w: %v", repository.ErrNavigationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("get %s: %w: %d", pageURL, repository.ErrBadStatus, resp.StatusCode)
	}

	links, err := anchors.Extract(resp.Request.URL.String(), io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, err
	}
	f.logger.Debug("extracted anchors", zap.String("url", pageURL), zap.Int("count", len(links)))
	return links, nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
