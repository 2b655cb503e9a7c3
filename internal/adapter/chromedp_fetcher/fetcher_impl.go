package chromedp_fetcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/user/taxsale-crawler/internal/adapter/anchors"
	"github.com/user/taxsale-crawler/internal/repository"
	"go.uber.org/zap"
)

const (
	lifecycleInit        = "init"
	lifecycleNetworkIdle = "networkIdle"
)

// ChromedpFetcher renders seed pages in headless Chrome before reading anchors.
// Every call launches its own browser and shuts it down before returning.
type ChromedpFetcher struct {
	timeout   time.Duration
	userAgent string
	execPath  string
	logger    *zap.Logger
}

// NewChromedpFetcher creates a browser-backed fetcher. execPath may be empty
// to let chromedp locate Chrome.
func NewChromedpFetcher(pageLoadTimeout time.Duration, userAgent, execPath string, logger *zap.Logger) *ChromedpFetcher {
	return &ChromedpFetcher{
		timeout:   pageLoadTimeout,
		userAgent: userAgent,
		execPath:  execPath,
		logger:    logger,
	}
}

func (c *ChromedpFetcher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(c.userAgent),
	)
	if c.execPath != "" {
		opts = append(opts, chromedp.ExecPath(c.execPath))
	}
	return opts
}

// FetchLinks navigates to pageURL, waits for the network to go idle and
// returns the page's anchors as absolute URLs.
func (c *ChromedpFetcher) FetchLinks(ctx context.Context, pageURL string) ([]string, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, c.allocatorOptions()...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx, chromedp.WithLogf(c.logger.Sugar().Debugf))
	defer cancelTask()

	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, c.timeout)
	defer cancelTimeout()

	events := make(chan *page.EventLifecycleEvent, 256)
	chromedp.ListenTarget(taskCtx, func(ev interface{}) {
		e, ok := ev.(*page.EventLifecycleEvent)
		if !ok || (e.Name != lifecycleInit && e.Name != lifecycleNetworkIdle) {
			return
		}
		select {
		case events <- e:
		default:
		}
	})

	var location, html string
	err := chromedp.Run(taskCtx,
		page.SetLifecycleEventsEnabled(true),
		chromedp.ActionFunc(func(ctx context.Context) error {
			drain(events)
			frameID, loaderID, errorText, isDownload, err := page.Navigate(pageURL).Do(ctx)
			if err != nil {
				return err
			}
			if errorText != "" {
				return fmt.Errorf("%w: %s", repository.ErrNavigationFailed, errorText)
			}
			if isDownload {
				return fmt.Errorf("%w: %s is a file download, not a page", repository.ErrNavigationFailed, pageURL)
			}
			return waitNetworkIdle(ctx, events, frameID, loaderID)
		}),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s: %s", repository.ErrPageTimeout, c.timeout, pageURL)
		}
		return nil, err
	}

	links, err := anchors.Extract(location, strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	c.logger.Debug("extracted anchors",
		zap.String("url", pageURL),
		zap.String("location", location),
		zap.Int("count", len(links)),
	)
	return links, nil
}

// drain drops lifecycle events replayed for about:blank when they were enabled.
func drain(events <-chan *page.EventLifecycleEvent) {
	for {
		select {
		case <-events:
		default:
			return
		}
	}
}

// waitNetworkIdle blocks until the main frame reports networkIdle for the
// current document. A new document committed in the main frame (client-side
// redirect) replaces the loader being waited on.
func waitNetworkIdle(ctx context.Context, events <-chan *page.EventLifecycleEvent, frameID cdp.FrameID, loaderID cdp.LoaderID) error {
	for {
		select {
		case ev := <-events:
			if ev.FrameID != frameID {
				continue
			}
			switch {
			case ev.Name == lifecycleInit:
				loaderID = ev.LoaderID
			case ev.Name == lifecycleNetworkIdle && ev.LoaderID == loaderID:
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
