package repository

import "context"

// PageFetcher defines the contract for loading a seed page and reading its anchors.
type PageFetcher interface {
	// FetchLinks loads pageURL and returns every anchor href on it as an absolute URL,
	// de-duplicated in first-seen order.
	FetchLinks(ctx context.Context, pageURL string) ([]string, error)
}
