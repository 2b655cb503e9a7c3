package repository

import "context"

// Downloader defines the contract for saving a remote list file locally.
type Downloader interface {
	// Download fetches fileURL into folder and returns the local file path.
	Download(ctx context.Context, fileURL, folder string) (string, error)
}
