package httpdownload

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/user/taxsale-crawler/internal/repository"
	"github.com/user/taxsale-crawler/pkg/utils"
	"go.uber.org/zap"
)

const fileMode os.FileMode = 0o644

// DownloaderImpl saves list files over plain HTTP.
type DownloaderImpl struct {
	client    *http.Client
	userAgent string
	logger    *zap.Logger
}

// NewDownloader creates a downloader whose requests are bounded by timeout.
func NewDownloader(timeout time.Duration, userAgent string, logger *zap.Logger) *DownloaderImpl {
	return &DownloaderImpl{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		logger:    logger,
	}
}

// Download fetches fileURL into folder under a sanitized name, replacing any
// existing file of that name. It returns the local path.
func (d *DownloaderImpl) Download(ctx context.Context, fileURL, folder string) (string, error) {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("create download folder %s: %w", folder, err)
	}
	dest := filepath.Join(folder, utils.SafeFilename(fileURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", fileURL, err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("get %s: %w", fileURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("get %s: %w: %d", fileURL, repository.ErrBadStatus, resp.StatusCode)
	}

	// Stage next to the destination so the final rename never crosses filesystems.
	tmp, err := os.CreateTemp(folder, ".partial-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if err == nil {
		// CreateTemp uses 0600; list files are shared like any other download.
		err = tmp.Chmod(fileMode)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("move download into place: %w", err)
	}

	d.logger.Debug("downloaded list file", zap.String("url", fileURL), zap.String("path", dest), zap.Int64("bytes", n))
	return dest, nil
}
