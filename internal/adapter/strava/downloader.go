package strava

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/polasekp/strats/internal/core/domain"
	"github.com/polasekp/strats/internal/core/ports"
)

// Downloader saves activity GPX exports under dir as <strava_id>.gpx.
// Already-present files are skipped, so re-runs only fetch what is missing.
type Downloader struct {
	dir        string
	httpClient *http.Client
	tokens     ports.TokenProvider
	logger     ports.LoggerPort
}

func NewDownloader(dir string, tokens ports.TokenProvider, logger ports.LoggerPort) *Downloader {
	return &Downloader{
		dir:        dir,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		tokens:     tokens,
		logger:     logger,
	}
}

func (d *Downloader) DownloadTrack(ctx context.Context, activity *domain.Activity) (string, bool, error) {
	if activity.StravaID == nil {
		return "", true, nil
	}

	path := filepath.Join(d.dir, fmt.Sprintf("%d.gpx", *activity.StravaID))
	if _, err := os.Stat(path); err == nil {
		return path, true, nil
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create track directory: %w", err)
	}

	exportURL := fmt.Sprintf("https://www.strava.com/activities/%d/export_gpx", *activity.StravaID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exportURL, nil)
	if err != nil {
		return "", false, err
	}

	token, err := d.tokens.AccessToken(ctx)
	if err != nil {
		return "", false, fmt.Errorf("failed to obtain access token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", false, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", false, err
	}
	defer file.Close()

	if _, err := io.Copy(file, resp.Body); err != nil {
		os.Remove(path)
		return "", false, fmt.Errorf("failed to write track file: %w", err)
	}
	return path, false, nil
}
