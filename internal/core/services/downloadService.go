package services

import (
	"context"
	"fmt"

	"github.com/polasekp/strats/internal/core/ports"
)

// DownloadService fetches track files for a tagged activity set. The
// downloader itself is idempotent, so re-running only pulls what is missing.
type DownloadService struct {
	activityRepo ports.ActivityRepository
	downloader   ports.TrackDownloader
	logger       ports.LoggerPort
}

func NewDownloadService(
	activityRepo ports.ActivityRepository,
	downloader ports.TrackDownloader,
	logger ports.LoggerPort,
) *DownloadService {
	return &DownloadService{
		activityRepo: activityRepo,
		downloader:   downloader,
		logger:       logger,
	}
}

// DownloadTracksByTag downloads the tracks of all activities carrying the tag.
// Returns how many were downloaded and how many were already present.
func (s *DownloadService) DownloadTracksByTag(ctx context.Context, tagName string) (downloaded, skipped int, err error) {
	activities, err := s.activityRepo.ListActivities(ctx, ports.ActivityFilter{TagName: tagName})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list activities: %w", err)
	}

	for _, activity := range activities {
		if activity.StravaID == nil {
			continue
		}
		path, wasSkipped, err := s.downloader.DownloadTrack(ctx, activity)
		if err != nil {
			s.logger.Warn("Failed to download track", map[string]interface{}{
				"activity_id": activity.ID,
				"strava_id":   *activity.StravaID,
				"error":       err.Error(),
			})
			continue
		}
		if wasSkipped {
			skipped++
			continue
		}
		downloaded++
		s.logger.Info("Track downloaded", map[string]interface{}{
			"strava_id": *activity.StravaID,
			"path":      path,
		})
	}
	return downloaded, skipped, nil
}
