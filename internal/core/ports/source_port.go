package ports

import (
	"context"
	"time"

	"github.com/polasekp/strats/internal/core/domain"
)

// ActivitySource is the remote activity API as the core consumes it. Summary
// records from GetActivities omit detail-only fields; GetActivity re-fetches
// one record in full.
type ActivitySource interface {
	GetActivities(ctx context.Context, after, before *time.Time, limit int) ([]*domain.RemoteActivity, error)
	GetActivity(ctx context.Context, id int64) (*domain.RemoteActivity, error)
	GetGear(ctx context.Context, id string) (*domain.RemoteGear, error)
}

// TokenProvider produces a valid credential, refreshing transparently. The
// core never touches raw refresh tokens.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
	IsValid(ctx context.Context) bool
}

// TrackDownloader retrieves an activity's track file into the configured
// directory. Idempotent: an already-downloaded track is skipped.
type TrackDownloader interface {
	DownloadTrack(ctx context.Context, activity *domain.Activity) (path string, skipped bool, err error)
}
