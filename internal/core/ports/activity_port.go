package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/polasekp/strats/internal/core/domain"
)

// ActivityFilter narrows List results. Zero values mean "no constraint".
type ActivityFilter struct {
	Types     []domain.ActivityType
	TagName   string
	GearID    *uuid.UUID
	Year      *int
	StartFrom *time.Time
	StartTo   *time.Time
}

type ActivityRepository interface {
	CreateActivity(ctx context.Context, activity *domain.Activity) (*domain.Activity, error)
	UpdateActivity(ctx context.Context, activity *domain.Activity) (*domain.Activity, error)
	GetActivityByID(ctx context.Context, id uuid.UUID) (*domain.Activity, error)
	// GetActivityByStravaID returns domain.ErrNotFound when no local activity
	// carries the remote identifier.
	GetActivityByStravaID(ctx context.Context, stravaID int64) (*domain.Activity, error)
	ListActivities(ctx context.Context, filter ActivityFilter) ([]*domain.Activity, error)
	CountActivities(ctx context.Context) (int, error)
	// LatestStart returns the start of the newest stored activity, or nil on an
	// empty store.
	LatestStart(ctx context.Context) (*time.Time, error)
	AddGearToActivity(ctx context.Context, activityID, gearID uuid.UUID) error
	AddTagToActivity(ctx context.Context, activityID, tagID uuid.UUID) error
	AddAthleteToActivity(ctx context.Context, activityID, athleteID uuid.UUID) error
}
