package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/polasekp/strats/internal/core/domain"
	"github.com/polasekp/strats/internal/core/ports"
)

// Remote activity category -> gear category. Keyed on the raw remote string.
// Ski categories are deliberately missing: the rule table never covered them,
// so skiing activities get no gear attached.
var stravaTypeToGearType = map[string]domain.GearType{
	"Ride":        domain.GearBike,
	"VirtualRide": domain.GearBike,
	"Run":         domain.GearShoe,
	"Hike":        domain.GearShoe,
	"Walk":        domain.GearShoe,
}

// GearResolver maps a remote gear reference to a local Gear, creating it on
// first sight, and links it to the persisted activity.
type GearResolver struct {
	gearRepo     ports.GearRepository
	activityRepo ports.ActivityRepository
	source       ports.ActivitySource
	logger       ports.LoggerPort
}

func NewGearResolver(
	gearRepo ports.GearRepository,
	activityRepo ports.ActivityRepository,
	source ports.ActivitySource,
	logger ports.LoggerPort,
) *GearResolver {
	return &GearResolver{
		gearRepo:     gearRepo,
		activityRepo: activityRepo,
		source:       source,
		logger:       logger,
	}
}

// ResolveGear returns the gear linked to the activity and whether it was
// created during this call. A record without a gear reference, or whose
// category has no gear-type mapping, resolves to no gear without error.
func (r *GearResolver) ResolveGear(ctx context.Context, remote *domain.RemoteActivity, activityID uuid.UUID) (*domain.Gear, bool, error) {
	if remote.GearID == "" {
		return nil, false, nil
	}

	created := false
	gear, err := r.gearRepo.GetGearByStravaID(ctx, remote.GearID)
	if errors.Is(err, domain.ErrNotFound) {
		gearType, ok := stravaTypeToGearType[remote.Type]
		if !ok {
			r.logger.Warn("No gear type mapping for activity type, gear not created", map[string]interface{}{
				"activity_type": remote.Type,
				"gear_id":       remote.GearID,
			})
			return nil, false, nil
		}

		remoteGear, err := r.source.GetGear(ctx, remote.GearID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to fetch gear %s: %w", remote.GearID, err)
		}

		stravaID := remoteGear.ID
		gear, err = r.gearRepo.CreateGear(ctx, &domain.Gear{
			ID:       uuid.New(),
			Name:     remoteGear.Name,
			Type:     gearType,
			StravaID: &stravaID,
			IsActive: true,
		})
		if err != nil {
			return nil, false, fmt.Errorf("failed to create gear %s: %w", remote.GearID, err)
		}
		created = true
		r.logger.Info("Created gear", map[string]interface{}{
			"gear_id":   gear.ID,
			"strava_id": stravaID,
			"type":      gearType,
		})
	} else if err != nil {
		return nil, false, fmt.Errorf("failed to look up gear %s: %w", remote.GearID, err)
	}

	if err := r.activityRepo.AddGearToActivity(ctx, activityID, gear.ID); err != nil {
		return nil, created, fmt.Errorf("failed to link gear to activity: %w", err)
	}
	return gear, created, nil
}
