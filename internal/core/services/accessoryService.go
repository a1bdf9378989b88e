package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/polasekp/strats/internal/core/domain"
	"github.com/polasekp/strats/internal/core/ports"
)

type AccessoryService struct {
	accessoryRepo ports.AccessoryRepository
	gearRepo      ports.GearRepository
	activityRepo  ports.ActivityRepository
	logger        ports.LoggerPort
	validate      *validator.Validate
}

func NewAccessoryService(
	accessoryRepo ports.AccessoryRepository,
	gearRepo ports.GearRepository,
	activityRepo ports.ActivityRepository,
	logger ports.LoggerPort,
	validate *validator.Validate,
) *AccessoryService {
	return &AccessoryService{
		accessoryRepo: accessoryRepo,
		gearRepo:      gearRepo,
		activityRepo:  activityRepo,
		logger:        logger,
		validate:      validate,
	}
}

// CreateAccessory registers a wear part on a gear. A gear can carry at most
// one active accessory per type; violating that is rejected here, before the
// database backstop ever fires.
func (s *AccessoryService) CreateAccessory(ctx context.Context, accessory *domain.Accessory) (*domain.Accessory, error) {
	if accessory.RegisteredAt.IsZero() {
		accessory.RegisteredAt = time.Now()
	}

	if err := s.validate.Struct(accessory); err != nil {
		s.logger.Error("Accessory validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("validation error: %w", err)
	}

	if _, err := s.gearRepo.GetGearByID(ctx, accessory.GearID); err != nil {
		return nil, fmt.Errorf("failed to look up gear: %w", err)
	}

	if accessory.IsActive {
		existing, err := s.accessoryRepo.GetActiveAccessory(ctx, accessory.GearID, accessory.Type)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("failed to check active accessories: %w", err)
		}
		if existing != nil {
			s.logger.Warn("Rejected second active accessory of same type", map[string]interface{}{
				"gear_id":  accessory.GearID,
				"type":     accessory.Type,
				"existing": existing.ID,
			})
			return nil, domain.ErrActiveAccessoryExists
		}
	}

	if accessory.ID == uuid.Nil {
		accessory.ID = uuid.New()
	}

	createdAccessory, err := s.accessoryRepo.CreateAccessory(ctx, accessory)
	if err != nil {
		s.logger.Error("Failed to create accessory", map[string]interface{}{
			"error":   err.Error(),
			"gear_id": accessory.GearID,
		})
		return nil, err
	}

	s.logger.Info("Accessory created successfully", map[string]interface{}{
		"accessory_id": createdAccessory.ID,
		"gear_id":      createdAccessory.GearID,
		"type":         createdAccessory.Type,
	})
	return createdAccessory, nil
}

// DeregisterAccessory closes the accessory's installed window and deactivates it.
func (s *AccessoryService) DeregisterAccessory(ctx context.Context, accessoryID string, at time.Time) (*domain.Accessory, error) {
	accessoryUUID, err := uuid.Parse(accessoryID)
	if err != nil {
		return nil, fmt.Errorf("invalid accessory ID: %w", err)
	}

	accessory, err := s.accessoryRepo.GetAccessoryByID(ctx, accessoryUUID)
	if err != nil {
		return nil, err
	}

	if at.IsZero() {
		at = time.Now()
	}
	if at.Before(accessory.RegisteredAt) {
		return nil, fmt.Errorf("deregistration time precedes registration")
	}

	accessory.DeregisteredAt = &at
	accessory.IsActive = false

	updatedAccessory, err := s.accessoryRepo.UpdateAccessory(ctx, accessory)
	if err != nil {
		s.logger.Error("Failed to deregister accessory", map[string]interface{}{
			"error":        err.Error(),
			"accessory_id": accessoryID,
		})
		return nil, err
	}

	s.logger.Info("Accessory deregistered", map[string]interface{}{
		"accessory_id": accessoryID,
		"at":           at,
	})
	return updatedAccessory, nil
}

// AccessoryDistanceKm computes the distance ridden on the accessory: the sum
// over activities on the same gear whose start falls inside the installed
// window. The association is evaluated here, on read; nothing is stored.
func (s *AccessoryService) AccessoryDistanceKm(ctx context.Context, accessoryID string) (float64, error) {
	accessoryUUID, err := uuid.Parse(accessoryID)
	if err != nil {
		return 0, fmt.Errorf("invalid accessory ID: %w", err)
	}

	accessory, err := s.accessoryRepo.GetAccessoryByID(ctx, accessoryUUID)
	if err != nil {
		return 0, err
	}

	activities, err := s.activityRepo.ListActivities(ctx, ports.ActivityFilter{GearID: &accessory.GearID})
	if err != nil {
		return 0, fmt.Errorf("failed to list gear activities: %w", err)
	}

	var meters float64
	for _, activity := range activities {
		if activity.Distance == nil || !accessory.Covers(activity.Start) {
			continue
		}
		meters += *activity.Distance
	}
	return domain.Round(meters/1000, 0), nil
}

// ListAccessoriesByGear returns the wear parts ever mounted on the gear.
func (s *AccessoryService) ListAccessoriesByGear(ctx context.Context, gearID string) ([]*domain.Accessory, error) {
	gearUUID, err := uuid.Parse(gearID)
	if err != nil {
		return nil, fmt.Errorf("invalid gear ID: %w", err)
	}
	return s.accessoryRepo.ListAccessoriesByGear(ctx, gearUUID)
}
