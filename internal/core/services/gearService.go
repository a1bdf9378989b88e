package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/polasekp/strats/internal/core/domain"
	"github.com/polasekp/strats/internal/core/ports"
)

type GearService struct {
	gearRepo     ports.GearRepository
	activityRepo ports.ActivityRepository
	logger       ports.LoggerPort
	validate     *validator.Validate
	cache        ports.CachePort
}

func NewGearService(
	gearRepo ports.GearRepository,
	activityRepo ports.ActivityRepository,
	logger ports.LoggerPort,
	validate *validator.Validate,
	cache ports.CachePort,
) *GearService {
	return &GearService{
		gearRepo:     gearRepo,
		activityRepo: activityRepo,
		logger:       logger,
		validate:     validate,
		cache:        cache,
	}
}

func (s *GearService) CreateGear(ctx context.Context, gear *domain.Gear) (*domain.Gear, error) {
	if err := s.validate.Struct(gear); err != nil {
		s.logger.Error("Gear validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("validation error: %w", err)
	}

	if gear.ID == uuid.Nil {
		gear.ID = uuid.New()
	}

	createdGear, err := s.gearRepo.CreateGear(ctx, gear)
	if err != nil {
		s.logger.Error("Failed to create gear", map[string]interface{}{
			"error": err.Error(),
			"name":  gear.Name,
		})
		return nil, err
	}

	s.logger.Info("Gear created successfully", map[string]interface{}{
		"gear_id": createdGear.ID,
		"name":    createdGear.Name,
		"type":    createdGear.Type,
	})
	return createdGear, nil
}

func (s *GearService) GetGearByID(ctx context.Context, gearID string) (*domain.Gear, error) {
	gearUUID, err := uuid.Parse(gearID)
	if err != nil {
		return nil, fmt.Errorf("invalid gear ID: %w", err)
	}

	cacheKey := fmt.Sprintf("gear:%s", gearID)
	if cachedData, err := s.cache.Get(cacheKey); err == nil {
		var cachedGear domain.Gear
		if err := json.Unmarshal(cachedData, &cachedGear); err == nil {
			return &cachedGear, nil
		}
	}

	gear, err := s.gearRepo.GetGearByID(ctx, gearUUID)
	if err != nil {
		s.logger.Error("Failed to get gear", map[string]interface{}{
			"error":   err.Error(),
			"gear_id": gearID,
		})
		return nil, err
	}

	if gearData, err := json.Marshal(gear); err == nil {
		if err := s.cache.Set(cacheKey, gearData, 15*time.Minute); err != nil {
			s.logger.Warn("Failed to cache gear", map[string]interface{}{
				"error":   err.Error(),
				"gear_id": gearID,
			})
		}
	}
	return gear, nil
}

func (s *GearService) ListGear(ctx context.Context) ([]*domain.Gear, error) {
	gear, err := s.gearRepo.ListGear(ctx)
	if err != nil {
		s.logger.Error("Failed to list gear", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}
	return gear, nil
}

// UpdateGear renames the gear. Remote id and type are fixed at creation.
func (s *GearService) UpdateGear(ctx context.Context, gearID, name string) (*domain.Gear, error) {
	gearUUID, err := uuid.Parse(gearID)
	if err != nil {
		return nil, fmt.Errorf("invalid gear ID: %w", err)
	}

	gear, err := s.gearRepo.GetGearByID(ctx, gearUUID)
	if err != nil {
		return nil, err
	}

	gear.Name = name
	if err := s.validate.Struct(gear); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	updatedGear, err := s.gearRepo.UpdateGear(ctx, gear)
	if err != nil {
		s.logger.Error("Failed to update gear", map[string]interface{}{
			"error":   err.Error(),
			"gear_id": gearID,
		})
		return nil, err
	}

	if err := s.cache.Delete(fmt.Sprintf("gear:%s", gearID)); err != nil {
		s.logger.Warn("Failed to invalidate gear cache", map[string]interface{}{
			"error":   err.Error(),
			"gear_id": gearID,
		})
	}
	return updatedGear, nil
}

// RetireGear deactivates the gear and stamps the retirement time.
func (s *GearService) RetireGear(ctx context.Context, gearID string) (*domain.Gear, error) {
	gearUUID, err := uuid.Parse(gearID)
	if err != nil {
		return nil, fmt.Errorf("invalid gear ID: %w", err)
	}

	gear, err := s.gearRepo.GetGearByID(ctx, gearUUID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	gear.IsActive = false
	gear.RetiredAt = &now

	updatedGear, err := s.gearRepo.UpdateGear(ctx, gear)
	if err != nil {
		s.logger.Error("Failed to retire gear", map[string]interface{}{
			"error":   err.Error(),
			"gear_id": gearID,
		})
		return nil, err
	}

	if err := s.cache.Delete(fmt.Sprintf("gear:%s", gearID)); err != nil {
		s.logger.Warn("Failed to invalidate gear cache", map[string]interface{}{
			"error":   err.Error(),
			"gear_id": gearID,
		})
	}

	s.logger.Info("Gear retired", map[string]interface{}{
		"gear_id": gearID,
	})
	return updatedGear, nil
}

// GearDistanceKm derives the gear's total distance from its linked activities.
func (s *GearService) GearDistanceKm(ctx context.Context, gearID string) (float64, error) {
	gearUUID, err := uuid.Parse(gearID)
	if err != nil {
		return 0, fmt.Errorf("invalid gear ID: %w", err)
	}

	activities, err := s.activityRepo.ListActivities(ctx, ports.ActivityFilter{GearID: &gearUUID})
	if err != nil {
		s.logger.Error("Failed to list gear activities", map[string]interface{}{
			"error":   err.Error(),
			"gear_id": gearID,
		})
		return 0, err
	}
	return sumDistanceKm(activities, 1), nil
}
