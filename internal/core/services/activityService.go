package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/polasekp/strats/internal/core/domain"
	"github.com/polasekp/strats/internal/core/ports"
)

type ActivityService struct {
	activityRepo ports.ActivityRepository
	athleteRepo  ports.AthleteRepository
	logger       ports.LoggerPort
}

func NewActivityService(
	activityRepo ports.ActivityRepository,
	athleteRepo ports.AthleteRepository,
	logger ports.LoggerPort,
) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
		athleteRepo:  athleteRepo,
		logger:       logger,
	}
}

func (s *ActivityService) GetActivityByID(ctx context.Context, activityID string) (*domain.Activity, error) {
	activityUUID, err := uuid.Parse(activityID)
	if err != nil {
		return nil, fmt.Errorf("invalid activity ID: %w", err)
	}
	return s.activityRepo.GetActivityByID(ctx, activityUUID)
}

func (s *ActivityService) ListActivities(ctx context.Context, filter ports.ActivityFilter) ([]*domain.Activity, error) {
	activities, err := s.activityRepo.ListActivities(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list activities", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}
	return activities, nil
}

// AttachAthlete links a co-participant to the activity. Strava only reports
// the participant count, so the actual people are maintained by hand.
func (s *ActivityService) AttachAthlete(ctx context.Context, activityID, athleteID string) error {
	activityUUID, err := uuid.Parse(activityID)
	if err != nil {
		return fmt.Errorf("invalid activity ID: %w", err)
	}
	athleteUUID, err := uuid.Parse(athleteID)
	if err != nil {
		return fmt.Errorf("invalid athlete ID: %w", err)
	}

	if err := s.activityRepo.AddAthleteToActivity(ctx, activityUUID, athleteUUID); err != nil {
		s.logger.Error("Failed to attach athlete", map[string]interface{}{
			"error":       err.Error(),
			"activity_id": activityID,
			"athlete_id":  athleteID,
		})
		return err
	}

	s.logger.Info("Athlete attached to activity", map[string]interface{}{
		"activity_id": activityID,
		"athlete_id":  athleteID,
	})
	return nil
}

func (s *ActivityService) CreateAthlete(ctx context.Context, athlete *domain.Athlete) (*domain.Athlete, error) {
	if athlete.ID == uuid.Nil {
		athlete.ID = uuid.New()
	}
	return s.athleteRepo.CreateAthlete(ctx, athlete)
}
