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

// DefaultImportLimit bounds a run when the caller gives no limit.
const DefaultImportLimit = 50

// statsCachePrefix keys every cached stats entry so one import run can
// invalidate them all.
const statsCachePrefix = "stats:"

type ImportOptions struct {
	// After/Before bound the remote fetch window. With neither set, the run
	// imports everything newer than the latest stored activity (or everything
	// up to now on an empty store).
	After  *time.Time
	Before *time.Time
	Limit  int
	// Fast skips the per-activity detail fetch; detail-only fields (power,
	// calories, full description) then stay empty.
	Fast bool
	// PerformUpdate re-imports records that already exist locally instead of
	// skipping them.
	PerformUpdate bool
}

type ImportResult struct {
	Created     int `json:"created"`
	Updated     int `json:"updated"`
	Skipped     int `json:"skipped"`
	GearCreated int `json:"gear_created"`
}

// ImportService drives one synchronization run: fetch remote summaries, map
// each record, reconcile it against the store by strava_id, classify and
// resolve gear. Each record is self-contained; a failing record is logged and
// skipped while the run continues. Source and auth failures abort the run.
type ImportService struct {
	activityRepo ports.ActivityRepository
	source       ports.ActivitySource
	mapper       *Mapper
	classifier   *Classifier
	gearResolver *GearResolver
	logger       ports.LoggerPort
	validate     *validator.Validate
	metrics      ports.MetricsPort
	cache        ports.CachePort
}

func NewImportService(
	activityRepo ports.ActivityRepository,
	source ports.ActivitySource,
	mapper *Mapper,
	classifier *Classifier,
	gearResolver *GearResolver,
	logger ports.LoggerPort,
	validate *validator.Validate,
	metrics ports.MetricsPort,
	cache ports.CachePort,
) *ImportService {
	return &ImportService{
		activityRepo: activityRepo,
		source:       source,
		mapper:       mapper,
		classifier:   classifier,
		gearResolver: gearResolver,
		logger:       logger,
		validate:     validate,
		metrics:      metrics,
		cache:        cache,
	}
}

// Import runs one synchronization pass. Re-running with an overlapping window
// is safe: reconciliation is keyed on the remote identifier.
func (s *ImportService) Import(ctx context.Context, opts ImportOptions) (ImportResult, error) {
	var result ImportResult

	if opts.Limit <= 0 {
		opts.Limit = DefaultImportLimit
	}

	if err := s.classifier.EnsureTags(ctx); err != nil {
		return result, fmt.Errorf("failed to ensure tag set: %w", err)
	}

	if err := s.applyWindowDefaults(ctx, &opts); err != nil {
		return result, err
	}

	s.logger.Info("Importing activities", map[string]interface{}{
		"after":          formatWindowBound(opts.After),
		"before":         formatWindowBound(opts.Before),
		"limit":          opts.Limit,
		"fast":           opts.Fast,
		"perform_update": opts.PerformUpdate,
	})

	records, err := s.source.GetActivities(ctx, opts.After, opts.Before, opts.Limit)
	if err != nil {
		return result, fmt.Errorf("failed to fetch activities: %w", err)
	}

	for _, record := range records {
		existing, err := s.activityRepo.GetActivityByStravaID(ctx, record.ID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return result, fmt.Errorf("failed to look up activity %d: %w", record.ID, err)
		}
		if existing != nil && !opts.PerformUpdate {
			result.Skipped++
			continue
		}

		if !opts.Fast {
			record, err = s.source.GetActivity(ctx, record.ID)
			if err != nil {
				return result, fmt.Errorf("failed to fetch activity detail %d: %w", record.ID, err)
			}
		}

		if err := s.reconcileRecord(ctx, record, existing, &result); err != nil {
			// Per-record failure: log and carry on with the next record.
			result.Skipped++
			s.logger.Warn("Unable to import activity", map[string]interface{}{
				"strava_id": record.ID,
				"name":      record.Name,
				"start":     record.StartDate,
				"error":     err.Error(),
			})
		}
	}

	s.metrics.RecordImportRun(result.Created, result.Updated, result.Skipped, result.GearCreated)
	if result.Created > 0 || result.Updated > 0 {
		if err := s.cache.DeleteByPrefix(statsCachePrefix); err != nil {
			s.logger.Warn("Failed to invalidate stats cache", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	s.logger.Info("Import run finished", map[string]interface{}{
		"created":      result.Created,
		"updated":      result.Updated,
		"skipped":      result.Skipped,
		"gear_created": result.GearCreated,
	})
	return result, nil
}

// reconcileRecord creates or updates one activity and derives its tags and
// gear link. A persistence failure skips the record; tag and gear derivation
// failures are logged but the persisted record still counts, since its row is
// already safely in the store.
func (s *ImportService) reconcileRecord(ctx context.Context, record *domain.RemoteActivity, existing *domain.Activity, result *ImportResult) error {
	activity := s.mapper.MapActivity(record)

	if err := s.validate.Struct(activity); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	var persisted *domain.Activity
	var err error
	if existing != nil {
		activity.ID = existing.ID
		persisted, err = s.activityRepo.UpdateActivity(ctx, activity)
		if err != nil {
			return err
		}
		result.Updated++
	} else {
		activity.ID = uuid.New()
		persisted, err = s.activityRepo.CreateActivity(ctx, activity)
		if err != nil {
			return err
		}
		result.Created++
	}

	if err := s.classifier.ClassifyActivity(ctx, persisted); err != nil {
		s.logger.Warn("Failed to classify activity", map[string]interface{}{
			"activity_id": persisted.ID,
			"error":       err.Error(),
		})
	}

	_, gearCreated, err := s.gearResolver.ResolveGear(ctx, record, persisted.ID)
	if err != nil {
		s.logger.Warn("Failed to resolve gear for activity", map[string]interface{}{
			"activity_id": persisted.ID,
			"gear_id":     record.GearID,
			"error":       err.Error(),
		})
	}
	if gearCreated {
		result.GearCreated++
	}
	return nil
}

// applyWindowDefaults fills an unbounded window: continue from the newest
// stored activity, or import everything up to now on an empty store.
func (s *ImportService) applyWindowDefaults(ctx context.Context, opts *ImportOptions) error {
	if opts.After != nil || opts.Before != nil {
		return nil
	}
	latest, err := s.activityRepo.LatestStart(ctx)
	if err != nil {
		return fmt.Errorf("failed to read latest activity start: %w", err)
	}
	if latest != nil {
		opts.After = latest
	} else {
		now := time.Now()
		opts.Before = &now
	}
	return nil
}

func formatWindowBound(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.RFC3339)
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
