package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/polasekp/strats/internal/core/domain"
	"github.com/polasekp/strats/internal/core/ports"
)

type ActivityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

const activityColumns = `id, strava_id, name, description, athlete_id, external_id, device_name,
	distance, average_speed, max_speed, average_heartrate, max_heartrate, average_cadence,
	average_power, max_power, weighted_average_power, has_power_meter, calories, kcal,
	average_temp, suffer_score, elevation_gain,
	start_time, moving_time_s, elapsed_time_s,
	start_lat, start_lon, end_lat, end_lon,
	type, type_strava,
	kudos_count, photo_count, achievement_count, comment_count, pr_count, punctures_count,
	race, flagged, commute, manual, private, has_heartrate, visibility, athlete_count,
	created_at, updated_at`

func (r *ActivityRepository) CreateActivity(ctx context.Context, activity *domain.Activity) (*domain.Activity, error) {
	query := `INSERT INTO activities (id, strava_id, name, description, athlete_id, external_id, device_name,
		distance, average_speed, max_speed, average_heartrate, max_heartrate, average_cadence,
		average_power, max_power, weighted_average_power, has_power_meter, calories, kcal,
		average_temp, suffer_score, elevation_gain,
		start_time, moving_time_s, elapsed_time_s,
		start_lat, start_lon, end_lat, end_lon,
		type, type_strava,
		kudos_count, photo_count, achievement_count, comment_count, pr_count, punctures_count,
		race, flagged, commute, manual, private, has_heartrate, visibility, athlete_count)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19,
		$20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34, $35, $36, $37,
		$38, $39, $40, $41, $42, $43, $44, $45)
	RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, activityArgs(activity)...).Scan(
		&activity.CreatedAt,
		&activity.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return nil, domain.ErrDuplicateRemoteID
			case "23502":
				return nil, fmt.Errorf("required field is missing")
			default:
				return nil, err
			}
		}
		return nil, err
	}
	return activity, nil
}

func (r *ActivityRepository) UpdateActivity(ctx context.Context, activity *domain.Activity) (*domain.Activity, error) {
	query := `UPDATE activities
		SET strava_id = $2, name = $3, description = $4, athlete_id = $5, external_id = $6, device_name = $7,
			distance = $8, average_speed = $9, max_speed = $10, average_heartrate = $11, max_heartrate = $12,
			average_cadence = $13, average_power = $14, max_power = $15, weighted_average_power = $16,
			has_power_meter = $17, calories = $18, kcal = $19, average_temp = $20, suffer_score = $21,
			elevation_gain = $22, start_time = $23, moving_time_s = $24, elapsed_time_s = $25,
			start_lat = $26, start_lon = $27, end_lat = $28, end_lon = $29,
			type = $30, type_strava = $31,
			kudos_count = $32, photo_count = $33, achievement_count = $34, comment_count = $35,
			pr_count = $36, punctures_count = $37,
			race = $38, flagged = $39, commute = $40, manual = $41, private = $42, has_heartrate = $43,
			visibility = $44, athlete_count = $45,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, activityArgs(activity)...).Scan(
		&activity.CreatedAt,
		&activity.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("error updating activity: %w", err)
	}
	return activity, nil
}

func (r *ActivityRepository) GetActivityByID(ctx context.Context, id uuid.UUID) (*domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE id = $1`

	activity, err := scanActivity(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	if err := r.loadLinks(ctx, activity); err != nil {
		return nil, err
	}
	return activity, nil
}

func (r *ActivityRepository) GetActivityByStravaID(ctx context.Context, stravaID int64) (*domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE strava_id = $1`

	activity, err := scanActivity(r.db.QueryRowContext(ctx, query, stravaID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	if err := r.loadLinks(ctx, activity); err != nil {
		return nil, err
	}
	return activity, nil
}

func (r *ActivityRepository) ListActivities(ctx context.Context, filter ports.ActivityFilter) ([]*domain.Activity, error) {
	var conditions []string
	var args []interface{}

	if len(filter.Types) > 0 {
		types := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			types[i] = string(t)
		}
		args = append(args, pq.Array(types))
		conditions = append(conditions, fmt.Sprintf("a.type = ANY($%d)", len(args)))
	}
	if filter.TagName != "" {
		args = append(args, filter.TagName)
		conditions = append(conditions, fmt.Sprintf(
			`EXISTS (SELECT 1 FROM activity_tags at JOIN tags t ON t.id = at.tag_id
				WHERE at.activity_id = a.id AND t.name = $%d)`, len(args)))
	}
	if filter.GearID != nil {
		args = append(args, *filter.GearID)
		conditions = append(conditions, fmt.Sprintf(
			`EXISTS (SELECT 1 FROM activity_gears ag WHERE ag.activity_id = a.id AND ag.gear_id = $%d)`, len(args)))
	}
	if filter.Year != nil {
		args = append(args, *filter.Year)
		conditions = append(conditions, fmt.Sprintf("EXTRACT(YEAR FROM a.start_time) = $%d", len(args)))
	}
	if filter.StartFrom != nil {
		args = append(args, *filter.StartFrom)
		conditions = append(conditions, fmt.Sprintf("a.start_time >= $%d", len(args)))
	}
	if filter.StartTo != nil {
		args = append(args, *filter.StartTo)
		conditions = append(conditions, fmt.Sprintf("a.start_time <= $%d", len(args)))
	}

	query := `SELECT ` + prefixColumns(activityColumns, "a.") + ` FROM activities a`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY a.start_time DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []*domain.Activity
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for _, activity := range activities {
		if err := r.loadLinks(ctx, activity); err != nil {
			return nil, err
		}
	}
	return activities, nil
}

func (r *ActivityRepository) CountActivities(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ActivityRepository) LatestStart(ctx context.Context) (*time.Time, error) {
	var latest sql.NullTime
	if err := r.db.QueryRowContext(ctx, `SELECT MAX(start_time) FROM activities`).Scan(&latest); err != nil {
		return nil, err
	}
	if !latest.Valid {
		return nil, nil
	}
	return &latest.Time, nil
}

func (r *ActivityRepository) AddGearToActivity(ctx context.Context, activityID, gearID uuid.UUID) error {
	return r.addLink(ctx, `INSERT INTO activity_gears (activity_id, gear_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		activityID, gearID)
}

func (r *ActivityRepository) AddTagToActivity(ctx context.Context, activityID, tagID uuid.UUID) error {
	return r.addLink(ctx, `INSERT INTO activity_tags (activity_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		activityID, tagID)
}

func (r *ActivityRepository) AddAthleteToActivity(ctx context.Context, activityID, athleteID uuid.UUID) error {
	return r.addLink(ctx, `INSERT INTO activity_athletes (activity_id, athlete_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		activityID, athleteID)
}

func (r *ActivityRepository) addLink(ctx context.Context, query string, activityID, linkedID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, query, activityID, linkedID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

// loadLinks attaches the activity's tags and gear from the link tables.
func (r *ActivityRepository) loadLinks(ctx context.Context, activity *domain.Activity) error {
	tagRows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.name, t.created_at FROM tags t
		JOIN activity_tags at ON at.tag_id = t.id
		WHERE at.activity_id = $1
		ORDER BY t.name`, activity.ID)
	if err != nil {
		return err
	}
	defer tagRows.Close()

	activity.Tags = nil
	for tagRows.Next() {
		tag := &domain.Tag{}
		if err := tagRows.Scan(&tag.ID, &tag.Name, &tag.CreatedAt); err != nil {
			return err
		}
		activity.Tags = append(activity.Tags, tag)
	}
	if err = tagRows.Err(); err != nil {
		return err
	}

	gearRows, err := r.db.QueryContext(ctx,
		`SELECT g.id, g.name, g.type, g.strava_id, g.is_active, g.retired_at, g.created_at, g.updated_at
		FROM gears g
		JOIN activity_gears ag ON ag.gear_id = g.id
		WHERE ag.activity_id = $1
		ORDER BY g.name`, activity.ID)
	if err != nil {
		return err
	}
	defer gearRows.Close()

	activity.Gear = nil
	for gearRows.Next() {
		gear := &domain.Gear{}
		if err := gearRows.Scan(&gear.ID, &gear.Name, &gear.Type, &gear.StravaID,
			&gear.IsActive, &gear.RetiredAt, &gear.CreatedAt, &gear.UpdatedAt); err != nil {
			return err
		}
		activity.Gear = append(activity.Gear, gear)
	}
	return gearRows.Err()
}

// activityArgs lists the insert/update arguments in column order, id first.
func activityArgs(a *domain.Activity) []interface{} {
	return []interface{}{
		a.ID, a.StravaID, a.Name, a.Description, a.AthleteID, a.ExternalID, a.DeviceName,
		a.Distance, a.AverageSpeed, a.MaxSpeed, a.AverageHeartrate, a.MaxHeartrate, a.AverageCadence,
		a.AveragePower, a.MaxPower, a.WeightedAveragePower, a.HasPowerMeter, a.Calories, a.Kcal,
		a.AverageTemp, a.SufferScore, a.ElevationGain,
		a.Start, durationToSeconds(a.MovingTime), int64(a.ElapsedTime / time.Second),
		a.StartLat, a.StartLon, a.EndLat, a.EndLon,
		string(a.Type), a.TypeStrava,
		a.KudosCount, a.PhotoCount, a.AchievementCount, a.CommentCount, a.PRCount, a.PuncturesCount,
		a.Race, a.Flagged, a.Commute, a.Manual, a.Private, a.HasHeartrate, a.Visibility, a.AthleteCount,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanActivity(row rowScanner) (*domain.Activity, error) {
	activity := &domain.Activity{}
	var movingSeconds sql.NullInt64
	var elapsedSeconds int64

	err := row.Scan(
		&activity.ID, &activity.StravaID, &activity.Name, &activity.Description,
		&activity.AthleteID, &activity.ExternalID, &activity.DeviceName,
		&activity.Distance, &activity.AverageSpeed, &activity.MaxSpeed,
		&activity.AverageHeartrate, &activity.MaxHeartrate, &activity.AverageCadence,
		&activity.AveragePower, &activity.MaxPower, &activity.WeightedAveragePower,
		&activity.HasPowerMeter, &activity.Calories, &activity.Kcal,
		&activity.AverageTemp, &activity.SufferScore, &activity.ElevationGain,
		&activity.Start, &movingSeconds, &elapsedSeconds,
		&activity.StartLat, &activity.StartLon, &activity.EndLat, &activity.EndLon,
		&activity.Type, &activity.TypeStrava,
		&activity.KudosCount, &activity.PhotoCount, &activity.AchievementCount,
		&activity.CommentCount, &activity.PRCount, &activity.PuncturesCount,
		&activity.Race, &activity.Flagged, &activity.Commute, &activity.Manual,
		&activity.Private, &activity.HasHeartrate, &activity.Visibility, &activity.AthleteCount,
		&activity.CreatedAt, &activity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if movingSeconds.Valid {
		moving := time.Duration(movingSeconds.Int64) * time.Second
		activity.MovingTime = &moving
	}
	activity.ElapsedTime = time.Duration(elapsedSeconds) * time.Second
	return activity, nil
}

func durationToSeconds(d *time.Duration) *int64 {
	if d == nil {
		return nil
	}
	s := int64(*d / time.Second)
	return &s
}

func prefixColumns(columns, prefix string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = prefix + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}
