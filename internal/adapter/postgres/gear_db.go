package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/polasekp/strats/internal/core/domain"
)

type GearRepository struct {
	db *sql.DB
}

func NewGearRepository(db *sql.DB) *GearRepository {
	return &GearRepository{db: db}
}

func (r *GearRepository) CreateGear(ctx context.Context, gear *domain.Gear) (*domain.Gear, error) {
	query := `INSERT INTO gears (id, name, type, strava_id, is_active, retired_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		gear.ID,
		gear.Name,
		gear.Type,
		gear.StravaID,
		gear.IsActive,
		gear.RetiredAt,
	).Scan(
		&gear.CreatedAt,
		&gear.UpdatedAt,
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
	return gear, nil
}

func (r *GearRepository) GetGearByID(ctx context.Context, id uuid.UUID) (*domain.Gear, error) {
	query := `SELECT id, name, type, strava_id, is_active, retired_at, created_at, updated_at
		FROM gears WHERE id = $1`

	return r.scanGear(r.db.QueryRowContext(ctx, query, id))
}

func (r *GearRepository) GetGearByStravaID(ctx context.Context, stravaID string) (*domain.Gear, error) {
	query := `SELECT id, name, type, strava_id, is_active, retired_at, created_at, updated_at
		FROM gears WHERE strava_id = $1`

	return r.scanGear(r.db.QueryRowContext(ctx, query, stravaID))
}

func (r *GearRepository) ListGear(ctx context.Context) ([]*domain.Gear, error) {
	query := `SELECT id, name, type, strava_id, is_active, retired_at, created_at, updated_at
		FROM gears ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gears []*domain.Gear
	for rows.Next() {
		gear := &domain.Gear{}
		err := rows.Scan(
			&gear.ID,
			&gear.Name,
			&gear.Type,
			&gear.StravaID,
			&gear.IsActive,
			&gear.RetiredAt,
			&gear.CreatedAt,
			&gear.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		gears = append(gears, gear)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return gears, nil
}

func (r *GearRepository) UpdateGear(ctx context.Context, gear *domain.Gear) (*domain.Gear, error) {
	query := `UPDATE gears
		SET name = $2, type = $3, strava_id = $4, is_active = $5, retired_at = $6,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		gear.ID,
		gear.Name,
		gear.Type,
		gear.StravaID,
		gear.IsActive,
		gear.RetiredAt,
	).Scan(
		&gear.CreatedAt,
		&gear.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("error updating gear: %w", err)
	}
	return gear, nil
}

func (r *GearRepository) scanGear(row *sql.Row) (*domain.Gear, error) {
	gear := &domain.Gear{}
	err := row.Scan(
		&gear.ID,
		&gear.Name,
		&gear.Type,
		&gear.StravaID,
		&gear.IsActive,
		&gear.RetiredAt,
		&gear.CreatedAt,
		&gear.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return gear, nil
}
