package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/polasekp/strats/internal/core/domain"
)

type AccessoryRepository struct {
	db *sql.DB
}

func NewAccessoryRepository(db *sql.DB) *AccessoryRepository {
	return &AccessoryRepository{db: db}
}

func (r *AccessoryRepository) CreateAccessory(ctx context.Context, accessory *domain.Accessory) (*domain.Accessory, error) {
	query := `INSERT INTO accessories (id, name, type, description, gear_id, registered_at, deregistered_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		accessory.ID,
		accessory.Name,
		accessory.Type,
		accessory.Description,
		accessory.GearID,
		accessory.RegisteredAt,
		accessory.DeregisteredAt,
		accessory.IsActive,
	).Scan(
		&accessory.CreatedAt,
		&accessory.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				// the partial unique index on (gear_id, type) WHERE is_active
				return nil, domain.ErrActiveAccessoryExists
			case "23502":
				return nil, fmt.Errorf("required field is missing")
			case "23503":
				return nil, fmt.Errorf("gear does not exist")
			default:
				return nil, err
			}
		}
		return nil, err
	}
	return accessory, nil
}

func (r *AccessoryRepository) GetAccessoryByID(ctx context.Context, id uuid.UUID) (*domain.Accessory, error) {
	query := `SELECT id, name, type, description, gear_id, registered_at, deregistered_at, is_active, created_at, updated_at
		FROM accessories WHERE id = $1`

	return scanAccessory(r.db.QueryRowContext(ctx, query, id))
}

func (r *AccessoryRepository) ListAccessoriesByGear(ctx context.Context, gearID uuid.UUID) ([]*domain.Accessory, error) {
	query := `SELECT id, name, type, description, gear_id, registered_at, deregistered_at, is_active, created_at, updated_at
		FROM accessories WHERE gear_id = $1
		ORDER BY registered_at DESC`

	rows, err := r.db.QueryContext(ctx, query, gearID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accessories []*domain.Accessory
	for rows.Next() {
		accessory := &domain.Accessory{}
		err := rows.Scan(
			&accessory.ID,
			&accessory.Name,
			&accessory.Type,
			&accessory.Description,
			&accessory.GearID,
			&accessory.RegisteredAt,
			&accessory.DeregisteredAt,
			&accessory.IsActive,
			&accessory.CreatedAt,
			&accessory.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		accessories = append(accessories, accessory)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return accessories, nil
}

func (r *AccessoryRepository) GetActiveAccessory(ctx context.Context, gearID uuid.UUID, accessoryType domain.AccessoryType) (*domain.Accessory, error) {
	query := `SELECT id, name, type, description, gear_id, registered_at, deregistered_at, is_active, created_at, updated_at
		FROM accessories WHERE gear_id = $1 AND type = $2 AND is_active`

	return scanAccessory(r.db.QueryRowContext(ctx, query, gearID, accessoryType))
}

func (r *AccessoryRepository) UpdateAccessory(ctx context.Context, accessory *domain.Accessory) (*domain.Accessory, error) {
	query := `UPDATE accessories
		SET name = $2, type = $3, description = $4, registered_at = $5, deregistered_at = $6, is_active = $7,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		accessory.ID,
		accessory.Name,
		accessory.Type,
		accessory.Description,
		accessory.RegisteredAt,
		accessory.DeregisteredAt,
		accessory.IsActive,
	).Scan(
		&accessory.CreatedAt,
		&accessory.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("error updating accessory: %w", err)
	}
	return accessory, nil
}

func scanAccessory(row *sql.Row) (*domain.Accessory, error) {
	accessory := &domain.Accessory{}
	err := row.Scan(
		&accessory.ID,
		&accessory.Name,
		&accessory.Type,
		&accessory.Description,
		&accessory.GearID,
		&accessory.RegisteredAt,
		&accessory.DeregisteredAt,
		&accessory.IsActive,
		&accessory.CreatedAt,
		&accessory.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return accessory, nil
}
