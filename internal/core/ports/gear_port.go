package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/polasekp/strats/internal/core/domain"
)

type GearRepository interface {
	CreateGear(ctx context.Context, gear *domain.Gear) (*domain.Gear, error)
	GetGearByID(ctx context.Context, id uuid.UUID) (*domain.Gear, error)
	// GetGearByStravaID returns domain.ErrNotFound for unseen remote ids.
	GetGearByStravaID(ctx context.Context, stravaID string) (*domain.Gear, error)
	ListGear(ctx context.Context) ([]*domain.Gear, error)
	UpdateGear(ctx context.Context, gear *domain.Gear) (*domain.Gear, error)
}

type AccessoryRepository interface {
	CreateAccessory(ctx context.Context, accessory *domain.Accessory) (*domain.Accessory, error)
	GetAccessoryByID(ctx context.Context, id uuid.UUID) (*domain.Accessory, error)
	ListAccessoriesByGear(ctx context.Context, gearID uuid.UUID) ([]*domain.Accessory, error)
	// GetActiveAccessory returns the single active accessory of the given type
	// on the gear, or domain.ErrNotFound.
	GetActiveAccessory(ctx context.Context, gearID uuid.UUID, accessoryType domain.AccessoryType) (*domain.Accessory, error)
	UpdateAccessory(ctx context.Context, accessory *domain.Accessory) (*domain.Accessory, error)
}
