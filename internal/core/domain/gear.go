package domain

import (
	"time"

	"github.com/google/uuid"
)

type GearType string

const (
	GearShoe  GearType = "shoe"
	GearBike  GearType = "bike"
	GearSki   GearType = "ski"
	GearOther GearType = "other"
)

// Gear is a reusable piece of equipment. Gear referenced by Strava carries the
// remote StravaID and is resolved by it, never recreated.
type Gear struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name" validate:"required,max=50"`
	Type      GearType   `json:"type" validate:"required"`
	StravaID  *string    `json:"strava_id,omitempty"`
	IsActive  bool       `json:"is_active"`
	RetiredAt *time.Time `json:"retired_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
