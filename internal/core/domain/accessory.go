package domain

import (
	"time"

	"github.com/google/uuid"
)

type AccessoryType string

const (
	AccessoryChain AccessoryType = "chain"
	AccessoryTyre  AccessoryType = "tyre"
	AccessoryTube  AccessoryType = "tube"
	AccessoryOther AccessoryType = "other"
)

// Accessory is a wear part mounted on a Gear for a bounded time window.
// Its relation to activities is not stored: an activity belongs to the
// accessory when it ran on the same gear and started inside the window.
// At most one active accessory of a given type may exist per gear.
type Accessory struct {
	ID             uuid.UUID     `json:"id"`
	Name           string        `json:"name" validate:"required,max=50"`
	Type           AccessoryType `json:"type" validate:"required"`
	Description    string        `json:"description,omitempty"`
	GearID         uuid.UUID     `json:"gear_id" validate:"required"`
	RegisteredAt   time.Time     `json:"registered_at" validate:"required"`
	DeregisteredAt *time.Time    `json:"deregistered_at,omitempty"`
	IsActive       bool          `json:"is_active"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// Covers reports whether t falls inside the accessory's installed window.
// An open-ended window (no deregistration) covers everything after RegisteredAt.
func (a *Accessory) Covers(t time.Time) bool {
	if t.Before(a.RegisteredAt) {
		return false
	}
	return a.DeregisteredAt == nil || !t.After(*a.DeregisteredAt)
}
