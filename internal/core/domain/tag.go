package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tag is a named label attached to activities, unique by name.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name" validate:"required,max=30"`
	CreatedAt time.Time `json:"created_at"`
}

// Athlete is a participant other than the primary user, linked manually to
// activities. Informational only.
type Athlete struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name" validate:"required,max=50"`
	LastName  string    `json:"last_name,omitempty"`
	Nickname  string    `json:"nickname,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName prefers the nickname over the full name.
func (a *Athlete) DisplayName() string {
	if a.Nickname != "" {
		return a.Nickname
	}
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}
