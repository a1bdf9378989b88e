package ports

import (
	"context"

	"github.com/polasekp/strats/internal/core/domain"
)

type TagRepository interface {
	CreateTag(ctx context.Context, tag *domain.Tag) (*domain.Tag, error)
	// GetTagByName returns domain.ErrNotFound for unknown names.
	GetTagByName(ctx context.Context, name string) (*domain.Tag, error)
	ListTags(ctx context.Context) ([]*domain.Tag, error)
}

type AthleteRepository interface {
	CreateAthlete(ctx context.Context, athlete *domain.Athlete) (*domain.Athlete, error)
	ListAthletes(ctx context.Context) ([]*domain.Athlete, error)
}

type TokenRepository interface {
	// GetToken returns the stored token pair, or domain.ErrNotFound before the
	// first authorization.
	GetToken(ctx context.Context) (*domain.StravaToken, error)
	SaveToken(ctx context.Context, token *domain.StravaToken) error
}
