package postgres

import (
	"context"
	"database/sql"

	"github.com/polasekp/strats/internal/core/domain"
)

// TokenRepository persists the single Strava token pair. The table holds one
// row, keyed by a constant id.
type TokenRepository struct {
	db *sql.DB
}

func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) GetToken(ctx context.Context) (*domain.StravaToken, error) {
	query := `SELECT access_token, refresh_token, expires_at, updated_at FROM strava_tokens WHERE id = 1`

	token := &domain.StravaToken{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&token.AccessToken,
		&token.RefreshToken,
		&token.ExpiresAt,
		&token.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return token, nil
}

func (r *TokenRepository) SaveToken(ctx context.Context, token *domain.StravaToken) error {
	query := `INSERT INTO strava_tokens (id, access_token, refresh_token, expires_at, updated_at)
		VALUES (1, $1, $2, $3, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE
		SET access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			updated_at = CURRENT_TIMESTAMP`

	_, err := r.db.ExecContext(ctx, query, token.AccessToken, token.RefreshToken, token.ExpiresAt)
	return err
}
