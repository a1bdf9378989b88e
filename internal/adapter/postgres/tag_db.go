package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/polasekp/strats/internal/core/domain"
)

type TagRepository struct {
	db *sql.DB
}

func NewTagRepository(db *sql.DB) *TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) CreateTag(ctx context.Context, tag *domain.Tag) (*domain.Tag, error) {
	query := `INSERT INTO tags (id, name) VALUES ($1, $2) RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query, tag.ID, tag.Name).Scan(&tag.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, domain.ErrDuplicateRemoteID
		}
		return nil, err
	}
	return tag, nil
}

func (r *TagRepository) GetTagByName(ctx context.Context, name string) (*domain.Tag, error) {
	query := `SELECT id, name, created_at FROM tags WHERE name = $1`

	tag := &domain.Tag{}
	err := r.db.QueryRowContext(ctx, query, name).Scan(&tag.ID, &tag.Name, &tag.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return tag, nil
}

func (r *TagRepository) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM tags ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		tag := &domain.Tag{}
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.CreatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}

type AthleteRepository struct {
	db *sql.DB
}

func NewAthleteRepository(db *sql.DB) *AthleteRepository {
	return &AthleteRepository{db: db}
}

func (r *AthleteRepository) CreateAthlete(ctx context.Context, athlete *domain.Athlete) (*domain.Athlete, error) {
	query := `INSERT INTO athletes (id, first_name, last_name, nickname)
		VALUES ($1, $2, $3, $4) RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		athlete.ID,
		athlete.FirstName,
		athlete.LastName,
		athlete.Nickname,
	).Scan(&athlete.CreatedAt)
	if err != nil {
		return nil, err
	}
	return athlete, nil
}

func (r *AthleteRepository) ListAthletes(ctx context.Context) ([]*domain.Athlete, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, first_name, last_name, nickname, created_at FROM athletes ORDER BY first_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var athletes []*domain.Athlete
	for rows.Next() {
		athlete := &domain.Athlete{}
		if err := rows.Scan(&athlete.ID, &athlete.FirstName, &athlete.LastName,
			&athlete.Nickname, &athlete.CreatedAt); err != nil {
			return nil, err
		}
		athletes = append(athletes, athlete)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return athletes, nil
}
