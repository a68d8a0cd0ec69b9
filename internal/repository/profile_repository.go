package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/rgillard/planlog/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// profileRepository implements ProfileRepository backed by pgxpool.
type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

func (r *profileRepository) Create(ctx context.Context, profile domain.Profile) (domain.Profile, error) {
	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO profiles (id, name, timezone)
		 VALUES ($1, $2, $3)
		 RETURNING id, name, timezone, created_at, updated_at`,
		profile.ID,
		profile.Name,
		profile.Timezone,
	)

	created, err := scanProfile(row)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("failed to create profile: %w", err)
	}
	return created, nil
}

func (r *profileRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Profile, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, name, timezone, created_at, updated_at
		 FROM profiles
		 WHERE id = $1`,
		id,
	)

	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, fmt.Errorf("profile %s: %w", id, domain.ErrNotFound)
		}
		return domain.Profile{}, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

func (r *profileRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Profile, error) {
	if len(ids) == 0 {
		return []domain.Profile{}, nil
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT id, name, timezone, created_at, updated_at
		 FROM profiles
		 WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get profiles by ids: %w", err)
	}
	defer rows.Close()

	return collectProfiles(rows)
}

func (r *profileRepository) GetByName(ctx context.Context, name string) (domain.Profile, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, name, timezone, created_at, updated_at
		 FROM profiles
		 WHERE name = $1`,
		name,
	)

	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, fmt.Errorf("profile %q: %w", name, domain.ErrNotFound)
		}
		return domain.Profile{}, fmt.Errorf("failed to get profile by name: %w", err)
	}
	return profile, nil
}

func (r *profileRepository) List(ctx context.Context) ([]domain.Profile, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, name, timezone, created_at, updated_at
		 FROM profiles
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	return collectProfiles(rows)
}

func (r *profileRepository) UpdateTimezone(ctx context.Context, id uuid.UUID, timezone string) (domain.Profile, error) {
	row := r.pool.QueryRow(
		ctx,
		`UPDATE profiles
		 SET timezone = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING id, name, timezone, created_at, updated_at`,
		id,
		timezone,
	)

	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, fmt.Errorf("profile %s: %w", id, domain.ErrNotFound)
		}
		return domain.Profile{}, fmt.Errorf("failed to update profile timezone: %w", err)
	}
	return profile, nil
}

func scanProfile(row pgx.Row) (domain.Profile, error) {
	var profile domain.Profile
	if err := row.Scan(
		&profile.ID,
		&profile.Name,
		&profile.Timezone,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		return domain.Profile{}, err
	}
	return profile, nil
}

func collectProfiles(rows pgx.Rows) ([]domain.Profile, error) {
	profiles := []domain.Profile{}
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate profiles: %w", err)
	}
	return profiles, nil
}
