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

// eventRepository implements EventRepository backed by pgxpool.
type eventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new event repository
func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &eventRepository{pool: pool}
}

func (r *eventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO events (id, profiles, profile_ids, timezone, start_at, end_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, profiles, profile_ids, timezone, start_at, end_at, created_at, updated_at`,
		event.ID,
		event.Profiles,
		profileIDsParam(event.ProfileIDs),
		event.Timezone,
		event.Start,
		event.End,
	)

	created, err := scanEvent(row)
	if err != nil {
		return domain.Event{}, fmt.Errorf("failed to create event: %w", err)
	}
	return created, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Event, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, profiles, profile_ids, timezone, start_at, end_at, created_at, updated_at
		 FROM events
		 WHERE id = $1`,
		id,
	)

	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Event{}, fmt.Errorf("event %s: %w", id, domain.ErrNotFound)
		}
		return domain.Event{}, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// List returns events newest first, optionally filtered to those whose
// profile name set contains the given name.
func (r *eventRepository) List(ctx context.Context, profileName *string) ([]domain.Event, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, profiles, profile_ids, timezone, start_at, end_at, created_at, updated_at
		 FROM events
		 WHERE $1::text IS NULL OR profiles @> ARRAY[$1::text]
		 ORDER BY created_at DESC`,
		profileName,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		event, scanErr := scanEvent(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan event: %w", scanErr)
		}
		events = append(events, event)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", rowsErr)
	}

	return events, nil
}

// UpdatePartial writes only the supplied fields; nil fields keep their stored
// value via COALESCE. Returns the fully-resolved post-update row.
func (r *eventRepository) UpdatePartial(ctx context.Context, id uuid.UUID, fields EventUpdateFields) (domain.Event, error) {
	row := r.pool.QueryRow(
		ctx,
		`UPDATE events SET
			profiles    = COALESCE($2, profiles),
			profile_ids = COALESCE($3, profile_ids),
			timezone    = COALESCE($4, timezone),
			start_at    = COALESCE($5, start_at),
			end_at      = COALESCE($6, end_at),
			updated_at  = now()
		 WHERE id = $1
		 RETURNING id, profiles, profile_ids, timezone, start_at, end_at, created_at, updated_at`,
		id,
		fields.Profiles,
		profileIDsParam(fields.ProfileIDs),
		fields.Timezone,
		fields.Start,
		fields.End,
	)

	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Event{}, fmt.Errorf("event %s: %w", id, domain.ErrNotFound)
		}
		return domain.Event{}, fmt.Errorf("failed to update event: %w", err)
	}
	return event, nil
}

func (r *eventRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`,
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check event existence: %w", err)
	}
	return exists, nil
}

func scanEvent(row pgx.Row) (domain.Event, error) {
	var event domain.Event
	if err := row.Scan(
		&event.ID,
		&event.Profiles,
		&event.ProfileIDs,
		&event.Timezone,
		&event.Start,
		&event.End,
		&event.CreatedAt,
		&event.UpdatedAt,
	); err != nil {
		return domain.Event{}, err
	}
	return event, nil
}

// profileIDsParam keeps nil slices NULL so COALESCE can fall back, while a
// present-but-empty slice still clears the column.
func profileIDsParam(ids []uuid.UUID) any {
	if ids == nil {
		return nil
	}
	return ids
}
