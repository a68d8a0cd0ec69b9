package repository

import (
	"context"
	"time"

	"github.com/rgillard/planlog/internal/domain"

	"github.com/google/uuid"
)

// ProfileRepository defines the interface for profile operations
type ProfileRepository interface {
	Create(ctx context.Context, profile domain.Profile) (domain.Profile, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Profile, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Profile, error)
	GetByName(ctx context.Context, name string) (domain.Profile, error)
	List(ctx context.Context) ([]domain.Profile, error)
	UpdateTimezone(ctx context.Context, id uuid.UUID, timezone string) (domain.Profile, error)
}

// EventRepository defines the interface for event operations. UpdatePartial
// writes only the supplied fields and returns the post-update row.
type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Event, error)
	List(ctx context.Context, profileName *string) ([]domain.Event, error)
	UpdatePartial(ctx context.Context, id uuid.UUID, fields EventUpdateFields) (domain.Event, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// EventUpdateFields carries the resolved values of a sparse event update.
// Nil fields were not supplied and keep their stored value.
type EventUpdateFields struct {
	Profiles   []string
	ProfileIDs []uuid.UUID
	Timezone   *string
	Start      *time.Time
	End        *time.Time
}

// EventLogRepository is the append-only audit store for event updates.
// Entries are never updated or deleted.
type EventLogRepository interface {
	Append(ctx context.Context, log domain.EventLog) error
	ListForEvent(ctx context.Context, eventID uuid.UUID) ([]domain.EventLog, error)
}

// ImportLogRepository stores bulk-import row errors for observability.
type ImportLogRepository interface {
	Record(ctx context.Context, entry domain.ImportLogEntry) error
	List(ctx context.Context, fileName string, limit int, offset int) ([]domain.ImportLogEntry, error)
}
