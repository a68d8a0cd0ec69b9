package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChangeRecord is one field-level before/after pair captured when an event is
// updated. Old and new values are display strings (or nil for an absent
// value) by the time they reach storage or the wire; raw typed values never
// cross this boundary.
type ChangeRecord struct {
	Field    string  `json:"field"`
	OldValue *string `json:"oldValue"`
	NewValue *string `json:"newValue"`
}

// EventLog is one update's full set of change records. It references the
// event it describes without owning it, is created only when an update
// produced a non-empty diff, and is never mutated afterwards.
type EventLog struct {
	ID        uuid.UUID      `json:"id"`
	EventID   uuid.UUID      `json:"eventId"`
	Timestamp time.Time      `json:"timestamp"`
	Changes   []ChangeRecord `json:"changes"`
	CreatedAt time.Time      `json:"createdAt"`
}
