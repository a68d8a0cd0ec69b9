package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event is a scheduled time range associated with one or more profiles.
// Profiles holds denormalized display names (kept verbatim even if a profile
// is later renamed); ProfileIDs are weak references, so a missing referent
// does not invalidate the event. Timezone is the authoring zone, independent
// of each profile's own home zone.
type Event struct {
	ID         uuid.UUID   `json:"id"`
	Profiles   []string    `json:"profiles"`
	ProfileIDs []uuid.UUID `json:"profileIds"`
	Timezone   string      `json:"timezone"`
	Start      time.Time   `json:"start"`
	End        time.Time   `json:"end"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// CreateEventInput carries the full payload required to create an event.
// Start and End arrive as raw timestamp strings and are parsed during
// validation.
type CreateEventInput struct {
	Profiles   []string    `json:"profiles"`
	ProfileIDs []uuid.UUID `json:"profileIds"`
	Timezone   string      `json:"timezone"`
	Start      string      `json:"start"`
	End        string      `json:"end"`
}

// Validate checks the creation preconditions and returns the parsed
// boundaries. Every failure is a ValidationError naming the offending field.
func (in CreateEventInput) Validate() (start, end time.Time, err error) {
	if len(in.Profiles) == 0 {
		return time.Time{}, time.Time{}, NewValidationError("profiles", "at least one profile is required")
	}
	if in.Timezone == "" {
		return time.Time{}, time.Time{}, NewValidationError("timezone", "timezone is required")
	}
	if in.Start == "" || in.End == "" {
		return time.Time{}, time.Time{}, NewValidationError("start", "start and end date/times are required")
	}

	start, ok := ParseInstant(in.Start)
	if !ok {
		return time.Time{}, time.Time{}, NewValidationError("start", "not a recognized date/time")
	}
	end, ok = ParseInstant(in.End)
	if !ok {
		return time.Time{}, time.Time{}, NewValidationError("end", "not a recognized date/time")
	}
	if err := ValidateRange(start, end); err != nil {
		return time.Time{}, time.Time{}, err
	}

	return start, end, nil
}

// ValidateRange enforces the temporal invariant: end strictly after start.
// Equal boundaries fail.
func ValidateRange(start, end time.Time) error {
	if !end.After(start) {
		return NewValidationError("end", "end date/time must be after start date/time")
	}
	return nil
}

// EventPatch is a sparse partial update. A nil field was not supplied by the
// caller and must be left untouched; the differ and the storage layer both
// honor that distinction. Start and End stay raw strings until normalized.
type EventPatch struct {
	Profiles   []string    `json:"profiles"`
	ProfileIDs []uuid.UUID `json:"profileIds"`
	Timezone   *string     `json:"timezone"`
	Start      *string     `json:"start"`
	End        *string     `json:"end"`
}

// Empty reports whether the patch carries no fields at all.
func (p EventPatch) Empty() bool {
	return p.Profiles == nil && p.ProfileIDs == nil && p.Timezone == nil && p.Start == nil && p.End == nil
}
