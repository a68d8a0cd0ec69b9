package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTimezone is assigned to profiles created without an explicit zone.
const DefaultTimezone = "Asia/Kolkata"

// Profile is a named actor that can be associated with events. The timezone
// is the profile's home IANA zone and is the only field that may change after
// creation.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewProfile creates a profile, trimming the name and falling back to the
// default timezone when none is supplied.
func NewProfile(name, timezone string) (Profile, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Profile{}, NewValidationError("name", "name is required")
	}
	if strings.TrimSpace(timezone) == "" {
		timezone = DefaultTimezone
	}

	now := time.Now()
	return Profile{
		ID:        uuid.New(),
		Name:      trimmed,
		Timezone:  timezone,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
