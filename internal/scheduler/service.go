package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/rgillard/planlog/internal/domain"
	"github.com/rgillard/planlog/internal/repository"

	"github.com/google/uuid"
)

// Service orchestrates event creation, partial updates and the change log.
// Each operation runs as one request-scoped unit of work; concurrent updates
// of the same event race at the storage layer and the last write wins.
type Service struct {
	profiles repository.ProfileRepository
	events   repository.EventRepository
	logs     repository.EventLogRepository
	now      func() time.Time
}

// NewService creates a new scheduler service.
func NewService(
	profiles repository.ProfileRepository,
	events repository.EventRepository,
	logs repository.EventLogRepository,
) *Service {
	return &Service{
		profiles: profiles,
		events:   events,
		logs:     logs,
		now:      time.Now,
	}
}

// CreateEvent validates the full payload and persists a new event. Creation
// never produces a change log entry; the log records only the delta history
// of pre-existing events.
func (s *Service) CreateEvent(ctx context.Context, input domain.CreateEventInput) (domain.Event, error) {
	start, end, err := input.Validate()
	if err != nil {
		return domain.Event{}, err
	}

	profileIDs := input.ProfileIDs
	if profileIDs == nil {
		profileIDs = []uuid.UUID{}
	}

	event := domain.Event{
		ID:         uuid.New(),
		Profiles:   input.Profiles,
		ProfileIDs: profileIDs,
		Timezone:   input.Timezone,
		Start:      start,
		End:        end,
	}

	return s.events.Create(ctx, event)
}

// UpdateEvent applies a sparse patch to an existing event:
//
//  1. fetch the current snapshot (NotFound if absent)
//  2. diff the patch against it
//  3. empty diff: return the current entity unchanged, no write, no log
//  4. validate the patch and the resolved final start/end range
//  5. write the supplied fields
//  6. append one change log entry with the diff from step 2
//
// The range check uses resolved finals because changing only one boundary can
// still produce an invalid range against the other's stored value. The event
// write and the log append are not atomic: a crash in between loses the log
// entry, never the write.
func (s *Service) UpdateEvent(ctx context.Context, id uuid.UUID, patch domain.EventPatch) (domain.Event, error) {
	current, err := s.events.GetByID(ctx, id)
	if err != nil {
		return domain.Event{}, err
	}

	changes := domain.DiffEvent(current, patch)
	if len(changes) == 0 {
		return current, nil
	}

	fields, err := resolveUpdate(current, patch)
	if err != nil {
		return domain.Event{}, err
	}

	updated, err := s.events.UpdatePartial(ctx, id, fields)
	if err != nil {
		return domain.Event{}, err
	}

	entry := domain.EventLog{
		ID:        uuid.New(),
		EventID:   updated.ID,
		Timestamp: s.now(),
		Changes:   changes,
	}
	if err := s.logs.Append(ctx, entry); err != nil {
		return domain.Event{}, err
	}

	return updated, nil
}

// resolveUpdate validates the supplied fields and resolves the final
// start/end boundaries, patch values winning over stored ones. Required
// fields cannot be cleared by an update.
func resolveUpdate(current domain.Event, patch domain.EventPatch) (repository.EventUpdateFields, error) {
	var fields repository.EventUpdateFields

	if patch.Profiles != nil {
		if len(patch.Profiles) == 0 {
			return fields, domain.NewValidationError("profiles", "at least one profile is required")
		}
		fields.Profiles = patch.Profiles
	}
	fields.ProfileIDs = patch.ProfileIDs

	if patch.Timezone != nil {
		if *patch.Timezone == "" {
			return fields, domain.NewValidationError("timezone", "timezone is required")
		}
		fields.Timezone = patch.Timezone
	}

	finalStart := current.Start
	finalEnd := current.End

	if patch.Start != nil {
		parsed, ok := domain.ParseInstant(*patch.Start)
		if !ok {
			return fields, domain.NewValidationError("start", "not a recognized date/time")
		}
		fields.Start = &parsed
		finalStart = parsed
	}
	if patch.End != nil {
		parsed, ok := domain.ParseInstant(*patch.End)
		if !ok {
			return fields, domain.NewValidationError("end", "not a recognized date/time")
		}
		fields.End = &parsed
		finalEnd = parsed
	}

	if err := domain.ValidateRange(finalStart, finalEnd); err != nil {
		return fields, err
	}

	return fields, nil
}

// ListEvents returns events newest first, optionally filtered to those
// belonging to the named profile. An unknown profile id drops the filter
// rather than failing the listing.
func (s *Service) ListEvents(ctx context.Context, profileID *uuid.UUID) ([]domain.Event, error) {
	var profileName *string
	if profileID != nil {
		profile, err := s.profiles.GetByID(ctx, *profileID)
		switch {
		case err == nil:
			profileName = &profile.Name
		case errors.Is(err, domain.ErrNotFound):
			// fall through unfiltered
		default:
			return nil, err
		}
	}

	return s.events.List(ctx, profileName)
}

// EventHistory returns the event's change log entries newest first. Fails
// with NotFound when the event id does not resolve; the log store itself has
// no referential awareness of events.
func (s *Service) EventHistory(ctx context.Context, eventID uuid.UUID) ([]domain.EventLog, error) {
	exists, err := s.events.Exists(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound
	}

	return s.logs.ListForEvent(ctx, eventID)
}
