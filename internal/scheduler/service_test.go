package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rgillard/planlog/internal/domain"
	"github.com/rgillard/planlog/internal/repository"

	"github.com/google/uuid"
)

type stubProfileRepo struct {
	byID map[uuid.UUID]domain.Profile
}

func (s *stubProfileRepo) Create(ctx context.Context, profile domain.Profile) (domain.Profile, error) {
	return profile, nil
}

func (s *stubProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Profile, error) {
	if profile, ok := s.byID[id]; ok {
		return profile, nil
	}
	return domain.Profile{}, domain.ErrNotFound
}

func (s *stubProfileRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Profile, error) {
	profiles := []domain.Profile{}
	for _, id := range ids {
		if profile, ok := s.byID[id]; ok {
			profiles = append(profiles, profile)
		}
	}
	return profiles, nil
}

func (s *stubProfileRepo) GetByName(ctx context.Context, name string) (domain.Profile, error) {
	for _, profile := range s.byID {
		if profile.Name == name {
			return profile, nil
		}
	}
	return domain.Profile{}, domain.ErrNotFound
}

func (s *stubProfileRepo) List(ctx context.Context) ([]domain.Profile, error) {
	return nil, nil
}

func (s *stubProfileRepo) UpdateTimezone(ctx context.Context, id uuid.UUID, timezone string) (domain.Profile, error) {
	return domain.Profile{}, domain.ErrNotFound
}

type stubEventRepo struct {
	byID       map[uuid.UUID]domain.Event
	created    []domain.Event
	updates    []repository.EventUpdateFields
	listedName *string
	listCalled bool
	updateErr  error
}

func (s *stubEventRepo) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	s.created = append(s.created, event)
	return event, nil
}

func (s *stubEventRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Event, error) {
	if event, ok := s.byID[id]; ok {
		return event, nil
	}
	return domain.Event{}, domain.ErrNotFound
}

func (s *stubEventRepo) List(ctx context.Context, profileName *string) ([]domain.Event, error) {
	s.listCalled = true
	s.listedName = profileName
	return []domain.Event{}, nil
}

func (s *stubEventRepo) UpdatePartial(ctx context.Context, id uuid.UUID, fields repository.EventUpdateFields) (domain.Event, error) {
	if s.updateErr != nil {
		return domain.Event{}, s.updateErr
	}

	event, ok := s.byID[id]
	if !ok {
		return domain.Event{}, domain.ErrNotFound
	}

	s.updates = append(s.updates, fields)

	if fields.Profiles != nil {
		event.Profiles = fields.Profiles
	}
	if fields.ProfileIDs != nil {
		event.ProfileIDs = fields.ProfileIDs
	}
	if fields.Timezone != nil {
		event.Timezone = *fields.Timezone
	}
	if fields.Start != nil {
		event.Start = *fields.Start
	}
	if fields.End != nil {
		event.End = *fields.End
	}
	event.UpdatedAt = time.Now()
	s.byID[id] = event
	return event, nil
}

func (s *stubEventRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, ok := s.byID[id]
	return ok, nil
}

type stubLogRepo struct {
	appended []domain.EventLog
	listed   []domain.EventLog
}

func (s *stubLogRepo) Append(ctx context.Context, log domain.EventLog) error {
	s.appended = append(s.appended, log)
	return nil
}

func (s *stubLogRepo) ListForEvent(ctx context.Context, eventID uuid.UUID) ([]domain.EventLog, error) {
	return s.listed, nil
}

func newTestService() (*Service, *stubProfileRepo, *stubEventRepo, *stubLogRepo) {
	profiles := &stubProfileRepo{byID: map[uuid.UUID]domain.Profile{}}
	events := &stubEventRepo{byID: map[uuid.UUID]domain.Event{}}
	logs := &stubLogRepo{}
	return NewService(profiles, events, logs), profiles, events, logs
}

func seedEvent(events *stubEventRepo) domain.Event {
	event := domain.Event{
		ID:       uuid.New(),
		Profiles: []string{"Alice", "Bob"},
		Timezone: "UTC",
		Start:    time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC),
	}
	events.byID[event.ID] = event
	return event
}

func strptr(s string) *string { return &s }

func TestCreateEventRejectsInvalidRange(t *testing.T) {
	service, _, events, _ := newTestService()

	_, err := service.CreateEvent(context.Background(), domain.CreateEventInput{
		Profiles: []string{"Alice"},
		Timezone: "UTC",
		Start:    "2024-01-10T10:00:00Z",
		End:      "2024-01-10T10:00:00Z",
	})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error for equal boundaries, got %v", err)
	}
	if len(events.created) != 0 {
		t.Fatalf("expected no write on validation failure")
	}
}

func TestCreateEventPersists(t *testing.T) {
	service, _, events, logs := newTestService()

	event, err := service.CreateEvent(context.Background(), domain.CreateEventInput{
		Profiles: []string{"Alice"},
		Timezone: "Asia/Kolkata",
		Start:    "2024-01-10T09:00:00Z",
		End:      "2024-01-10T10:00:00Z",
	})
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}
	if len(events.created) != 1 {
		t.Fatalf("expected one event created, got %d", len(events.created))
	}
	if event.ProfileIDs == nil {
		t.Fatalf("expected profile ids to default to empty, got nil")
	}
	if len(logs.appended) != 0 {
		t.Fatalf("creation must not produce a change log entry")
	}
}

func TestUpdateEventNotFound(t *testing.T) {
	service, _, _, _ := newTestService()

	_, err := service.UpdateEvent(context.Background(), uuid.New(), domain.EventPatch{
		Timezone: strptr("UTC"),
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateEventEmptyDiffIsNoOp(t *testing.T) {
	service, _, events, logs := newTestService()
	event := seedEvent(events)

	// Same membership, different order.
	updated, err := service.UpdateEvent(context.Background(), event.ID, domain.EventPatch{
		Profiles: []string{"Bob", "Alice"},
	})
	if err != nil {
		t.Fatalf("update returned error: %v", err)
	}
	if len(events.updates) != 0 {
		t.Fatalf("expected no storage write for empty diff")
	}
	if len(logs.appended) != 0 {
		t.Fatalf("expected no change log entry for empty diff")
	}
	if updated.UpdatedAt != event.UpdatedAt {
		t.Fatalf("expected unchanged entity to be returned as-is")
	}
}

func TestUpdateEventUnchangedTimezoneIsNoOp(t *testing.T) {
	service, _, events, logs := newTestService()
	event := seedEvent(events)

	_, err := service.UpdateEvent(context.Background(), event.ID, domain.EventPatch{
		Timezone: strptr("UTC"),
	})
	if err != nil {
		t.Fatalf("update returned error: %v", err)
	}
	if len(events.updates) != 0 || len(logs.appended) != 0 {
		t.Fatalf("expected no-op for unchanged timezone")
	}
}

func TestUpdateEventEndBeforeUnchangedStart(t *testing.T) {
	service, _, events, logs := newTestService()
	event := seedEvent(events)

	// start stays 09:00; moving end to 08:00 must fail against the stored start.
	_, err := service.UpdateEvent(context.Background(), event.ID, domain.EventPatch{
		End: strptr("2024-01-10T08:00:00Z"),
	})
	if !domain.IsValidation(err) {
		t.Fatalf("expected range validation error, got %v", err)
	}
	if len(events.updates) != 0 || len(logs.appended) != 0 {
		t.Fatalf("expected no write on range violation")
	}
}

func TestUpdateEventSameSecondStartIsNoOp(t *testing.T) {
	service, _, events, logs := newTestService()
	event := seedEvent(events)
	event.Start = time.Date(2024, 2, 1, 0, 0, 0, 200_000_000, time.UTC)
	event.End = time.Date(2024, 2, 1, 1, 0, 0, 0, time.UTC)
	events.byID[event.ID] = event

	_, err := service.UpdateEvent(context.Background(), event.ID, domain.EventPatch{
		Start: strptr("2024-02-01T00:00:00.500Z"),
	})
	if err != nil {
		t.Fatalf("update returned error: %v", err)
	}
	if len(events.updates) != 0 || len(logs.appended) != 0 {
		t.Fatalf("expected sub-second drift to be a no-op")
	}
}

func TestUpdateEventAppendsChangeLog(t *testing.T) {
	service, _, events, logs := newTestService()
	event := seedEvent(events)

	updated, err := service.UpdateEvent(context.Background(), event.ID, domain.EventPatch{
		Profiles: []string{"Alice", "Bob", "Carol"},
		End:      strptr("2024-01-10T11:00:00Z"),
	})
	if err != nil {
		t.Fatalf("update returned error: %v", err)
	}
	if len(events.updates) != 1 {
		t.Fatalf("expected one storage write, got %d", len(events.updates))
	}
	if len(logs.appended) != 1 {
		t.Fatalf("expected one change log entry, got %d", len(logs.appended))
	}

	entry := logs.appended[0]
	if entry.EventID != event.ID {
		t.Fatalf("log entry references wrong event: %s", entry.EventID)
	}
	if len(entry.Changes) != 2 {
		t.Fatalf("expected two change records, got %+v", entry.Changes)
	}
	if entry.Changes[0].Field != "profiles" || entry.Changes[1].Field != "end" {
		t.Fatalf("unexpected change order: %+v", entry.Changes)
	}

	if !updated.End.Equal(time.Date(2024, 1, 10, 11, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected resolved entity with new end, got %v", updated.End)
	}
	if len(updated.Profiles) != 3 {
		t.Fatalf("expected updated profiles, got %v", updated.Profiles)
	}
}

func TestUpdateEventRejectsClearingRequiredFields(t *testing.T) {
	service, _, events, _ := newTestService()
	event := seedEvent(events)

	if _, err := service.UpdateEvent(context.Background(), event.ID, domain.EventPatch{
		Profiles: []string{},
	}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for empty profiles, got %v", err)
	}

	if _, err := service.UpdateEvent(context.Background(), event.ID, domain.EventPatch{
		Timezone: strptr(""),
	}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for empty timezone, got %v", err)
	}

	if _, err := service.UpdateEvent(context.Background(), event.ID, domain.EventPatch{
		Start: strptr("soon"),
	}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for unparsable start, got %v", err)
	}
}

func TestUpdateEventPropagatesStorageFailure(t *testing.T) {
	service, _, events, logs := newTestService()
	event := seedEvent(events)

	boom := errors.New("connection reset")
	events.updateErr = boom

	_, err := service.UpdateEvent(context.Background(), event.ID, domain.EventPatch{
		Timezone: strptr("Asia/Tokyo"),
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected storage failure to propagate verbatim, got %v", err)
	}
	if len(logs.appended) != 0 {
		t.Fatalf("expected no log entry when the write failed")
	}
}

func TestListEventsResolvesProfileFilter(t *testing.T) {
	service, profiles, events, _ := newTestService()
	profile := domain.Profile{ID: uuid.New(), Name: "Alice", Timezone: "UTC"}
	profiles.byID[profile.ID] = profile

	if _, err := service.ListEvents(context.Background(), &profile.ID); err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	if events.listedName == nil || *events.listedName != "Alice" {
		t.Fatalf("expected filter by profile name, got %v", events.listedName)
	}
}

func TestListEventsUnknownProfileDropsFilter(t *testing.T) {
	service, _, events, _ := newTestService()
	unknown := uuid.New()

	if _, err := service.ListEvents(context.Background(), &unknown); err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	if !events.listCalled || events.listedName != nil {
		t.Fatalf("expected unfiltered listing for unknown profile")
	}
}

func TestEventHistoryNotFound(t *testing.T) {
	service, _, _, _ := newTestService()

	_, err := service.EventHistory(context.Background(), uuid.New())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestEventHistoryListsEntries(t *testing.T) {
	service, _, events, logs := newTestService()
	event := seedEvent(events)
	logs.listed = []domain.EventLog{{ID: uuid.New(), EventID: event.ID}}

	entries, err := service.EventHistory(context.Background(), event.ID)
	if err != nil {
		t.Fatalf("history returned error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
}
