package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rgillard/planlog/internal/domain"
	"github.com/rgillard/planlog/internal/middleware"
	"github.com/rgillard/planlog/internal/repository"
	"github.com/rgillard/planlog/internal/scheduler"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Handler exposes the scheduler over HTTP.
type Handler struct {
	scheduler *scheduler.Service
	profiles  repository.ProfileRepository
}

// NewHandler creates a new API handler.
func NewHandler(sched *scheduler.Service, profiles repository.ProfileRepository) *Handler {
	return &Handler{
		scheduler: sched,
		profiles:  profiles,
	}
}

// Routes mounts all endpoints on a chi router. The import handler is mounted
// separately because it owns its own multipart handling.
func (h *Handler) Routes(importHandler http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.health)

	r.Route("/api/profiles", func(r chi.Router) {
		r.Get("/", h.listProfiles)
		r.Post("/", h.createProfile)
		r.Put("/{profileID}/timezone", h.updateProfileTimezone)
	})

	r.Route("/api/events", func(r chi.Router) {
		r.Get("/", h.listEvents)
		r.Post("/", h.createEvent)
		r.Put("/{eventID}", h.updateEvent)
		r.Get("/{eventID}/logs", h.eventLogs)
		if importHandler != nil {
			r.Method(http.MethodPost, "/import", importHandler)
		}
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "planlog API is running"})
}

// profileRef is the populated shape of a weak profile reference.
type profileRef struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Timezone string    `json:"timezone"`
}

// eventPayload is the wire shape of an event, with profile references
// resolved to name/timezone pairs.
type eventPayload struct {
	ID             uuid.UUID    `json:"id"`
	Profiles       []string     `json:"profiles"`
	ProfileIDs     []uuid.UUID  `json:"profileIds"`
	ProfileDetails []profileRef `json:"profileDetails"`
	Timezone       string       `json:"timezone"`
	Start          time.Time    `json:"start"`
	End            time.Time    `json:"end"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

func (h *Handler) listProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profiles.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

func (h *Handler) createProfile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Timezone string `json:"timezone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.NewValidationError("", "invalid JSON body"))
		return
	}

	profile, err := domain.NewProfile(body.Name, body.Timezone)
	if err != nil {
		writeError(w, err)
		return
	}

	created, err := h.profiles.Create(r.Context(), profile)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) updateProfileTimezone(w http.ResponseWriter, r *http.Request) {
	profileID, err := uuid.Parse(chi.URLParam(r, "profileID"))
	if err != nil {
		writeError(w, domain.NewValidationError("profileId", "invalid profile id"))
		return
	}

	var body struct {
		Timezone string `json:"timezone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.NewValidationError("", "invalid JSON body"))
		return
	}
	if body.Timezone == "" {
		writeError(w, domain.NewValidationError("timezone", "timezone is required"))
		return
	}

	profile, err := h.profiles.UpdateTimezone(r.Context(), profileID, body.Timezone)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	var profileID *uuid.UUID
	if raw := r.URL.Query().Get("profileId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, domain.NewValidationError("profileId", "invalid profile id"))
			return
		}
		profileID = &parsed
	}

	events, err := h.scheduler.ListEvents(r.Context(), profileID)
	if err != nil {
		writeError(w, err)
		return
	}

	payloads := make([]eventPayload, len(events))
	for i, event := range events {
		payloads[i] = h.populate(r, event)
	}
	writeJSON(w, http.StatusOK, payloads)
}

func (h *Handler) createEvent(w http.ResponseWriter, r *http.Request) {
	var input domain.CreateEventInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, domain.NewValidationError("", "invalid JSON body"))
		return
	}

	event, err := h.scheduler.CreateEvent(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.populate(r, event))
}

func (h *Handler) updateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		writeError(w, domain.NewValidationError("eventId", "invalid event id"))
		return
	}

	var patch domain.EventPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, domain.NewValidationError("", "invalid JSON body"))
		return
	}

	event, err := h.scheduler.UpdateEvent(r.Context(), eventID, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.populate(r, event))
}

func (h *Handler) eventLogs(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		writeError(w, domain.NewValidationError("eventId", "invalid event id"))
		return
	}

	logs, err := h.scheduler.EventHistory(r.Context(), eventID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// populate resolves the event's weak profile references for display, going
// through the per-request batch loader when one is attached.
func (h *Handler) populate(r *http.Request, event domain.Event) eventPayload {
	payload := eventPayload{
		ID:             event.ID,
		Profiles:       event.Profiles,
		ProfileIDs:     event.ProfileIDs,
		ProfileDetails: []profileRef{},
		Timezone:       event.Timezone,
		Start:          event.Start,
		End:            event.End,
		CreatedAt:      event.CreatedAt,
		UpdatedAt:      event.UpdatedAt,
	}

	var (
		profiles []domain.Profile
		err      error
	)
	if loader := middleware.ProfileLoaderFromContext(r.Context()); loader != nil {
		profiles, err = loader.Load(r.Context(), event.ProfileIDs)
	} else {
		profiles, err = h.profiles.GetByIDs(r.Context(), event.ProfileIDs)
	}
	if err != nil {
		// References are weak; an unresolved populate never fails the response.
		return payload
	}

	for _, profile := range profiles {
		payload.ProfileDetails = append(payload.ProfileDetails, profileRef{
			ID:       profile.ID,
			Name:     profile.Name,
			Timezone: profile.Timezone,
		})
	}
	return payload
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// writeError maps the error taxonomy onto status codes: validation failures
// are client errors, unresolved ids are 404, everything else surfaces as a
// server error carrying the message text.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case domain.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
