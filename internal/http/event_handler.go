package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/example/event-horizon/internal/application"
	"github.com/example/event-horizon/internal/calendar"
)

var (
	errInvalidEventID = errors.New("the event identifier is invalid")
	errInvalidDate    = errors.New("the date must use the YYYY-MM-DD format")
)

type eventService interface {
	ListEvents(ctx context.Context, principal application.Principal) ([]calendar.Event, error)
	EventsOn(ctx context.Context, principal application.Principal, date time.Time) ([]calendar.Event, error)
	CreateEvent(ctx context.Context, params application.CreateEventParams) (calendar.Event, error)
	UpdateEvent(ctx context.Context, params application.UpdateEventParams) (calendar.Event, error)
	DeleteEvent(ctx context.Context, principal application.Principal, eventID string) error
	ClearEvents(ctx context.Context, principal application.Principal) error
}

type EventHandler struct {
	service   eventService
	responder responder
	now       func() time.Time
}

func NewEventHandler(service eventService, logger *slog.Logger) *EventHandler {
	return &EventHandler{service: service, responder: newResponder(logger), now: time.Now}
}

// List returns the whole collection, or the agenda for one calendar day when
// the `date` query parameter is present.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
			return
		}

		events, err := h.service.EventsOn(r.Context(), principal, date)
		if err != nil {
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
		h.responder.writeJSON(r.Context(), w, http.StatusOK, eventsResponse{Events: events})
		return
	}

	events, err := h.service.ListEvents(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventsResponse{Events: events})
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	draft, err := req.toDraft()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	event, err := h.service.CreateEvent(r.Context(), application.CreateEventParams{
		Principal: principal,
		Draft:     draft,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, event)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	draft, err := req.toDraft()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	event, err := h.service.UpdateEvent(r.Context(), application.UpdateEventParams{
		Principal: principal,
		EventID:   eventID,
		Draft:     draft,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, event)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := EventIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.DeleteEvent(r.Context(), principal, eventID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Clear discards the principal's whole collection.
func (h *EventHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.ClearEvents(r.Context(), principal); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Export renders the collection as an iCalendar document.
func (h *EventHandler) Export(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	events, err := h.service.ListEvents(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//Event Horizon//Calendar//EN")

	stamp := h.now().UTC()
	for _, event := range events {
		entry := cal.AddEvent(event.ID)
		entry.SetDtStampTime(stamp)
		entry.SetStartAt(event.StartTime)
		entry.SetEndAt(event.EndTime)
		entry.SetSummary(event.Title)
		if event.Description != "" {
			entry.SetDescription(event.Description)
		}
		if event.Location != "" {
			entry.SetLocation(event.Location)
		}
		entry.SetProperty(ics.ComponentPropertyCategories, string(event.EventType))
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="events.ics"`)
	if _, err := w.Write([]byte(cal.Serialize())); err != nil {
		h.responder.loggerFor(r.Context()).ErrorContext(r.Context(), "failed to write calendar export", "error", err)
	}
}

// eventRequest carries the editor form fields: each boundary is a calendar
// date plus a separate HH:MM time-of-day input.
type eventRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	EventType   string   `json:"eventType"`
	Location    string   `json:"location"`
	Kind        string   `json:"type"`
	Priority    string   `json:"priority"`
	Color       string   `json:"color"`
	Tags        []string `json:"tags"`

	StartDate  string `json:"startDate"`
	StartClock string `json:"startTime"`
	EndDate    string `json:"endDate"`
	EndClock   string `json:"endTime"`
}

func (req eventRequest) toDraft() (calendar.Draft, error) {
	startDate, err := time.Parse("2006-01-02", strings.TrimSpace(req.StartDate))
	if err != nil {
		return calendar.Draft{}, fmt.Errorf("startDate: %w", errInvalidDate)
	}
	endDate, err := time.Parse("2006-01-02", strings.TrimSpace(req.EndDate))
	if err != nil {
		return calendar.Draft{}, fmt.Errorf("endDate: %w", errInvalidDate)
	}

	// Omitted categorization fields fall back to the editor defaults, the
	// same ones a freshly opened draft carries.
	draft := calendar.NewDraft("", startDate)
	draft.Title = req.Title
	draft.Description = req.Description
	draft.Location = req.Location
	draft.Tags = req.Tags
	draft.EndDate = endDate
	if req.StartClock != "" {
		draft.StartClock = req.StartClock
	}
	if req.EndClock != "" {
		draft.EndClock = req.EndClock
	}
	if req.EventType != "" {
		draft.EventType = calendar.EventType(req.EventType)
	}
	if req.Kind != "" {
		draft.Kind = calendar.Kind(req.Kind)
	}
	if req.Priority != "" {
		draft.Priority = calendar.Priority(req.Priority)
	}
	draft.Color = calendar.Color(req.Color)
	return draft, nil
}

type eventsResponse struct {
	Events []calendar.Event `json:"events"`
}
