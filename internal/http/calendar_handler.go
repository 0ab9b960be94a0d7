package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/event-horizon/internal/application"
	"github.com/example/event-horizon/internal/calendar"
)

var errInvalidMonth = errors.New("the month must use the YYYY-MM format")

type calendarService interface {
	MonthMarkers(ctx context.Context, principal application.Principal, year int, month time.Month, loc *time.Location) (map[int]calendar.DayMarker, error)
}

type CalendarHandler struct {
	service   calendarService
	responder responder
	now       func() time.Time
}

func NewCalendarHandler(service calendarService, logger *slog.Logger) *CalendarHandler {
	return &CalendarHandler{service: service, responder: newResponder(logger), now: time.Now}
}

// Month returns per-day decoration data for the requested month grid. Without
// a `month` query parameter the current month is used.
func (h *CalendarHandler) Month(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	reference := h.now().UTC()
	if raw := strings.TrimSpace(r.URL.Query().Get("month")); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMonth)
			return
		}
		reference = parsed
	}

	principal, _ := PrincipalFromContext(r.Context())

	markers, err := h.service.MonthMarkers(r.Context(), principal, reference.Year(), reference.Month(), reference.Location())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	days := make(map[int]dayMarkerDTO, len(markers))
	for day, marker := range markers {
		days[day] = dayMarkerDTO{
			Count:      marker.Count,
			Categories: marker.Categories,
		}
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, monthResponse{
		Month: reference.Format("2006-01"),
		Days:  days,
	})
}

type dayMarkerDTO struct {
	Count      int                  `json:"count"`
	Categories []calendar.EventType `json:"categories"`
}

type monthResponse struct {
	Month string               `json:"month"`
	Days  map[int]dayMarkerDTO `json:"days"`
}
