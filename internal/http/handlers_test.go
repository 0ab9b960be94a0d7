package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/event-horizon/internal/application"
	"github.com/example/event-horizon/internal/calendar"
)

type authServiceStub struct {
	signUpResult application.SignUpResult
	signUpErr    error
	logInResult  application.LogInResult
	logInErr     error
	revokeErr    error
	deleteErr    error

	revokedTokens []string
	deletedUsers  []string
}

func (s *authServiceStub) SignUp(ctx context.Context, params application.SignUpParams) (application.SignUpResult, error) {
	return s.signUpResult, s.signUpErr
}

func (s *authServiceStub) LogIn(ctx context.Context, params application.LogInParams) (application.LogInResult, error) {
	return s.logInResult, s.logInErr
}

func (s *authServiceStub) RevokeSession(ctx context.Context, token string) error {
	s.revokedTokens = append(s.revokedTokens, token)
	return s.revokeErr
}

func (s *authServiceStub) DeleteAccount(ctx context.Context, principal application.Principal) error {
	s.deletedUsers = append(s.deletedUsers, principal.Username)
	return s.deleteErr
}

type eventServiceStub struct {
	events    []calendar.Event
	agenda    []calendar.Event
	created   calendar.Event
	updated   calendar.Event
	listErr   error
	createErr error
	updateErr error
	deleteErr error
	clearErr  error

	agendaDates []time.Time
	deletedIDs  []string
	cleared     []string
}

func (s *eventServiceStub) ListEvents(ctx context.Context, principal application.Principal) ([]calendar.Event, error) {
	return s.events, s.listErr
}

func (s *eventServiceStub) EventsOn(ctx context.Context, principal application.Principal, date time.Time) ([]calendar.Event, error) {
	s.agendaDates = append(s.agendaDates, date)
	return s.agenda, s.listErr
}

func (s *eventServiceStub) CreateEvent(ctx context.Context, params application.CreateEventParams) (calendar.Event, error) {
	return s.created, s.createErr
}

func (s *eventServiceStub) UpdateEvent(ctx context.Context, params application.UpdateEventParams) (calendar.Event, error) {
	return s.updated, s.updateErr
}

func (s *eventServiceStub) DeleteEvent(ctx context.Context, principal application.Principal, eventID string) error {
	s.deletedIDs = append(s.deletedIDs, eventID)
	return s.deleteErr
}

func (s *eventServiceStub) ClearEvents(ctx context.Context, principal application.Principal) error {
	s.cleared = append(s.cleared, principal.Username)
	return s.clearErr
}

type calendarServiceStub struct {
	markers map[int]calendar.DayMarker
	err     error
}

func (s *calendarServiceStub) MonthMarkers(ctx context.Context, principal application.Principal, year int, month time.Month, loc *time.Location) (map[int]calendar.DayMarker, error) {
	return s.markers, s.err
}

func sampleSession(token string) application.Session {
	return application.Session{
		Token:     token,
		Username:  "alice",
		ExpiresAt: time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC),
	}
}

func sampleEvent(id, title string) calendar.Event {
	return calendar.Event{
		ID:        id,
		Title:     title,
		EventType: calendar.EventTypePersonal,
		StartTime: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
		Kind:      calendar.KindMeeting,
		Priority:  calendar.PriorityNotUrgentImportant,
		Color:     calendar.DefaultColor,
	}
}

func TestAuthHandlers(t *testing.T) {
	t.Parallel()

	t.Run("login issues session token via cookie and header", func(t *testing.T) {
		t.Parallel()

		service := &authServiceStub{
			logInResult: application.LogInResult{
				Account: application.Account{Username: "alice"},
				Session: sampleSession("tok-123"),
			},
		}
		handler := NewAuthHandler(service, nil)

		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"alice","password":"pw"}`))
		recorder := httptest.NewRecorder()
		handler.LogIn(recorder, req)

		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
		}
		if got := recorder.Header().Get("X-Session-Token"); got != "tok-123" {
			t.Fatalf("expected token header, got %q", got)
		}

		var found bool
		for _, cookie := range recorder.Result().Cookies() {
			if cookie.Name == "session_token" && cookie.Value == "tok-123" {
				found = true
			}
		}
		if !found {
			t.Fatal("expected session_token cookie to be set")
		}

		var body sessionResponse
		if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body.Token != "tok-123" || body.Username != "alice" {
			t.Fatalf("unexpected body: %+v", body)
		}
	})

	t.Run("signup surfaces field errors with 422", func(t *testing.T) {
		t.Parallel()

		service := &authServiceStub{
			signUpErr: &application.ValidationError{FieldErrors: map[string]string{
				"email":           "email is invalid",
				"confirmPassword": "passwords do not match",
			}},
		}
		handler := NewAuthHandler(service, nil)

		req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(`{"username":"alice"}`))
		recorder := httptest.NewRecorder()
		handler.SignUp(recorder, req)

		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", recorder.Code)
		}

		var body errorResponse
		if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body.Errors["email"] != "email is invalid" {
			t.Fatalf("expected field errors in response, got %+v", body)
		}
	})

	t.Run("logout revokes the session and clears the cookie", func(t *testing.T) {
		t.Parallel()

		service := &authServiceStub{}
		handler := NewAuthHandler(service, nil)

		req := httptest.NewRequest(http.MethodPost, "/logout", nil)
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "tok-123"})
		recorder := httptest.NewRecorder()
		handler.LogOut(recorder, req)

		if recorder.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", recorder.Code)
		}
		if len(service.revokedTokens) != 1 || service.revokedTokens[0] != "tok-123" {
			t.Fatalf("expected token to be revoked, got %v", service.revokedTokens)
		}

		var cleared bool
		for _, cookie := range recorder.Result().Cookies() {
			if cookie.Name == "session_token" && cookie.MaxAge < 0 {
				cleared = true
			}
		}
		if !cleared {
			t.Fatal("expected session cookie to be cleared")
		}
	})

	t.Run("logout without a token returns 401 with redirect hint", func(t *testing.T) {
		t.Parallel()

		handler := NewAuthHandler(&authServiceStub{}, nil)

		req := httptest.NewRequest(http.MethodPost, "/logout", nil)
		recorder := httptest.NewRecorder()
		handler.LogOut(recorder, req)

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", recorder.Code)
		}
		var body errorResponse
		if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body.Redirect != "/login" {
			t.Fatalf("expected login redirect hint, got %+v", body)
		}
	})

	t.Run("account deletion removes the account and clears the cookie", func(t *testing.T) {
		t.Parallel()

		service := &authServiceStub{}
		handler := NewAuthHandler(service, nil)

		req := httptest.NewRequest(http.MethodDelete, "/account", nil)
		ctx := ContextWithPrincipal(req.Context(), application.Principal{Username: "alice"})
		recorder := httptest.NewRecorder()
		handler.DeleteAccount(recorder, req.WithContext(ctx))

		if recorder.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d: %s", recorder.Code, recorder.Body.String())
		}
		if len(service.deletedUsers) != 1 || service.deletedUsers[0] != "alice" {
			t.Fatalf("expected alice's account to be deleted, got %v", service.deletedUsers)
		}

		var cleared bool
		for _, cookie := range recorder.Result().Cookies() {
			if cookie.Name == "session_token" && cookie.MaxAge < 0 {
				cleared = true
			}
		}
		if !cleared {
			t.Fatal("expected session cookie to be cleared")
		}
	})

	t.Run("account deletion without a principal returns 401", func(t *testing.T) {
		t.Parallel()

		service := &authServiceStub{}
		handler := NewAuthHandler(service, nil)

		req := httptest.NewRequest(http.MethodDelete, "/account", nil)
		recorder := httptest.NewRecorder()
		handler.DeleteAccount(recorder, req)

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", recorder.Code)
		}
		if len(service.deletedUsers) != 0 {
			t.Fatalf("expected no deletion, got %v", service.deletedUsers)
		}
	})
}

func TestEventHandlers(t *testing.T) {
	t.Parallel()

	t.Run("list returns the full collection", func(t *testing.T) {
		t.Parallel()

		service := &eventServiceStub{events: []calendar.Event{sampleEvent("evt-1", "One"), sampleEvent("evt-2", "Two")}}
		handler := NewEventHandler(service, nil)

		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		recorder := httptest.NewRecorder()
		handler.List(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
		var body eventsResponse
		if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(body.Events) != 2 {
			t.Fatalf("expected 2 events, got %+v", body.Events)
		}
	})

	t.Run("list with a date narrows to the day agenda", func(t *testing.T) {
		t.Parallel()

		service := &eventServiceStub{agenda: []calendar.Event{sampleEvent("evt-1", "One")}}
		handler := NewEventHandler(service, nil)

		req := httptest.NewRequest(http.MethodGet, "/events?date=2025-03-10", nil)
		recorder := httptest.NewRecorder()
		handler.List(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
		if len(service.agendaDates) != 1 || service.agendaDates[0].Day() != 10 {
			t.Fatalf("expected parsed date to reach the service, got %v", service.agendaDates)
		}
	})

	t.Run("list rejects malformed dates", func(t *testing.T) {
		t.Parallel()

		handler := NewEventHandler(&eventServiceStub{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/events?date=10-03-2025", nil)
		recorder := httptest.NewRecorder()
		handler.List(recorder, req)

		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", recorder.Code)
		}
	})

	t.Run("create responds with the stored event", func(t *testing.T) {
		t.Parallel()

		service := &eventServiceStub{created: sampleEvent("evt-1", "Dentist")}
		handler := NewEventHandler(service, nil)

		payload := `{"title":"Dentist","startDate":"2025-03-10","startTime":"09:00","endDate":"2025-03-10","endTime":"10:00"}`
		req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(payload))
		recorder := httptest.NewRecorder()
		handler.Create(recorder, req)

		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
		}
		if !strings.Contains(recorder.Body.String(), `"eventType"`) {
			t.Fatalf("expected camelCase event payload, got %s", recorder.Body.String())
		}
	})

	t.Run("create rejects malformed boundary dates", func(t *testing.T) {
		t.Parallel()

		handler := NewEventHandler(&eventServiceStub{}, nil)

		req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{"title":"x","startDate":"soon"}`))
		recorder := httptest.NewRecorder()
		handler.Create(recorder, req)

		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", recorder.Code)
		}
	})

	t.Run("update maps missing identifiers to 404", func(t *testing.T) {
		t.Parallel()

		service := &eventServiceStub{updateErr: application.ErrNotFound}
		handler := NewEventHandler(service, nil)

		payload := `{"title":"x","startDate":"2025-03-10","endDate":"2025-03-10"}`
		req := httptest.NewRequest(http.MethodPut, "/events/ghost", strings.NewReader(payload))
		req = req.WithContext(ContextWithEventID(req.Context(), "ghost"))
		recorder := httptest.NewRecorder()
		handler.Update(recorder, req)

		if recorder.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", recorder.Code)
		}
	})

	t.Run("delete is 204 even for absent identifiers", func(t *testing.T) {
		t.Parallel()

		service := &eventServiceStub{}
		handler := NewEventHandler(service, nil)

		req := httptest.NewRequest(http.MethodDelete, "/events/ghost", nil)
		req = req.WithContext(ContextWithEventID(req.Context(), "ghost"))
		recorder := httptest.NewRecorder()
		handler.Delete(recorder, req)

		if recorder.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", recorder.Code)
		}
		if len(service.deletedIDs) != 1 || service.deletedIDs[0] != "ghost" {
			t.Fatalf("expected delete to reach the service, got %v", service.deletedIDs)
		}
	})

	t.Run("clear discards the whole collection", func(t *testing.T) {
		t.Parallel()

		service := &eventServiceStub{}
		handler := NewEventHandler(service, nil)

		req := httptest.NewRequest(http.MethodDelete, "/events", nil)
		req = req.WithContext(ContextWithPrincipal(req.Context(), application.Principal{Username: "alice"}))
		recorder := httptest.NewRecorder()
		handler.Clear(recorder, req)

		if recorder.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", recorder.Code)
		}
		if len(service.cleared) != 1 || service.cleared[0] != "alice" {
			t.Fatalf("expected clear to reach the service, got %v", service.cleared)
		}
	})

	t.Run("export serves an iCalendar document", func(t *testing.T) {
		t.Parallel()

		service := &eventServiceStub{events: []calendar.Event{sampleEvent("evt-1", "Dentist")}}
		handler := NewEventHandler(service, nil)

		req := httptest.NewRequest(http.MethodGet, "/events/export", nil)
		recorder := httptest.NewRecorder()
		handler.Export(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
		if got := recorder.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/calendar") {
			t.Fatalf("expected text/calendar content type, got %q", got)
		}
		body := recorder.Body.String()
		if !strings.Contains(body, "BEGIN:VCALENDAR") || !strings.Contains(body, "SUMMARY:Dentist") {
			t.Fatalf("expected serialized calendar, got %s", body)
		}
	})
}

func TestCalendarHandler(t *testing.T) {
	t.Parallel()

	t.Run("returns per-day markers for the requested month", func(t *testing.T) {
		t.Parallel()

		service := &calendarServiceStub{markers: map[int]calendar.DayMarker{
			10: {Day: 10, Count: 2, Categories: []calendar.EventType{calendar.EventTypePersonal, calendar.EventTypeWork}},
		}}
		handler := NewCalendarHandler(service, nil)

		req := httptest.NewRequest(http.MethodGet, "/calendar?month=2025-03", nil)
		recorder := httptest.NewRecorder()
		handler.Month(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
		var body monthResponse
		if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body.Month != "2025-03" {
			t.Fatalf("expected echoed month, got %q", body.Month)
		}
		marker, ok := body.Days[10]
		if !ok || marker.Count != 2 || len(marker.Categories) != 2 {
			t.Fatalf("unexpected markers: %+v", body.Days)
		}
	})

	t.Run("rejects malformed months", func(t *testing.T) {
		t.Parallel()

		handler := NewCalendarHandler(&calendarServiceStub{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/calendar?month=March", nil)
		recorder := httptest.NewRecorder()
		handler.Month(recorder, req)

		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", recorder.Code)
		}
	})
}

func TestRouterMethodDispatch(t *testing.T) {
	t.Parallel()

	router := NewRouter(RouterConfig{
		Auth:     NewAuthHandler(&authServiceStub{logInResult: application.LogInResult{Session: sampleSession("tok")}}, nil),
		Events:   NewEventHandler(&eventServiceStub{}, nil),
		Calendar: NewCalendarHandler(&calendarServiceStub{}, nil),
	})

	tests := []struct {
		name     string
		method   string
		path     string
		expected int
	}{
		{name: "login accepts POST", method: http.MethodPost, path: "/login", expected: http.StatusCreated},
		{name: "login rejects GET", method: http.MethodGet, path: "/login", expected: http.StatusMethodNotAllowed},
		{name: "events rejects PATCH", method: http.MethodPatch, path: "/events", expected: http.StatusMethodNotAllowed},
		{name: "events accepts DELETE for clearing", method: http.MethodDelete, path: "/events", expected: http.StatusNoContent},
		{name: "account routes DELETE to the handler", method: http.MethodDelete, path: "/account", expected: http.StatusUnauthorized},
		{name: "account rejects GET", method: http.MethodGet, path: "/account", expected: http.StatusMethodNotAllowed},
		{name: "event subresource rejects POST", method: http.MethodPost, path: "/events/evt-1", expected: http.StatusMethodNotAllowed},
		{name: "calendar rejects POST", method: http.MethodPost, path: "/calendar", expected: http.StatusMethodNotAllowed},
		{name: "export rejects DELETE", method: http.MethodDelete, path: "/events/export", expected: http.StatusMethodNotAllowed},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var body *strings.Reader
			if tc.method == http.MethodPost && tc.path == "/login" {
				body = strings.NewReader(`{"username":"alice","password":"pw"}`)
			} else {
				body = strings.NewReader("")
			}

			req := httptest.NewRequest(tc.method, tc.path, body)
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)

			if recorder.Code != tc.expected {
				t.Fatalf("expected %d, got %d", tc.expected, recorder.Code)
			}
		})
	}
}
