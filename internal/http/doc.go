// Package http provides HTTP handlers and middleware for the calendar API.
//
// The router exposes the following endpoints:
//   - POST /signup: registers an account. Body carries the registration form
//     fields; validation failures return 422 with a per-field error map.
//   - POST /login: issues a session token for any non-empty username and
//     password, registering unknown usernames on the fly. The token is returned
//     in the body, the `X-Session-Token` header, and a `session_token` cookie.
//   - POST /logout: revokes the current session and clears the cookie.
//   - DELETE /account: removes the authenticated account along with its
//     sessions and stored calendar.
//   - GET /events, POST /events, PUT /events/{id}, DELETE /events/{id}: the
//     per-user event collection, exchanging the `eventRequest` and
//     `eventsResponse` payloads defined in event_handler.go.
//     `GET /events?date=2025-03-01` narrows the response to the agenda for
//     that calendar day; `DELETE /events` discards the whole collection.
//   - GET /events/export: the collection as an iCalendar document.
//   - GET /calendar?month=2025-03: per-day event counts and distinct categories
//     for decorating a month grid.
//
// Requests without a valid session on protected routes receive 401 together
// with a `redirect` hint pointing at the login page.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
