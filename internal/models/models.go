package models

import (
	"time"
)

// AuthMethod identifies how the student is signed in to the dashboard.
type AuthMethod string

const (
	// AuthMethodGoogle means the student signed in via Google OAuth and the
	// server holds calendar tokens for them.
	AuthMethodGoogle AuthMethod = "google"
	// AuthMethodTraditional means username/password sign-in with no calendar
	// provider access.
	AuthMethodTraditional AuthMethod = "traditional"
)

// CalendarStatus describes the student's calendar access, as reported by the
// dashboard server at startup. It is immutable for the session except by an
// explicit re-check.
type CalendarStatus struct {
	HasProviderAccess bool       `json:"has_google_access"`
	AuthMethod        AuthMethod `json:"auth_method"`
}

// DefaultCalendarStatus is the safe fallback when the status check fails:
// no provider access, traditional sign-in. The widget must still render the
// sign-in affordance with it.
func DefaultCalendarStatus() CalendarStatus {
	return CalendarStatus{
		HasProviderAccess: false,
		AuthMethod:        AuthMethodTraditional,
	}
}

// RawEvent is an event record exactly as received from the fetch collaborator.
// Field names vary by source: the server normalizes Google payloads into
// snake_case fields (start_datetime, html_link), but direct provider payloads
// carry summary, htmlLink and a nested start object. RawEvent is therefore an
// untyped map; all shape handling lives in pkg/normalize.
type RawEvent map[string]any

// NormalizedEvent is the canonical view of a RawEvent used by every renderer.
// The JSON field names deliberately match the server-normalized RawEvent keys
// so that normalizing an already-normalized event is a no-op.
type NormalizedEvent struct {
	Title       string    `json:"title"`
	Start       time.Time `json:"start_datetime,omitzero"`
	Link        string    `json:"html_link,omitempty"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`

	// StartLabel is a pre-formatted time label carried through from the
	// server (start_time), used verbatim when present.
	StartLabel string `json:"start_time,omitempty"`

	// AllDay is true when the start field carried a date with no time.
	AllDay bool `json:"is_all_day,omitempty"`
}

// HasStart reports whether the event's start instant could be parsed.
// Events without a start are excluded from grid placement and the
// upcoming list.
func (e NormalizedEvent) HasStart() bool {
	return !e.Start.IsZero()
}

// IsUpcoming reports whether the event starts at or after the given time.
func (e NormalizedEvent) IsUpcoming(now time.Time) bool {
	return e.HasStart() && !e.Start.Before(now)
}

// OnDate reports whether the event starts on the given calendar date,
// comparing the date-only portion in the date's location.
func (e NormalizedEvent) OnDate(date time.Time) bool {
	if !e.HasStart() {
		return false
	}
	start := e.Start.In(date.Location())
	y1, m1, d1 := start.Date()
	y2, m2, d2 := date.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Severity classifies a toast message.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// ToastMessage is a short-lived, non-blocking message shown to the user.
// It self-destructs after its display duration; nothing is persisted.
type ToastMessage struct {
	Text      string    `json:"text"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
}

// Calendar is one entry from the student's calendar list, as returned by the
// dashboard server.
type Calendar struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Primary     bool   `json:"primary,omitempty"`
	AccessRole  string `json:"access_role,omitempty"`
}
