// Package normalize is the single boundary where the shape-variable event
// records coming from the fetch collaborator are canonicalized. Renderers
// never inspect raw fields themselves; a provider schema change only touches
// this package.
package normalize

import (
	"time"

	"github.com/aliasghar-j/EduMind/internal/models"
)

// NoTitle is the title used when an event carries neither summary nor title.
const NoTitle = "No Title"

// startLayouts are tried in order when parsing a start string. The server
// emits RFC 3339; all-day events carry a bare date.
var startLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Title returns the event title: summary if present, else title, else
// NoTitle. Never empty.
func Title(event models.RawEvent) string {
	if s := str(event["summary"]); s != "" {
		return s
	}
	if s := str(event["title"]); s != "" {
		return s
	}
	return NoTitle
}

// Link returns the event's web link (htmlLink or html_link), or "".
func Link(event models.RawEvent) string {
	if s := str(event["htmlLink"]); s != "" {
		return s
	}
	return str(event["html_link"])
}

// StartString extracts the raw start representation, trying in order:
// start_datetime, a primitive start value, a nested start.dateTime, and a
// nested start.date (all-day). Returns "" when none is present.
func StartString(event models.RawEvent) string {
	if s := str(event["start_datetime"]); s != "" {
		return s
	}
	switch start := event["start"].(type) {
	case string:
		return start
	case map[string]any:
		if s := str(start["dateTime"]); s != "" {
			return s
		}
		return str(start["date"])
	}
	return ""
}

// StartInstant parses the event's start into an instant. A missing or
// unparseable start yields the zero time; it never returns an error because
// malformed provider data must not abort rendering of the remaining events.
func StartInstant(event models.RawEvent) time.Time {
	return parseInstant(StartString(event))
}

func parseInstant(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range startLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// allDay reports whether the start field carries a date with no time
// component, either via the nested all-day marker or the server's
// is_all_day flag.
func allDay(event models.RawEvent) bool {
	if b, ok := event["is_all_day"].(bool); ok {
		return b
	}
	if start, ok := event["start"].(map[string]any); ok {
		return str(start["date"]) != ""
	}
	return false
}

// Normalize derives the canonical view of a raw event. It is pure and
// idempotent: a NormalizedEvent marshaled back into a RawEvent normalizes
// to the same value.
func Normalize(event models.RawEvent) models.NormalizedEvent {
	return models.NormalizedEvent{
		Title:       Title(event),
		Start:       StartInstant(event),
		Link:        Link(event),
		Location:    str(event["location"]),
		Description: str(event["description"]),
		StartLabel:  str(event["start_time"]),
		AllDay:      allDay(event),
	}
}

// NormalizeAll maps Normalize over a fetched event list, preserving order.
func NormalizeAll(events []models.RawEvent) []models.NormalizedEvent {
	normalized := make([]models.NormalizedEvent, 0, len(events))
	for _, event := range events {
		normalized = append(normalized, Normalize(event))
	}
	return normalized
}

// DateLabel formats an instant as a short date label, e.g. "Mar 10".
func DateLabel(t time.Time) string {
	return t.Format("Jan 2")
}

// TimeLabel returns the display time for an event. A pre-formatted
// start_time from the server is used verbatim; otherwise the start instant
// is rendered in 12-hour form ("3:04 PM"). All-day events and events
// without a start have no time label.
func TimeLabel(event models.NormalizedEvent) string {
	if event.StartLabel != "" {
		return event.StartLabel
	}
	if event.AllDay || !event.HasStart() {
		return ""
	}
	return event.Start.Format("3:04 PM")
}

// str converts a raw field value to a string, tolerating absent or
// non-string values by returning "".
func str(v any) string {
	s, _ := v.(string)
	return s
}
