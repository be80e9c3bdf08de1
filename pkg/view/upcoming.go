package view

import (
	"time"

	"github.com/aliasghar-j/EduMind/internal/models"
	"github.com/aliasghar-j/EduMind/pkg/normalize"
)

// UpcomingLimit caps the upcoming-event list.
const UpcomingLimit = 5

// NoUpcomingMessage is the placeholder rendered when the list is empty.
const NoUpcomingMessage = "No upcoming events"

// UpcomingItem is one row of the upcoming-event list.
type UpcomingItem struct {
	Event     models.NormalizedEvent
	DateLabel string
	TimeLabel string
}

// BuildUpcomingList renders the bounded upcoming list: events with a
// parseable start at or after now, in fetch order (the server returns
// chronological order), truncated to UpcomingLimit.
func BuildUpcomingList(events []models.RawEvent, now time.Time) []UpcomingItem {
	var items []UpcomingItem
	for _, raw := range events {
		event := normalize.Normalize(raw)
		if !event.IsUpcoming(now) {
			continue
		}
		items = append(items, UpcomingItem{
			Event:     event,
			DateLabel: normalize.DateLabel(event.Start),
			TimeLabel: normalize.TimeLabel(event),
		})
		if len(items) == UpcomingLimit {
			break
		}
	}
	return items
}
