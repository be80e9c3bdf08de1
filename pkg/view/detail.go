package view

import (
	"time"

	"github.com/aliasghar-j/EduMind/internal/models"
	"github.com/aliasghar-j/EduMind/pkg/normalize"
)

// DetailItem is one event row inside the day-detail overlay.
type DetailItem struct {
	Title       string
	TimeLabel   string
	Location    string
	Description string
	Link        string
}

// DayDetail is the view-model behind the day-click overlay. How it is
// rendered and dismissed is the rendering surface's concern.
type DayDetail struct {
	Date    time.Time
	ISODate string
	// Label is the overlay heading, e.g. "Mar 10".
	Label string
	Items []DetailItem
}

// BuildDayDetail collects the events starting on the given date. An empty
// Items slice means the day-click should be a no-op.
func BuildDayDetail(date time.Time, events []models.RawEvent) DayDetail {
	detail := DayDetail{
		Date:    date,
		ISODate: date.Format(ISODateLayout),
		Label:   normalize.DateLabel(date),
	}

	for _, raw := range events {
		event := normalize.Normalize(raw)
		if !event.OnDate(date) {
			continue
		}
		detail.Items = append(detail.Items, DetailItem{
			Title:       event.Title,
			TimeLabel:   normalize.TimeLabel(event),
			Location:    event.Location,
			Description: event.Description,
			Link:        event.Link,
		})
	}

	return detail
}
