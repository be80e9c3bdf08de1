// Package export serializes the widget's normalized events to iCalendar so a
// student can pull their dashboard schedule into an external calendar app.
package export

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/aliasghar-j/EduMind/internal/models"
)

const prodID = "-//EduMind//Student Dashboard Calendar//EN"

// ICS serializes events to an iCalendar document. Events without a parseable
// start are skipped, the same exclusion rule the renderers apply.
func ICS(events []models.NormalizedEvent, now time.Time) (string, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(prodID)

	exported := 0
	for _, event := range events {
		if !event.HasStart() {
			continue
		}

		ve := cal.AddEvent(eventUID(event))
		ve.SetDtStampTime(now)
		ve.SetSummary(event.Title)
		if event.AllDay {
			ve.SetAllDayStartAt(event.Start)
		} else {
			ve.SetStartAt(event.Start)
		}
		if event.Location != "" {
			ve.SetLocation(event.Location)
		}
		if event.Description != "" {
			ve.SetDescription(event.Description)
		}
		if event.Link != "" {
			ve.SetURL(event.Link)
		}
		exported++
	}

	if exported == 0 {
		return "", fmt.Errorf("no exportable events")
	}

	return cal.Serialize(), nil
}

// eventUID derives a stable UID from the event's identity, so re-exports
// update rather than duplicate entries in the target calendar.
func eventUID(event models.NormalizedEvent) string {
	sum := sha1.Sum([]byte(event.Title + "|" + event.Start.UTC().Format(time.RFC3339)))
	return hex.EncodeToString(sum[:]) + "@edumind"
}
