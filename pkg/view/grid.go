// Package view builds the widget's pure view-models: the month grid, the
// upcoming-event list and the day-detail overlay. Nothing here touches the
// network or the rendering surface.
package view

import (
	"time"

	"github.com/aliasghar-j/EduMind/internal/models"
	"github.com/aliasghar-j/EduMind/pkg/normalize"
)

const (
	// GridCells is the fixed cell count of the month grid: 6 rows of 7
	// days, over-generating into adjacent months for layout stability.
	GridCells = 42

	// MaxEventsPerCell caps the event summaries shown in one day cell;
	// anything beyond becomes the overflow count.
	MaxEventsPerCell = 2

	// ISODateLayout is the stable interaction key format for day cells.
	ISODateLayout = "2006-01-02"
)

// Month is the (year, month) pair the grid displays.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// First returns midnight on the first day of the month in loc.
func (m Month) First(loc *time.Location) time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, loc)
}

// Next returns the following month.
func (m Month) Next() Month {
	return MonthOf(m.First(time.UTC).AddDate(0, 1, 0))
}

// Prev returns the preceding month.
func (m Month) Prev() Month {
	return MonthOf(m.First(time.UTC).AddDate(0, -1, 0))
}

// Label returns the heading for the month, e.g. "March 2025".
func (m Month) Label() string {
	return m.First(time.UTC).Format("January 2006")
}

// DayCell is one of the 42 cells of the month grid.
type DayCell struct {
	// Date is midnight of the cell's day in the viewer's location.
	Date time.Time
	// ISODate is the YYYY-MM-DD interaction key for day clicks.
	ISODate string
	// Day is the day-of-month number shown in the cell.
	Day int

	// OtherMonth marks spill-over cells from the adjacent months. It
	// takes priority over Today styling.
	OtherMonth bool
	// Today marks the current date, only within the reference month.
	Today bool

	// Events holds at most MaxEventsPerCell normalized events starting on
	// this day, in fetch order.
	Events []models.NormalizedEvent
	// Overflow is how many further events the cell could not show.
	Overflow int
}

// MonthGrid is the full 6-week view of a reference month.
type MonthGrid struct {
	Month Month
	Cells []DayCell
}

// BuildMonthGrid lays out the reference month as 42 consecutive day cells,
// starting from the Sunday on or before the 1st. Day equality uses the
// date-only portion in today's location; events without a parseable start
// are left off the grid.
func BuildMonthGrid(ref Month, events []models.RawEvent, today time.Time) MonthGrid {
	loc := today.Location()
	first := ref.First(loc)
	start := first.AddDate(0, 0, -int(first.Weekday()))

	normalized := placeable(normalize.NormalizeAll(events))

	grid := MonthGrid{
		Month: ref,
		Cells: make([]DayCell, 0, GridCells),
	}

	for i := 0; i < GridCells; i++ {
		date := start.AddDate(0, 0, i)
		otherMonth := date.Month() != ref.Month || date.Year() != ref.Year

		cell := DayCell{
			Date:       date,
			ISODate:    date.Format(ISODateLayout),
			Day:        date.Day(),
			OtherMonth: otherMonth,
			Today:      !otherMonth && sameDate(date, today),
		}

		for _, event := range normalized {
			if !event.OnDate(date) {
				continue
			}
			if len(cell.Events) < MaxEventsPerCell {
				cell.Events = append(cell.Events, event)
			} else {
				cell.Overflow++
			}
		}

		grid.Cells = append(grid.Cells, cell)
	}

	return grid
}

// placeable drops events whose start could not be parsed.
func placeable(events []models.NormalizedEvent) []models.NormalizedEvent {
	kept := events[:0:0]
	for _, event := range events {
		if event.HasStart() {
			kept = append(kept, event)
		}
	}
	return kept
}

func sameDate(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.In(a.Location()).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
