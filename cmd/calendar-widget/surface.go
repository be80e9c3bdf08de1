package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aliasghar-j/EduMind/internal/models"
	"github.com/aliasghar-j/EduMind/pkg/view"
)

// consoleSurface renders the widget regions as plain text. It exists so the
// binary is usable standalone; the web dashboard provides its own surface.
type consoleSurface struct {
	mu  sync.Mutex
	out io.Writer
}

func newConsoleSurface(out io.Writer) *consoleSurface {
	return &consoleSurface{out: out}
}

func (s *consoleSurface) RenderSignIn(signInURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "\nConnect your Google Calendar to see events:\n  %s\n", signInURL)
}

func (s *consoleSurface) RenderGrid(grid view.MonthGrid) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Fprintf(s.out, "\n%s\n", grid.Month.Label())
	fmt.Fprintln(s.out, "Sun  Mon  Tue  Wed  Thu  Fri  Sat")

	var row strings.Builder
	for i, cell := range grid.Cells {
		marker := " "
		switch {
		case cell.Today:
			marker = "*"
		case len(cell.Events) > 0:
			marker = "."
		}
		if cell.OtherMonth {
			row.WriteString(fmt.Sprintf(" %2d  ", cell.Day))
		} else {
			row.WriteString(fmt.Sprintf("[%2d%s]", cell.Day, marker))
		}
		if (i+1)%7 == 0 {
			fmt.Fprintln(s.out, row.String())
			row.Reset()
		}
	}
}

func (s *consoleSurface) RenderUpcoming(items []view.UpcomingItem, placeholder string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Fprintln(s.out, "\nUpcoming:")
	if len(items) == 0 {
		fmt.Fprintf(s.out, "  %s\n", placeholder)
		return
	}
	for _, item := range items {
		line := fmt.Sprintf("  %s  %s", item.DateLabel, item.Event.Title)
		if item.TimeLabel != "" {
			line += " @ " + item.TimeLabel
		}
		fmt.Fprintln(s.out, line)
	}
}

func (s *consoleSurface) SetLoading(loading bool) {
	if loading {
		s.mu.Lock()
		fmt.Fprintln(s.out, "Loading calendar...")
		s.mu.Unlock()
	}
}

func (s *consoleSurface) ShowDayDetail(detail view.DayDetail) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Fprintf(s.out, "\n%s\n", detail.Label)
	for _, item := range detail.Items {
		fmt.Fprintf(s.out, "  %s", item.Title)
		if item.TimeLabel != "" {
			fmt.Fprintf(s.out, " @ %s", item.TimeLabel)
		}
		if item.Location != "" {
			fmt.Fprintf(s.out, " (%s)", item.Location)
		}
		fmt.Fprintln(s.out)
		if item.Description != "" {
			fmt.Fprintf(s.out, "    %s\n", item.Description)
		}
	}
}

// RenderToasts is the toast.Listener hook.
func (s *consoleSurface) RenderToasts(active []models.ToastMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, msg := range active {
		fmt.Fprintf(s.out, "[%s] %s\n", msg.Severity, msg.Text)
	}
}
