// Package store fetches and holds the widget's event list. Events are kept
// raw; normalization happens at read time in the renderers so a provider
// schema change only touches pkg/normalize.
package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/aliasghar-j/EduMind/internal/models"
	"github.com/aliasghar-j/EduMind/pkg/api"
	"github.com/aliasghar-j/EduMind/pkg/toast"
)

// Fetch policy. Fixed by the dashboard, not user-configurable.
const (
	MaxResults = 50
	DaysAhead  = 30
)

// User-visible fetch outcomes.
const (
	msgFetchSuccess = "Calendar events updated"
	msgFetchFailure = "Could not load calendar events"
)

// Fetcher is the slice of the API client the store needs.
type Fetcher interface {
	UpcomingEvents(ctx context.Context, maxResults, daysAhead int) ([]models.RawEvent, error)
}

// AccessGate reports whether event fetching is permitted.
type AccessGate interface {
	HasProviderAccess() bool
}

// Store holds the current event list and its loading flag.
type Store struct {
	fetcher Fetcher
	gate    AccessGate
	toasts  *toast.Emitter
	logger  *slog.Logger

	mu      sync.RWMutex
	events  []models.RawEvent
	loading bool
}

// NewStore creates an empty event store.
func NewStore(fetcher Fetcher, gate AccessGate, toasts *toast.Emitter, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		fetcher: fetcher,
		gate:    gate,
		toasts:  toasts,
		logger:  logger,
	}
}

// FetchUpcoming refreshes the event list from the server. Without provider
// access it is a no-op leaving the list empty. The stored list is always
// replaced wholesale, never merged, and the loading flag is released on
// every exit path. The returned slice is the new list (nil on failure).
func (s *Store) FetchUpcoming(ctx context.Context) []models.RawEvent {
	if !s.gate.HasProviderAccess() {
		s.logger.Debug("Skipping event fetch, no provider access")
		return nil
	}

	s.setLoading(true)
	defer s.setLoading(false)

	events, err := s.fetcher.UpcomingEvents(ctx, MaxResults, DaysAhead)
	if err != nil {
		s.replace(nil)

		var denied *api.AccessDeniedError
		if errors.As(err, &denied) {
			s.logger.Warn("Calendar access denied", "error", err)
			s.toasts.EmitFor(denied.Error(), models.SeverityError, toast.CalendarDuration)
		} else {
			s.logger.Error("Event fetch failed", "error", err)
			s.toasts.EmitFor(msgFetchFailure, models.SeverityError, toast.CalendarDuration)
		}
		return nil
	}

	s.replace(events)
	s.logger.Debug("Fetched upcoming events", "count", len(events))
	s.toasts.EmitFor(msgFetchSuccess, models.SeveritySuccess, toast.CalendarDuration)
	return events
}

// Events returns a snapshot of the current raw event list.
func (s *Store) Events() []models.RawEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.RawEvent(nil), s.events...)
}

// Loading reports whether a fetch is in flight. Advisory only: the periodic
// refresh uses it to skip a redundant tick, a manual refresh is never
// blocked by it.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Store) replace(events []models.RawEvent) {
	s.mu.Lock()
	s.events = events
	s.mu.Unlock()
}
