package widget

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aliasghar-j/EduMind/internal/models"
	"github.com/aliasghar-j/EduMind/pkg/status"
	"github.com/aliasghar-j/EduMind/pkg/store"
	"github.com/aliasghar-j/EduMind/pkg/toast"
	"github.com/aliasghar-j/EduMind/pkg/view"
)

// MockServer stands in for the dashboard API client.
type MockServer struct {
	mu          sync.Mutex
	status      models.CalendarStatus
	statusErr   error
	events      []models.RawEvent
	eventsErr   error
	statusCalls int
	eventCalls  int
	block       chan struct{}
}

func (m *MockServer) CalendarStatus(ctx context.Context) (models.CalendarStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusCalls++
	return m.status, m.statusErr
}

func (m *MockServer) UpcomingEvents(ctx context.Context, maxResults, daysAhead int) ([]models.RawEvent, error) {
	m.mu.Lock()
	m.eventCalls++
	block := m.block
	events, err := m.events, m.eventsErr
	m.mu.Unlock()
	if block != nil {
		<-block
	}
	return events, err
}

func (m *MockServer) EventCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eventCalls
}

// MockSurface records every region render.
type MockSurface struct {
	mu       sync.Mutex
	signIns  []string
	grids    []view.MonthGrid
	upcoming [][]view.UpcomingItem
	details  []view.DayDetail
	loading  []bool
}

func (s *MockSurface) RenderSignIn(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signIns = append(s.signIns, url)
}

func (s *MockSurface) RenderGrid(grid view.MonthGrid) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grids = append(s.grids, grid)
}

func (s *MockSurface) RenderUpcoming(items []view.UpcomingItem, placeholder string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upcoming = append(s.upcoming, items)
}

func (s *MockSurface) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = append(s.loading, loading)
}

func (s *MockSurface) ShowDayDetail(detail view.DayDetail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.details = append(s.details, detail)
}

func (s *MockSurface) lastGrid(t *testing.T) view.MonthGrid {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.grids) == 0 {
		t.Fatal("no grid rendered")
	}
	return s.grids[len(s.grids)-1]
}

var testNow = time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)

func newTestWidget(t *testing.T, server *MockServer, surface Surface) (*Widget, *status.Gate) {
	t.Helper()
	gate := status.NewGate(server, nil)
	emitter := toast.NewEmitter(nil)
	t.Cleanup(func() { emitter.Close() })
	st := store.NewStore(server, gate, emitter, nil)

	w := New(gate, st, surface, "https://edumind.example.org/api/auth/google/start?role=student", nil,
		WithLocation(time.UTC),
		WithClock(func() time.Time { return testNow }))
	t.Cleanup(w.Destroy)
	return w, gate
}

func grantedServer() *MockServer {
	return &MockServer{
		status: models.CalendarStatus{HasProviderAccess: true, AuthMethod: models.AuthMethodGoogle},
		events: []models.RawEvent{
			{"summary": "Advising", "start": map[string]any{"dateTime": "2025-03-10T15:00:00Z"}},
		},
	}
}

func TestInitWithoutSurfaceIsSilentNoop(t *testing.T) {
	server := grantedServer()
	w, _ := newTestWidget(t, server, nil)

	w.Init(context.Background())
	if w.State() != Uninitialized {
		t.Errorf("state = %v, want uninitialized", w.State())
	}
	if server.statusCalls != 0 {
		t.Errorf("expected no status request, got %d", server.statusCalls)
	}

	// All operations stay no-ops.
	w.Refresh(context.Background())
	w.NextMonth()
	w.DayClick("2025-03-10")
	if server.EventCalls() != 0 {
		t.Errorf("expected no fetches, got %d", server.EventCalls())
	}
}

func TestInitWithoutAccessRendersSignIn(t *testing.T) {
	server := &MockServer{status: models.DefaultCalendarStatus()}
	surface := &MockSurface{}
	w, _ := newTestWidget(t, server, surface)

	w.Init(context.Background())
	if w.State() != Rendered {
		t.Errorf("state = %v, want rendered", w.State())
	}
	if len(surface.signIns) != 1 {
		t.Fatalf("expected sign-in branch, got %d renders", len(surface.signIns))
	}
	if surface.signIns[0] != "https://edumind.example.org/api/auth/google/start?role=student" {
		t.Errorf("sign-in URL = %q", surface.signIns[0])
	}
	if server.EventCalls() != 0 {
		t.Errorf("expected no event fetch without access, got %d", server.EventCalls())
	}
	// The grid still renders, just without event markers.
	grid := surface.lastGrid(t)
	for _, cell := range grid.Cells {
		if len(cell.Events) != 0 {
			t.Errorf("cell %s has events without access", cell.ISODate)
		}
	}
}

func TestInitWithAccessRendersEvents(t *testing.T) {
	server := grantedServer()
	surface := &MockSurface{}
	w, _ := newTestWidget(t, server, surface)

	w.Init(context.Background())
	if w.State() != Rendered {
		t.Errorf("state = %v, want rendered", w.State())
	}
	if server.EventCalls() != 1 {
		t.Fatalf("expected 1 fetch, got %d", server.EventCalls())
	}

	grid := surface.lastGrid(t)
	if grid.Month != (view.Month{Year: 2025, Month: time.March}) {
		t.Errorf("reference month = %+v", grid.Month)
	}
	var found bool
	for _, cell := range grid.Cells {
		if cell.ISODate == "2025-03-10" {
			found = true
			if len(cell.Events) != 1 || cell.Events[0].Title != "Advising" {
				t.Errorf("March 10 cell = %+v", cell)
			}
		}
	}
	if !found {
		t.Fatal("March 10 cell missing")
	}

	surface.mu.Lock()
	defer surface.mu.Unlock()
	if len(surface.upcoming) == 0 {
		t.Fatal("upcoming list never rendered")
	}
	items := surface.upcoming[len(surface.upcoming)-1]
	if len(items) != 1 || items[0].TimeLabel != "3:00 PM" {
		t.Errorf("upcoming items = %+v", items)
	}

	// Loading indicator toggled around the full render.
	if len(surface.loading) != 2 || !surface.loading[0] || surface.loading[1] {
		t.Errorf("loading toggles = %v, want [true false]", surface.loading)
	}
}

func TestNavigationChangesMonthWithoutFetch(t *testing.T) {
	server := grantedServer()
	surface := &MockSurface{}
	w, _ := newTestWidget(t, server, surface)
	w.Init(context.Background())

	w.NextMonth()
	if w.ReferenceMonth() != (view.Month{Year: 2025, Month: time.April}) {
		t.Errorf("reference month = %+v, want April 2025", w.ReferenceMonth())
	}
	if server.EventCalls() != 1 {
		t.Errorf("navigation must not fetch, got %d calls", server.EventCalls())
	}
	if got := surface.lastGrid(t).Month; got != (view.Month{Year: 2025, Month: time.April}) {
		t.Errorf("rendered month = %+v", got)
	}

	w.PrevMonth()
	w.PrevMonth()
	if w.ReferenceMonth() != (view.Month{Year: 2025, Month: time.February}) {
		t.Errorf("reference month = %+v, want February 2025", w.ReferenceMonth())
	}
	if w.State() != Rendered {
		t.Errorf("state = %v, want rendered", w.State())
	}
}

func TestManualRefreshReplacesEvents(t *testing.T) {
	server := grantedServer()
	surface := &MockSurface{}
	w, _ := newTestWidget(t, server, surface)
	w.Init(context.Background())

	// Server now returns an empty list; the re-render must show it.
	server.mu.Lock()
	server.events = nil
	server.mu.Unlock()

	w.Refresh(context.Background())
	if server.EventCalls() != 2 {
		t.Fatalf("expected 2 fetches, got %d", server.EventCalls())
	}
	grid := surface.lastGrid(t)
	for _, cell := range grid.Cells {
		if len(cell.Events) != 0 {
			t.Errorf("cell %s still shows stale events", cell.ISODate)
		}
	}
	if w.State() != Rendered {
		t.Errorf("state = %v, want rendered", w.State())
	}
}

func TestPeriodicTickSkippedWhileFetchInFlight(t *testing.T) {
	server := grantedServer()
	surface := &MockSurface{}
	w, _ := newTestWidget(t, server, surface)
	w.Init(context.Background())

	block := make(chan struct{})
	server.mu.Lock()
	server.block = block
	server.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.Refresh(context.Background())
		close(done)
	}()

	// Wait for the manual refresh to be mid-fetch.
	deadline := time.Now().Add(2 * time.Second)
	for server.EventCalls() != 2 {
		if time.Now().After(deadline) {
			t.Fatal("manual refresh never started")
		}
		time.Sleep(time.Millisecond)
	}

	w.tick(context.Background())
	if got := server.EventCalls(); got != 2 {
		t.Errorf("tick during in-flight fetch must be skipped, got %d calls", got)
	}

	close(block)
	<-done
}

func TestPeriodicTickSkippedAfterRevocation(t *testing.T) {
	server := grantedServer()
	surface := &MockSurface{}
	w, gate := newTestWidget(t, server, surface)
	w.Init(context.Background())

	// Access revoked after arming.
	server.mu.Lock()
	server.status = models.DefaultCalendarStatus()
	server.mu.Unlock()
	gate.Resolve(context.Background())

	w.tick(context.Background())
	if got := server.EventCalls(); got != 1 {
		t.Errorf("tick after revocation must be skipped, got %d calls", got)
	}
}

func TestPeriodicTickRefetchesAndRerenders(t *testing.T) {
	server := grantedServer()
	surface := &MockSurface{}
	w, _ := newTestWidget(t, server, surface)
	w.Init(context.Background())

	surface.mu.Lock()
	loadingToggles := len(surface.loading)
	surface.mu.Unlock()

	w.tick(context.Background())
	if got := server.EventCalls(); got != 2 {
		t.Fatalf("expected tick to fetch, got %d calls", got)
	}
	// Partial render: the loading indicator region is left alone.
	surface.mu.Lock()
	defer surface.mu.Unlock()
	if len(surface.loading) != loadingToggles {
		t.Errorf("tick touched the loading indicator")
	}
	if len(surface.grids) < 2 {
		t.Errorf("tick did not re-render the grid")
	}
}

func TestDayClick(t *testing.T) {
	server := grantedServer()
	surface := &MockSurface{}
	w, _ := newTestWidget(t, server, surface)
	w.Init(context.Background())

	// Day with an event opens the overlay.
	w.DayClick("2025-03-10")
	surface.mu.Lock()
	details := len(surface.details)
	surface.mu.Unlock()
	if details != 1 {
		t.Fatalf("expected 1 day detail, got %d", details)
	}

	// Empty day and malformed key are no-ops.
	w.DayClick("2025-03-11")
	w.DayClick("not-a-date")
	surface.mu.Lock()
	defer surface.mu.Unlock()
	if len(surface.details) != 1 {
		t.Errorf("expected no further details, got %d", len(surface.details))
	}
	if surface.details[0].Items[0].Title != "Advising" {
		t.Errorf("detail = %+v", surface.details[0])
	}
}

func TestDestroyIsTerminal(t *testing.T) {
	server := grantedServer()
	surface := &MockSurface{}
	w, _ := newTestWidget(t, server, surface)
	w.Init(context.Background())

	w.Destroy()
	if w.State() != Destroyed {
		t.Errorf("state = %v, want destroyed", w.State())
	}

	// Everything after destruction is a no-op, not an error.
	w.Refresh(context.Background())
	w.NextMonth()
	w.DayClick("2025-03-10")
	w.tick(context.Background())
	w.Init(context.Background())
	if server.EventCalls() != 1 {
		t.Errorf("expected no fetches after destroy, got %d", server.EventCalls())
	}
	if w.State() != Destroyed {
		t.Errorf("state = %v, want destroyed to be terminal", w.State())
	}

	// Double destroy is safe.
	w.Destroy()
}
