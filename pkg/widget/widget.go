// Package widget wires the calendar pieces together: status resolution,
// fetching, rendering, navigation, the day-detail overlay and the periodic
// refresh timer. It owns no rendering itself; a Surface implementation does.
package widget

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aliasghar-j/EduMind/internal/models"
	"github.com/aliasghar-j/EduMind/pkg/status"
	"github.com/aliasghar-j/EduMind/pkg/store"
	"github.com/aliasghar-j/EduMind/pkg/view"
)

// RefreshInterval is the fixed period of the background refresh.
const RefreshInterval = 5 * time.Minute

// State is the widget lifecycle state.
type State int

const (
	Uninitialized State = iota
	StatusResolved
	Rendered
	Refreshing
	Destroyed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case StatusResolved:
		return "status-resolved"
	case Rendered:
		return "rendered"
	case Refreshing:
		return "refreshing"
	case Destroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Surface is the rendering contract the host environment implements. The
// widget calls it with pure view-models; how regions are drawn, and how the
// day-detail overlay is presented and dismissed, is the surface's concern.
type Surface interface {
	// RenderSignIn draws the sign-in affordance branch, shown when the
	// student has no provider access.
	RenderSignIn(signInURL string)
	// RenderGrid draws the month-grid region.
	RenderGrid(grid view.MonthGrid)
	// RenderUpcoming draws the upcoming-list region; placeholder is shown
	// when items is empty.
	RenderUpcoming(items []view.UpcomingItem, placeholder string)
	// SetLoading toggles the loading indicator region.
	SetLoading(loading bool)
	// ShowDayDetail presents the overlay for a clicked day.
	ShowDayDetail(detail view.DayDetail)
}

// Widget is the calendar widget handle. It is explicitly owned: whoever owns
// the rendering surface creates it with New, drives it, and calls Destroy on
// teardown.
type Widget struct {
	gate      *status.Gate
	store     *store.Store
	surface   Surface
	signInURL string
	logger    *slog.Logger
	loc       *time.Location
	nowFn     func() time.Time

	mu       sync.Mutex
	state    State
	refMonth view.Month

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// Option configures a Widget.
type Option func(*Widget)

// WithLocation sets the viewer's calendar location. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(w *Widget) {
		if loc != nil {
			w.loc = loc
		}
	}
}

// WithClock overrides the widget's time source, for tests.
func WithClock(nowFn func() time.Time) Option {
	return func(w *Widget) {
		if nowFn != nil {
			w.nowFn = nowFn
		}
	}
}

// New creates an uninitialized widget. surface may be nil, in which case
// Init and every other operation is a silent no-op: the host page simply has
// no calendar container.
func New(gate *status.Gate, st *store.Store, surface Surface, signInURL string, logger *slog.Logger, opts ...Option) *Widget {
	if logger == nil {
		logger = slog.Default()
	}

	w := &Widget{
		gate:      gate,
		store:     st,
		surface:   surface,
		signInURL: signInURL,
		logger:    logger,
		loc:       time.Local,
		nowFn:     time.Now,
		state:     Uninitialized,
		stopCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.refMonth = view.MonthOf(w.nowFn().In(w.loc))
	return w
}

// Init resolves the access status, renders the first view and, when the
// student has provider access, arms the periodic refresh. Re-initializing or
// initializing a destroyed widget is a no-op.
func (w *Widget) Init(ctx context.Context) {
	if w.surface == nil {
		w.logger.Debug("No calendar surface, widget not initialized")
		return
	}

	w.mu.Lock()
	if w.state != Uninitialized {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	// Both a successful check and the degraded default complete
	// resolution; neither fails the transition.
	w.gate.Resolve(ctx)
	w.setState(StatusResolved)

	w.renderCalendar(ctx, true)
	w.setState(Rendered)

	if w.gate.HasProviderAccess() {
		w.wg.Add(1)
		go w.refreshLoop(ctx)
		w.logger.Debug("Periodic refresh armed", "interval", RefreshInterval)
	}
}

// Refresh performs a manual fetch and full re-render. No-op unless the
// widget is currently rendered.
func (w *Widget) Refresh(ctx context.Context) {
	if !w.enterRefresh() {
		return
	}
	defer w.setState(Rendered)

	w.renderCalendar(ctx, true)
}

// NextMonth advances the reference month and re-renders the grid from the
// cached events. No fetch.
func (w *Widget) NextMonth() {
	w.navigate(func(m view.Month) view.Month { return m.Next() })
}

// PrevMonth moves the reference month back and re-renders the grid from the
// cached events. No fetch.
func (w *Widget) PrevMonth() {
	w.navigate(func(m view.Month) view.Month { return m.Prev() })
}

func (w *Widget) navigate(step func(view.Month) view.Month) {
	if !w.enterRefresh() {
		return
	}
	defer w.setState(Rendered)

	w.mu.Lock()
	w.refMonth = step(w.refMonth)
	ref := w.refMonth
	w.mu.Unlock()

	w.surface.RenderGrid(view.BuildMonthGrid(ref, w.store.Events(), w.nowFn().In(w.loc)))
}

// DayClick handles a click on the day cell with the given ISO date key.
// Days without events are a no-op; otherwise the day-detail overlay opens.
func (w *Widget) DayClick(isoDate string) {
	if w.destroyed() || w.surface == nil {
		return
	}

	date, err := time.ParseInLocation(view.ISODateLayout, isoDate, w.loc)
	if err != nil {
		w.logger.Warn("Ignoring day click with bad date key", "date", isoDate)
		return
	}

	detail := view.BuildDayDetail(date, w.store.Events())
	if len(detail.Items) == 0 {
		return
	}
	w.surface.ShowDayDetail(detail)
}

// State returns the current lifecycle state.
func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// ReferenceMonth returns the month the grid is displaying.
func (w *Widget) ReferenceMonth() view.Month {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.refMonth
}

// Destroy cancels the periodic refresh and puts the widget in its terminal
// state. Safe to call more than once; any operation after Destroy is a
// no-op, not an error.
func (w *Widget) Destroy() {
	w.mu.Lock()
	if w.state == Destroyed {
		w.mu.Unlock()
		return
	}
	w.state = Destroyed
	w.mu.Unlock()

	close(w.stopCh)
	w.wg.Wait()
	w.logger.Debug("Calendar widget destroyed")
}

// refreshLoop re-fetches and re-renders the event regions on a fixed period
// until the widget is destroyed.
func (w *Widget) refreshLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

// tick is one periodic refresh: skipped entirely when a fetch is already in
// flight or access was revoked after arming. It re-renders only the grid and
// upcoming-list regions so open interaction state elsewhere is undisturbed.
func (w *Widget) tick(ctx context.Context) {
	if w.store.Loading() {
		w.logger.Debug("Skipping periodic refresh, fetch already in flight")
		return
	}
	if !w.gate.HasProviderAccess() {
		w.logger.Debug("Skipping periodic refresh, provider access revoked")
		return
	}
	if !w.enterRefresh() {
		return
	}
	defer w.setState(Rendered)

	w.renderCalendar(ctx, false)
}

// renderCalendar runs the fetch-then-render pipeline. A full render also
// draws the sign-in branch and drives the loading indicator; a partial
// render touches only the grid and upcoming-list regions.
func (w *Widget) renderCalendar(ctx context.Context, full bool) {
	if !w.gate.HasProviderAccess() {
		if full {
			w.surface.RenderSignIn(w.signInURL)
			w.surface.RenderGrid(w.buildGrid(nil))
			w.surface.RenderUpcoming(nil, view.NoUpcomingMessage)
		}
		return
	}

	if full {
		w.surface.SetLoading(true)
		defer w.surface.SetLoading(false)
	}

	events := w.store.FetchUpcoming(ctx)
	now := w.nowFn().In(w.loc)

	w.surface.RenderGrid(w.buildGrid(events))
	w.surface.RenderUpcoming(view.BuildUpcomingList(events, now), view.NoUpcomingMessage)
}

func (w *Widget) buildGrid(events []models.RawEvent) view.MonthGrid {
	w.mu.Lock()
	ref := w.refMonth
	w.mu.Unlock()
	return view.BuildMonthGrid(ref, events, w.nowFn().In(w.loc))
}

func (w *Widget) setState(s State) {
	w.mu.Lock()
	if w.state != Destroyed {
		w.state = s
	}
	w.mu.Unlock()
}

// enterRefresh moves Rendered → Refreshing; returns false when the widget
// is not in a state that accepts the operation.
func (w *Widget) enterRefresh() bool {
	if w.surface == nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != Rendered && w.state != StatusResolved {
		return false
	}
	w.state = Refreshing
	return true
}

func (w *Widget) destroyed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state == Destroyed || w.state == Uninitialized
}
