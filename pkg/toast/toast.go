// Package toast provides the dashboard's shared transient-notification
// surface. Any component may push a message; the emitter keeps a display
// queue and removes each message after its display duration.
package toast

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aliasghar-j/EduMind/internal/models"
)

const (
	// DefaultDuration is how long an ordinary toast stays visible.
	DefaultDuration = 3 * time.Second
	// CalendarDuration is the longer display window used for calendar
	// fetch notifications.
	CalendarDuration = 5 * time.Second
)

// Sink receives a copy of every emitted message, e.g. to mirror dashboard
// notifications onto a message bus. Sink errors are logged, never surfaced.
type Sink interface {
	Publish(ctx context.Context, msg *models.ToastMessage) error
	Close() error
}

// Listener is notified with a snapshot of the active queue whenever it
// changes, so a display layer can re-render its toast region.
type Listener func(active []models.ToastMessage)

type entry struct {
	msg   models.ToastMessage
	timer *time.Timer
}

// Emitter is the process-wide toast queue. Safe for concurrent use.
type Emitter struct {
	logger *slog.Logger
	sink   Sink

	mu       sync.Mutex
	queue    []*entry
	listener Listener
	nowFn    func() time.Time
	closed   bool
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithSink attaches a fan-out sink for emitted messages.
func WithSink(sink Sink) Option {
	return func(e *Emitter) { e.sink = sink }
}

// WithListener registers the display-layer callback.
func WithListener(l Listener) Option {
	return func(e *Emitter) { e.listener = l }
}

// NewEmitter creates a toast emitter.
func NewEmitter(logger *slog.Logger, opts ...Option) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}

	e := &Emitter{
		logger: logger,
		nowFn:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Emit enqueues a message with the default display duration.
func (e *Emitter) Emit(text string, severity models.Severity) {
	e.EmitFor(text, severity, DefaultDuration)
}

// EmitFor enqueues a message that stays visible for the given duration.
// Emitting on a closed emitter is a no-op.
func (e *Emitter) EmitFor(text string, severity models.Severity, duration time.Duration) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}

	msg := models.ToastMessage{
		Text:      text,
		Severity:  severity,
		CreatedAt: e.nowFn(),
	}

	ent := &entry{msg: msg}
	ent.timer = time.AfterFunc(duration, func() {
		e.expire(ent)
	})
	e.queue = append(e.queue, ent)

	e.logger.Debug("Toast emitted",
		"text", text,
		"severity", severity,
		"duration", duration)

	e.notifyLocked()
	sink := e.sink
	e.mu.Unlock()

	if sink != nil {
		if err := sink.Publish(context.Background(), &msg); err != nil {
			e.logger.Warn("Toast sink publish failed", "error", err)
		}
	}
}

// expire removes a single message when its display timer fires.
func (e *Emitter) expire(target *entry) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, ent := range e.queue {
		if ent == target {
			e.queue = append(e.queue[:i], e.queue[i+1:]...)
			e.notifyLocked()
			return
		}
	}
}

// Active returns a snapshot of the messages currently on display, oldest
// first.
func (e *Emitter) Active() []models.ToastMessage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Emitter) snapshotLocked() []models.ToastMessage {
	active := make([]models.ToastMessage, len(e.queue))
	for i, ent := range e.queue {
		active[i] = ent.msg
	}
	return active
}

func (e *Emitter) notifyLocked() {
	if e.listener != nil {
		e.listener(e.snapshotLocked())
	}
}

// Close stops all pending display timers, drops the queue, and closes the
// sink if one is attached. Further Emit calls are no-ops.
func (e *Emitter) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	for _, ent := range e.queue {
		ent.timer.Stop()
	}
	e.queue = nil
	sink := e.sink
	e.mu.Unlock()

	if sink != nil {
		return sink.Close()
	}
	return nil
}
