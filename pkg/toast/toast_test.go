package toast

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aliasghar-j/EduMind/internal/models"
)

// MockSink records published messages for assertions.
type MockSink struct {
	mu        sync.Mutex
	published []*models.ToastMessage
	closed    bool
}

func (m *MockSink) Publish(ctx context.Context, msg *models.ToastMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, msg)
	return nil
}

func (m *MockSink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockSink) Published() []*models.ToastMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.ToastMessage(nil), m.published...)
}

func TestEmitStacksMessages(t *testing.T) {
	emitter := NewEmitter(nil)
	defer emitter.Close()

	emitter.Emit("saved", models.SeveritySuccess)
	emitter.Emit("oops", models.SeverityError)

	active := emitter.Active()
	if len(active) != 2 {
		t.Fatalf("expected 2 active toasts, got %d", len(active))
	}
	if active[0].Text != "saved" || active[1].Text != "oops" {
		t.Errorf("unexpected queue order: %+v", active)
	}
	if active[0].Severity != models.SeveritySuccess {
		t.Errorf("severity = %q, want %q", active[0].Severity, models.SeveritySuccess)
	}
	if active[0].CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestMessagesExpire(t *testing.T) {
	emitter := NewEmitter(nil)
	defer emitter.Close()

	emitter.EmitFor("short-lived", models.SeverityInfo, 10*time.Millisecond)
	emitter.EmitFor("long-lived", models.SeverityInfo, time.Minute)

	deadline := time.Now().Add(2 * time.Second)
	for {
		active := emitter.Active()
		if len(active) == 1 {
			if active[0].Text != "long-lived" {
				t.Fatalf("wrong survivor: %+v", active)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("toast did not expire; active = %+v", active)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestListenerSeesQueueChanges(t *testing.T) {
	var (
		mu        sync.Mutex
		snapshots [][]models.ToastMessage
	)

	emitter := NewEmitter(nil, WithListener(func(active []models.ToastMessage) {
		mu.Lock()
		defer mu.Unlock()
		snapshots = append(snapshots, active)
	}))
	defer emitter.Close()

	emitter.Emit("hello", models.SeverityInfo)

	mu.Lock()
	defer mu.Unlock()
	if len(snapshots) != 1 {
		t.Fatalf("expected 1 listener call, got %d", len(snapshots))
	}
	if len(snapshots[0]) != 1 || snapshots[0][0].Text != "hello" {
		t.Errorf("unexpected snapshot: %+v", snapshots[0])
	}
}

func TestSinkReceivesCopies(t *testing.T) {
	sink := &MockSink{}
	emitter := NewEmitter(nil, WithSink(sink))

	emitter.Emit("mirrored", models.SeverityInfo)

	published := sink.Published()
	if len(published) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(published))
	}
	if published[0].Text != "mirrored" {
		t.Errorf("published text = %q, want %q", published[0].Text, "mirrored")
	}

	if err := emitter.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !sink.closed {
		t.Error("expected sink to be closed with the emitter")
	}
}

func TestEmitAfterCloseIsNoop(t *testing.T) {
	emitter := NewEmitter(nil)
	if err := emitter.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	emitter.Emit("too late", models.SeverityInfo)
	if active := emitter.Active(); len(active) != 0 {
		t.Errorf("expected no active toasts after close, got %d", len(active))
	}

	// Closing twice must be safe.
	if err := emitter.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}
