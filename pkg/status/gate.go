// Package status holds the calendar access state that gates the rest of the
// widget: which UI branch renders and whether the periodic refresh is armed.
package status

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aliasghar-j/EduMind/internal/models"
)

// Checker is the slice of the API client the gate needs.
type Checker interface {
	CalendarStatus(ctx context.Context) (models.CalendarStatus, error)
}

// Gate resolves and caches the student's calendar access status. Resolution
// failures degrade silently to the no-access default because the widget must
// still render the sign-in affordance.
type Gate struct {
	checker Checker
	logger  *slog.Logger

	mu       sync.RWMutex
	status   models.CalendarStatus
	resolved bool
}

// NewGate creates an unresolved gate. Until Resolve is called the gate
// reports the no-access default.
func NewGate(checker Checker, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		checker: checker,
		logger:  logger,
		status:  models.DefaultCalendarStatus(),
	}
}

// Resolve fetches the status from the server and stores it. On any failure
// the stored status becomes the safe default and the error is only logged;
// resolution itself always succeeds. Idempotent and re-invocable, e.g. from
// a manual "refresh status" action.
func (g *Gate) Resolve(ctx context.Context) models.CalendarStatus {
	status, err := g.checker.CalendarStatus(ctx)
	if err != nil {
		g.logger.Warn("Calendar status check failed, assuming no provider access",
			"error", err)
		status = models.DefaultCalendarStatus()
	}

	g.mu.Lock()
	g.status = status
	g.resolved = true
	g.mu.Unlock()

	g.logger.Debug("Calendar status resolved",
		"has_provider_access", status.HasProviderAccess,
		"auth_method", status.AuthMethod)

	return status
}

// Status returns the current status.
func (g *Gate) Status() models.CalendarStatus {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.status
}

// HasProviderAccess reports whether the student granted calendar access.
func (g *Gate) HasProviderAccess() bool {
	return g.Status().HasProviderAccess
}

// Resolved reports whether Resolve has completed at least once.
func (g *Gate) Resolved() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.resolved
}
