// Package api is the HTTP client for the dashboard server's calendar
// endpoints. The server owns OAuth and the Google Calendar integration; this
// client only consumes the documented request/response contract.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/aliasghar-j/EduMind/internal/models"
	"github.com/aliasghar-j/EduMind/pkg/retry"
)

const (
	statusPath    = "/api/student/me/calendar/status"
	eventsPath    = "/api/student/me/calendar/events"
	calendarsPath = "/api/student/me/calendar/calendars"
	signInPath    = "/api/auth/google/start"

	defaultTimeout = 30 * time.Second
)

// AccessDeniedError is returned when the server answers 403 on the events
// endpoint: the provider revoked or never granted calendar permission. It is
// a recoverable, user-visible condition.
type AccessDeniedError struct {
	Message string
}

func (e *AccessDeniedError) Error() string {
	if e.Message == "" {
		return "calendar access denied"
	}
	return e.Message
}

// Client talks to the dashboard server on behalf of the signed-in student.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retryer    *retry.Retryer
	logger     *slog.Logger
}

// NewClient creates a client for the given server base URL, e.g.
// "https://edumind.example.org". A nil logger falls back to slog.Default().
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		retryer:    retry.NewRetryer(nil, logger),
		logger:     logger,
	}
}

// CalendarStatus fetches the student's calendar access status.
func (c *Client) CalendarStatus(ctx context.Context) (models.CalendarStatus, error) {
	var status models.CalendarStatus
	body, err := c.get(ctx, statusPath, nil)
	if err != nil {
		return status, fmt.Errorf("calendar status: %w", err)
	}
	if err := json.Unmarshal(body, &status); err != nil {
		return status, fmt.Errorf("calendar status: decode response: %w", err)
	}
	return status, nil
}

// UpcomingEvents fetches the student's upcoming events within the given
// bounds. A 403 response yields *AccessDeniedError carrying the server's
// message.
func (c *Client) UpcomingEvents(ctx context.Context, maxResults, daysAhead int) ([]models.RawEvent, error) {
	query := url.Values{
		"max_results": {strconv.Itoa(maxResults)},
		"days_ahead":  {strconv.Itoa(daysAhead)},
	}

	body, err := c.get(ctx, eventsPath, query)
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}

	var payload struct {
		Events []models.RawEvent `json:"events"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("fetch events: decode response: %w", err)
	}
	return payload.Events, nil
}

// ListCalendars fetches the student's calendar list.
func (c *Client) ListCalendars(ctx context.Context) ([]models.Calendar, error) {
	body, err := c.get(ctx, calendarsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("list calendars: %w", err)
	}

	var payload struct {
		Calendars []models.Calendar `json:"calendars"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("list calendars: decode response: %w", err)
	}
	return payload.Calendars, nil
}

// SignInURL is the Google sign-in entry point to present when the student
// has no provider access. Opened by the user, outside this client's control
// flow.
func (c *Client) SignInURL() string {
	return c.baseURL + signInPath + "?role=student"
}

// get performs a GET with retries on transient failures. A 403 is returned
// as *AccessDeniedError and never retried; other non-2xx statuses become
// *retry.HTTPError so the retryer can decide.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var body []byte
	err := c.retryer.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response body: %w", err)
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			body = data
			return nil
		case resp.StatusCode == http.StatusForbidden:
			return &AccessDeniedError{Message: deniedMessage(data)}
		default:
			c.logger.Debug("Request failed",
				"url", reqURL,
				"status", resp.Status)
			return &retry.HTTPError{
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				URL:        reqURL,
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// deniedMessage pulls the server's error string out of a 403 body, if any.
func deniedMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Error
}
