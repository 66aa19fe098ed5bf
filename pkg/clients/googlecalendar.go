package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/lezatlabs/scheduling-backend/internal/domain/entities"
	"github.com/lezatlabs/scheduling-backend/pkg/config"
)

// GoogleCalendarClient creates all-day events on a user's calendar for
// action items that carry a due date. Requests are authorized through an
// oauth2.TokenSource built from the tenant's stored tokens.
type GoogleCalendarClient struct {
	apiURL     string
	calendarID string
	timezone   string
	tokens     oauth2.TokenSource
	client     *http.Client
}

// NewGoogleCalendarClient builds a client scoped to one tenant's token
// source. Events are created in the tenant's timezone; an empty
// calendarID or timezone falls back to the configured defaults.
func NewGoogleCalendarClient(cfg *config.GoogleCalendarConfig, tokens oauth2.TokenSource, calendarID, timezone string) *GoogleCalendarClient {
	if calendarID == "" {
		calendarID = cfg.CalendarID
	}
	if timezone == "" {
		timezone = cfg.Timezone
	}
	return &GoogleCalendarClient{
		apiURL:     strings.TrimRight(cfg.APIURL, "/"),
		calendarID: calendarID,
		timezone:   timezone,
		tokens:     tokens,
		client:     &http.Client{Timeout: cfg.Timeout},
	}
}

type calendarEventDate struct {
	Date     string `json:"date"`
	TimeZone string `json:"timeZone,omitempty"`
}

type calendarEventRequest struct {
	Summary     string            `json:"summary"`
	Description string            `json:"description,omitempty"`
	Start       calendarEventDate `json:"start"`
	End         calendarEventDate `json:"end"`
}

type calendarEventResponse struct {
	ID       string `json:"id"`
	HTMLLink string `json:"htmlLink"`
}

// CreateDueDateEvent creates an all-day event on the due date and returns
// the created event id. Items without a due date are the caller's problem;
// this method requires one.
func (c *GoogleCalendarClient) CreateDueDateEvent(ctx context.Context, meetingID string, item entities.ActionItem) (string, error) {
	if !item.HasDueDate() {
		return "", fmt.Errorf("action item %q has no due date", item.Title)
	}

	token, err := c.tokens.Token()
	if err != nil {
		return "", fmt.Errorf("google calendar token refresh failed: %w", err)
	}

	day := item.DueDate.Format("2006-01-02")
	nextDay := item.DueDate.AddDate(0, 0, 1).Format("2006-01-02")
	event := calendarEventRequest{
		Summary:     item.Title,
		Description: item.Details,
		Start:       calendarEventDate{Date: day, TimeZone: c.timezone},
		End:         calendarEventDate{Date: nextDay, TimeZone: c.timezone},
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/calendars/%s/events", c.apiURL, c.calendarID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	token.SetAuthHeader(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("google calendar connection error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("google calendar returned status %d", resp.StatusCode)
	}

	var created calendarEventResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("google calendar returned invalid JSON: %w", err)
	}
	return created.ID, nil
}
