package destination

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lezatlabs/scheduling-backend/internal/domain/entities"
	"github.com/lezatlabs/scheduling-backend/pkg/config"
)

func calendarTestConfig(apiURL string) *config.Config {
	cfg := &config.Config{}
	cfg.Calendar.APIURL = apiURL
	cfg.Calendar.CalendarID = "primary"
	cfg.Calendar.Timezone = "UTC"
	cfg.Calendar.Timeout = 5 * time.Second
	return cfg
}

func calendarSettings(timezone string) *entities.IntegrationSettings {
	return &entities.IntegrationSettings{
		ClientReferenceID:   "u1",
		Timezone:            timezone,
		GoogleCalendarToken: "token",
	}
}

func dueItem(t *testing.T) entities.ActionItem {
	t.Helper()
	due, err := time.Parse("2006-01-02", "2024-01-10")
	if err != nil {
		t.Fatal(err)
	}
	return entities.ActionItem{Title: "Send the report", DueDate: &due}
}

// capturedTimeZone creates one event through the factory-built calendar
// destination and returns the timeZone the request carried.
func capturedTimeZone(t *testing.T, settings *entities.IntegrationSettings) string {
	t.Helper()

	var gotTimeZone string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event struct {
			Start struct {
				TimeZone string `json:"timeZone"`
			} `json:"start"`
		}
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			t.Errorf("unexpected request body: %v", err)
		}
		gotTimeZone = event.Start.TimeZone
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "ev-1"})
	}))
	defer server.Close()

	factory := NewFactory(calendarTestConfig(server.URL))
	calendar := factory.Calendar(settings)
	if calendar == nil {
		t.Fatal("expected a calendar destination for configured settings")
	}
	if _, err := calendar.CreateDueDateEvent(context.Background(), "m1", dueItem(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return gotTimeZone
}

func TestCalendar_UsesTenantTimezone(t *testing.T) {
	if got := capturedTimeZone(t, calendarSettings("America/New_York")); got != "America/New_York" {
		t.Errorf("expected tenant timezone on the event, got %q", got)
	}
}

func TestCalendar_InvalidTimezoneNormalizesToUTC(t *testing.T) {
	if got := capturedTimeZone(t, calendarSettings("Mars/Olympus_Mons")); got != "UTC" {
		t.Errorf("expected UTC for an unparseable timezone, got %q", got)
	}
}

func TestCalendar_EmptyTimezoneFallsBackToDefault(t *testing.T) {
	if got := capturedTimeZone(t, calendarSettings("")); got != "UTC" {
		t.Errorf("expected configured default timezone, got %q", got)
	}
}

func TestCalendar_NilWhenUnconfigured(t *testing.T) {
	factory := NewFactory(calendarTestConfig("http://localhost"))
	settings := calendarSettings("UTC")
	settings.GoogleCalendarToken = ""
	if factory.Calendar(settings) != nil {
		t.Error("expected no calendar destination without tokens")
	}
}
