package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/lezatlabs/scheduling-backend/pkg/config"
)

func firefliesTestConfig(url string) *config.FirefliesConfig {
	return &config.FirefliesConfig{
		APIURL:    url,
		APIKey:    "test-key",
		Timeout:   5 * time.Second,
		UserAgent: "test",
	}
}

func TestNewFirefliesClient_NoAPIKey(t *testing.T) {
	if c := NewFirefliesClient(&config.FirefliesConfig{}); c != nil {
		t.Error("expected nil client when API key is missing")
	}
	if c := NewFirefliesClient(nil); c != nil {
		t.Error("expected nil client for nil config")
	}
}

func TestFetchTranscript_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", got)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"transcript": map[string]interface{}{
					"id":              "tr-1",
					"title":           "Weekly sync",
					"meeting_link":    "https://meet.google.com/abc",
					"organizer_email": "Alice@Example.com",
					"participants":    []string{"bob@example.com", "alice@example.com"},
					"fireflies_users": []string{"carol@example.com"},
					"meeting_attendees": []map[string]string{
						{"email": "bob@example.com", "name": "Bob"},
					},
					"sentences": []map[string]interface{}{
						{"index": 0, "speaker_name": "Alice", "text": "Hello everyone", "start_time": 0.5, "end_time": 1.2},
						{"index": 1, "speaker_name": "", "speaker_id": "spk-2", "text": "Hi Alice", "start_time": 1.5, "end_time": 2.0},
						{"index": 2, "speaker_name": "Alice", "text": "   "},
					},
				},
			},
		})
	}))
	defer server.Close()

	client := NewFirefliesClient(firefliesTestConfig(server.URL))
	tr, err := client.FetchTranscript(context.Background(), "m-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.TranscriptID != "tr-1" || tr.Title != "Weekly sync" {
		t.Errorf("unexpected transcript metadata: %+v", tr)
	}
	if tr.Text != "Hello everyone\nHi Alice" {
		t.Errorf("unexpected joined text %q", tr.Text)
	}
	if len(tr.Sentences) != 2 {
		t.Fatalf("expected 2 sentences after blank filtering, got %d", len(tr.Sentences))
	}
	if tr.Sentences[1].Speaker != "spk-2" {
		t.Errorf("expected speaker_id fallback, got %q", tr.Sentences[1].Speaker)
	}
	wantEmails := []string{"alice@example.com", "bob@example.com", "carol@example.com"}
	if !reflect.DeepEqual(tr.ParticipantEmails, wantEmails) {
		t.Errorf("expected deduplicated emails %v, got %v", wantEmails, tr.ParticipantEmails)
	}
}

func TestFetchTranscript_FallsBackOnGraphQLErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"errors": []map[string]string{{"message": "Cannot query field \"host_email\""}},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"transcript": map[string]interface{}{
					"id":        "tr-2",
					"title":     "Planning",
					"sentences": []map[string]interface{}{{"text": "Do the thing"}},
				},
			},
		})
	}))
	defer server.Close()

	client := NewFirefliesClient(firefliesTestConfig(server.URL))
	tr, err := client.FetchTranscript(context.Background(), "m-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 query attempts, got %d", calls)
	}
	if tr.Text != "Do the thing" {
		t.Errorf("unexpected text %q", tr.Text)
	}
}

func TestFetchTranscript_AllQueriesFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"errors": []map[string]string{{"message": "not allowed"}},
		})
	}))
	defer server.Close()

	client := NewFirefliesClient(firefliesTestConfig(server.URL))
	if _, err := client.FetchTranscript(context.Background(), "m-3"); err == nil {
		t.Fatal("expected error when every query attempt fails")
	}
}

func TestFetchTranscript_HTTPErrorIsNotRetried(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewFirefliesClient(firefliesTestConfig(server.URL))
	if _, err := client.FetchTranscript(context.Background(), "m-4"); err == nil {
		t.Fatal("expected error on HTTP 401")
	}
	if calls != 1 {
		t.Errorf("expected a single attempt on HTTP error, got %d", calls)
	}
}

func TestFetchTranscript_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{"transcript": nil},
		})
	}))
	defer server.Close()

	client := NewFirefliesClient(firefliesTestConfig(server.URL))
	if _, err := client.FetchTranscript(context.Background(), "missing"); err == nil {
		t.Fatal("expected error when transcript is missing")
	}
}
