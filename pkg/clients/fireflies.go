package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/lezatlabs/scheduling-backend/internal/domain/entities"
	"github.com/lezatlabs/scheduling-backend/pkg/config"
)

// FirefliesClient is a minimal client for the Fireflies GraphQL API,
// used to fetch full transcripts by meeting id.
type FirefliesClient struct {
	apiURL    string
	apiKey    string
	userAgent string
	client    *http.Client
}

// NewFirefliesClient creates a Fireflies client from config. Returns nil
// when no API key is configured; callers treat a nil client as "fetch
// capability not available".
func NewFirefliesClient(cfg *config.FirefliesConfig) *FirefliesClient {
	if cfg == nil || cfg.APIKey == "" {
		return nil
	}
	return &FirefliesClient{
		apiURL:    cfg.APIURL,
		apiKey:    cfg.APIKey,
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: cfg.Timeout},
	}
}

// Fireflies tenants differ in which transcript fields their plan
// exposes; querying an unavailable field is a GraphQL error, so fetch
// retries with progressively smaller field sets.
var firefliesTranscriptQueries = []string{
	`query TranscriptById($id: String!) {
	  transcript(id: $id) {
	    id title date meeting_link transcript_url
	    organizer_email host_email participants fireflies_users
	    user { email }
	    meeting_attendees { email name displayName }
	    sentences { index speaker_name speaker_id text start_time end_time }
	  }
	}`,
	`query TranscriptById($id: String!) {
	  transcript(id: $id) {
	    id title date meeting_link transcript_url
	    organizer_email participants
	    meeting_attendees { email }
	    sentences { index speaker_name speaker_id text start_time end_time }
	  }
	}`,
	`query TranscriptById($id: String!) {
	  transcript(id: $id) {
	    id title date meeting_link transcript_url
	    sentences { text }
	  }
	}`,
}

type firefliesSentence struct {
	Index       int     `json:"index"`
	SpeakerName string  `json:"speaker_name"`
	SpeakerID   string  `json:"speaker_id"`
	Text        string  `json:"text"`
	StartTime   float64 `json:"start_time"`
	EndTime     float64 `json:"end_time"`
}

type firefliesAttendee struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

type firefliesTranscript struct {
	ID               string              `json:"id"`
	Title            string              `json:"title"`
	MeetingLink      string              `json:"meeting_link"`
	TranscriptURL    string              `json:"transcript_url"`
	OrganizerEmail   string              `json:"organizer_email"`
	HostEmail        string              `json:"host_email"`
	Participants     []string            `json:"participants"`
	FirefliesUsers   []string            `json:"fireflies_users"`
	User             *struct{ Email string `json:"email"` } `json:"user"`
	MeetingAttendees []firefliesAttendee `json:"meeting_attendees"`
	Sentences        []firefliesSentence `json:"sentences"`
}

type firefliesResponse struct {
	Data *struct {
		Transcript *firefliesTranscript `json:"transcript"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// errGraphQL marks field-availability failures that are worth retrying
// with a smaller query.
type errGraphQL struct{ message string }

func (e errGraphQL) Error() string {
	return fmt.Sprintf("fireflies graphql error: %s", e.message)
}

// FetchTranscript retrieves a transcript by meeting id. Each query
// attempt carries the client's configured timeout; there is no retry on
// network failures.
func (c *FirefliesClient) FetchTranscript(ctx context.Context, meetingID string) (*entities.MeetingTranscript, error) {
	var lastGraphQLErr error
	for _, query := range firefliesTranscriptQueries {
		transcript, err := c.fetchWithQuery(ctx, meetingID, query)
		if err != nil {
			var gqlErr errGraphQL
			if errors.As(err, &gqlErr) {
				lastGraphQLErr = err
				continue
			}
			return nil, err
		}
		return mapFirefliesTranscript(transcript), nil
	}
	if lastGraphQLErr != nil {
		return nil, lastGraphQLErr
	}
	return nil, fmt.Errorf("fireflies transcript query failed")
}

func (c *FirefliesClient) fetchWithQuery(ctx context.Context, meetingID, query string) (*firefliesTranscript, error) {
	body, err := json.Marshal(map[string]interface{}{
		"query":     query,
		"variables": map[string]string{"id": meetingID},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fireflies connection error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fireflies returned status %d", resp.StatusCode)
	}

	var parsed firefliesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("fireflies returned invalid JSON: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return nil, errGraphQL{message: parsed.Errors[0].Message}
	}
	if parsed.Data == nil || parsed.Data.Transcript == nil {
		return nil, fmt.Errorf("fireflies transcript not found for meeting %s", meetingID)
	}
	return parsed.Data.Transcript, nil
}

func mapFirefliesTranscript(t *firefliesTranscript) *entities.MeetingTranscript {
	sentences := make([]entities.TranscriptSentence, 0, len(t.Sentences))
	var textParts []string
	for _, s := range t.Sentences {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		speaker := s.SpeakerName
		if speaker == "" {
			speaker = s.SpeakerID
		}
		sentences = append(sentences, entities.TranscriptSentence{
			Index:     s.Index,
			Speaker:   speaker,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			Text:      text,
		})
		textParts = append(textParts, text)
	}

	return &entities.MeetingTranscript{
		TranscriptID:      t.ID,
		Title:             t.Title,
		MeetingLink:       t.MeetingLink,
		Text:              strings.Join(textParts, "\n"),
		Sentences:         sentences,
		ParticipantEmails: collectFirefliesEmails(t),
	}
}

// collectFirefliesEmails deduplicates lowercased participant emails
// across every metadata field the API may populate.
func collectFirefliesEmails(t *firefliesTranscript) []string {
	seen := map[string]struct{}{}
	add := func(raw string) {
		email := strings.ToLower(strings.TrimSpace(raw))
		if email == "" || !strings.Contains(email, "@") {
			return
		}
		seen[email] = struct{}{}
	}

	add(t.OrganizerEmail)
	add(t.HostEmail)
	if t.User != nil {
		add(t.User.Email)
	}
	for _, p := range t.Participants {
		add(p)
	}
	for _, u := range t.FirefliesUsers {
		add(u)
	}
	for _, a := range t.MeetingAttendees {
		add(a.Email)
	}

	emails := make([]string, 0, len(seen))
	for email := range seen {
		emails = append(emails, email)
	}
	sort.Strings(emails)
	return emails
}
