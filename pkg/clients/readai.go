package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/lezatlabs/scheduling-backend/internal/domain/entities"
	"github.com/lezatlabs/scheduling-backend/pkg/config"
)

// ReadAIClient fetches meeting details from the Read AI REST API.
type ReadAIClient struct {
	apiURL    string
	apiKey    string
	userAgent string
	client    *http.Client
}

// NewReadAIClient creates a Read AI client from config. Returns nil when
// no API key is configured.
func NewReadAIClient(cfg *config.ReadAIConfig) *ReadAIClient {
	if cfg == nil || cfg.APIKey == "" {
		return nil
	}
	return &ReadAIClient{
		apiURL:    strings.TrimRight(cfg.APIURL, "/"),
		apiKey:    cfg.APIKey,
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: cfg.Timeout},
	}
}

type readAIMeeting struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	MeetingURL string `json:"meeting_url"`
	Transcript struct {
		Text     string `json:"text"`
		Segments []struct {
			Speaker string  `json:"speaker"`
			Start   float64 `json:"start"`
			End     float64 `json:"end"`
			Text    string  `json:"text"`
		} `json:"segments"`
	} `json:"transcript"`
	Participants []struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"participants"`
}

// FetchTranscript retrieves transcript data for a meeting id.
func (c *ReadAIClient) FetchTranscript(ctx context.Context, meetingID string) (*entities.MeetingTranscript, error) {
	url := fmt.Sprintf("%s/meetings/%s", c.apiURL, meetingID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("read.ai connection error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("read.ai meeting not found: %s", meetingID)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("read.ai returned status %d", resp.StatusCode)
	}

	var meeting readAIMeeting
	if err := json.NewDecoder(resp.Body).Decode(&meeting); err != nil {
		return nil, fmt.Errorf("read.ai returned invalid JSON: %w", err)
	}

	sentences := make([]entities.TranscriptSentence, 0, len(meeting.Transcript.Segments))
	for i, seg := range meeting.Transcript.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		sentences = append(sentences, entities.TranscriptSentence{
			Index:     i,
			Speaker:   seg.Speaker,
			StartTime: seg.Start,
			EndTime:   seg.End,
			Text:      text,
		})
	}

	seen := map[string]struct{}{}
	for _, p := range meeting.Participants {
		email := strings.ToLower(strings.TrimSpace(p.Email))
		if email == "" || !strings.Contains(email, "@") {
			continue
		}
		seen[email] = struct{}{}
	}
	emails := make([]string, 0, len(seen))
	for email := range seen {
		emails = append(emails, email)
	}
	sort.Strings(emails)

	return &entities.MeetingTranscript{
		TranscriptID:      meeting.ID,
		Title:             meeting.Title,
		MeetingLink:       meeting.MeetingURL,
		Text:              meeting.Transcript.Text,
		Sentences:         sentences,
		ParticipantEmails: emails,
	}, nil
}
