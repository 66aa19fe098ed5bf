package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/lezatlabs/scheduling-backend/internal/domain/entities"
	"github.com/lezatlabs/scheduling-backend/pkg/config"
)

const extractionPrompt = `You are an assistant that extracts action items from meeting transcripts.
Given the transcript below, return a JSON object with a single key "action_items"
whose value is an array of objects with these fields:
  - "title": short imperative task title (required)
  - "assignee_email": email of the person responsible, or null if unknown
  - "assignee_name": name of the person responsible, or null if unknown
  - "due_date": due date in YYYY-MM-DD format, or null if none was mentioned
  - "details": one or two sentences of context
  - "source_sentence": the transcript sentence the task was derived from

Only include tasks that were explicitly agreed on during the meeting.
Return only the JSON object, no surrounding text.

Known participants: %s

Transcript:
%s`

// GeminiClient extracts action items from transcripts using the Gemini
// generateContent API.
type GeminiClient struct {
	apiURL  string
	apiKey  string
	model   string
	client  *http.Client
	retries uint64
}

// NewGeminiClient creates a Gemini client from config. Returns nil when
// no API key is configured.
func NewGeminiClient(cfg *config.GeminiConfig) *GeminiClient {
	if cfg == nil || cfg.APIKey == "" {
		return nil
	}
	return &GeminiClient{
		apiURL:  strings.TrimRight(cfg.APIURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{Timeout: cfg.Timeout},
		retries: 3,
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
	Config   struct {
		ResponseMIMEType string `json:"response_mime_type"`
	} `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type extractedItem struct {
	Title          string  `json:"title"`
	AssigneeEmail  *string `json:"assignee_email"`
	AssigneeName   *string `json:"assignee_name"`
	DueDate        *string `json:"due_date"`
	Details        string  `json:"details"`
	SourceSentence string  `json:"source_sentence"`
}

type extractionResult struct {
	ActionItems []extractedItem `json:"action_items"`
}

// errTransient marks responses that are worth retrying (rate limits and
// upstream 5xx).
type errTransient struct{ status int }

func (e errTransient) Error() string {
	return fmt.Sprintf("gemini returned status %d", e.status)
}

// ExtractActionItems runs the extraction prompt over the transcript and
// parses the structured response. Transient upstream failures are retried
// with exponential backoff before giving up.
func (c *GeminiClient) ExtractActionItems(ctx context.Context, transcript *entities.MeetingTranscript) ([]entities.ActionItem, error) {
	prompt := fmt.Sprintf(extractionPrompt, strings.Join(transcript.ParticipantEmails, ", "), transcript.Text)

	var raw string
	operation := func() error {
		text, err := c.generate(ctx, prompt)
		if err != nil {
			if _, ok := err.(errTransient); ok {
				return err
			}
			return backoff.Permanent(err)
		}
		raw = text
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.retries),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}

	return parseActionItems(raw)
}

func (c *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	body := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	body.Config.ResponseMIMEType = "application/json"

	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.apiURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini connection error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", errTransient{status: resp.StatusCode}
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("gemini returned status %d", resp.StatusCode)
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("gemini returned invalid JSON: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

func parseActionItems(raw string) ([]entities.ActionItem, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var result extractionResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("gemini response is not valid action item JSON: %w", err)
	}

	items := make([]entities.ActionItem, 0, len(result.ActionItems))
	for _, it := range result.ActionItems {
		title := strings.TrimSpace(it.Title)
		if title == "" {
			continue
		}
		item := entities.ActionItem{
			Title:          title,
			Details:        strings.TrimSpace(it.Details),
			SourceSentence: strings.TrimSpace(it.SourceSentence),
		}
		if it.AssigneeEmail != nil {
			item.AssigneeEmail = strings.ToLower(strings.TrimSpace(*it.AssigneeEmail))
		}
		if it.AssigneeName != nil {
			item.AssigneeName = strings.TrimSpace(*it.AssigneeName)
		}
		if it.DueDate != nil && *it.DueDate != "" {
			due, err := time.Parse("2006-01-02", *it.DueDate)
			if err == nil {
				item.DueDate = &due
			}
		}
		items = append(items, item)
	}
	return items, nil
}
