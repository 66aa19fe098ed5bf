package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lezatlabs/scheduling-backend/internal/domain/entities"
	"github.com/lezatlabs/scheduling-backend/pkg/config"
)

const notionAPIURL = "https://api.notion.com/v1"

// NotionClient creates task pages in a user's Notion tasks database.
// Tokens are per user, so a client is built per dispatch from the
// tenant's integration settings.
type NotionClient struct {
	token      string
	databaseID string
	cfg        *config.NotionConfig
	client     *http.Client
}

// NewNotionClient builds a client scoped to one tenant's token and
// database.
func NewNotionClient(cfg *config.NotionConfig, token, databaseID string) *NotionClient {
	return &NotionClient{
		token:      token,
		databaseID: databaseID,
		cfg:        cfg,
		client:     &http.Client{Timeout: cfg.Timeout},
	}
}

type notionPageRequest struct {
	Parent     map[string]string      `json:"parent"`
	Properties map[string]interface{} `json:"properties"`
}

type notionPageResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type notionErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateTask creates a page in the tasks database for the action item and
// returns the created page id.
func (c *NotionClient) CreateTask(ctx context.Context, meetingID string, item entities.ActionItem) (string, error) {
	props := map[string]interface{}{
		c.cfg.TitleProperty: map[string]interface{}{
			"title": []map[string]interface{}{
				{"text": map[string]string{"content": item.Title}},
			},
		},
		c.cfg.StatusProperty: map[string]interface{}{
			"status": map[string]string{"name": c.cfg.TodoStatusName},
		},
		c.cfg.MeetingProperty: map[string]interface{}{
			"rich_text": []map[string]interface{}{
				{"text": map[string]string{"content": meetingID}},
			},
		},
	}
	if item.Details != "" {
		props[c.cfg.DetailsProperty] = map[string]interface{}{
			"rich_text": []map[string]interface{}{
				{"text": map[string]string{"content": item.Details}},
			},
		}
	}
	if item.HasDueDate() {
		props[c.cfg.DueDateProperty] = map[string]interface{}{
			"date": map[string]string{"start": item.DueDate.Format("2006-01-02")},
		}
	}

	body := notionPageRequest{
		Parent:     map[string]string{"database_id": c.databaseID},
		Properties: props,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, notionAPIURL+"/pages", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", c.cfg.APIVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("notion connection error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr notionErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Message != "" {
			return "", fmt.Errorf("notion returned status %d: %s", resp.StatusCode, apiErr.Message)
		}
		return "", fmt.Errorf("notion returned status %d", resp.StatusCode)
	}

	var page notionPageResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return "", fmt.Errorf("notion returned invalid JSON: %w", err)
	}
	return page.ID, nil
}
