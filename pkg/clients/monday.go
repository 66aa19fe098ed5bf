package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/lezatlabs/scheduling-backend/internal/domain/entities"
	"github.com/lezatlabs/scheduling-backend/pkg/config"
)

// MondayClient creates items on a user's Monday board via the GraphQL
// API. Like Notion, tokens are per user and a client is built per
// dispatch.
type MondayClient struct {
	apiURL  string
	token   string
	boardID string
	groupID string
	cfg     *config.MondayConfig
	client  *http.Client
}

// NewMondayClient builds a client scoped to one tenant's token, board
// and group.
func NewMondayClient(cfg *config.MondayConfig, token, boardID, groupID string) *MondayClient {
	return &MondayClient{
		apiURL:  cfg.APIURL,
		token:   token,
		boardID: boardID,
		groupID: groupID,
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

const mondayCreateItemMutation = `mutation CreateItem($boardID: ID!, $groupID: String!, $itemName: String!, $columnValues: JSON!) {
  create_item(board_id: $boardID, group_id: $groupID, item_name: $itemName, column_values: $columnValues) {
    id
  }
}`

type mondayGraphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type mondayGraphQLResponse struct {
	Data struct {
		CreateItem struct {
			ID string `json:"id"`
		} `json:"create_item"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// CreateTask creates a board item for the action item and returns the
// created item id.
func (c *MondayClient) CreateTask(ctx context.Context, meetingID string, item entities.ActionItem) (string, error) {
	columns := map[string]interface{}{
		c.cfg.StatusColumnID:  map[string]string{"label": c.cfg.TodoStatusLabel},
		c.cfg.MeetingColumnID: meetingID,
	}
	if item.Details != "" {
		columns[c.cfg.DetailsColumnID] = item.Details
	}
	if item.HasDueDate() {
		columns[c.cfg.DueDateColumnID] = map[string]string{"date": item.DueDate.Format("2006-01-02")}
	}
	columnValues, err := json.Marshal(columns)
	if err != nil {
		return "", err
	}

	body := mondayGraphQLRequest{
		Query: mondayCreateItemMutation,
		Variables: map[string]interface{}{
			"boardID":      c.boardID,
			"groupID":      c.groupID,
			"itemName":     item.Title,
			"columnValues": string(columnValues),
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("monday connection error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("monday returned status %d", resp.StatusCode)
	}

	var out mondayGraphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("monday returned invalid JSON: %w", err)
	}
	if len(out.Errors) > 0 {
		return "", fmt.Errorf("monday API error: %s", out.Errors[0].Message)
	}
	if out.Data.CreateItem.ID == "" {
		return "", fmt.Errorf("monday returned no item id")
	}
	if _, err := strconv.ParseInt(out.Data.CreateItem.ID, 10, 64); err != nil {
		return "", fmt.Errorf("monday returned malformed item id %q", out.Data.CreateItem.ID)
	}
	return out.Data.CreateItem.ID, nil
}
