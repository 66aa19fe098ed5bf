package entities

import (
	"time"

	"github.com/google/uuid"
)

// IntegrationSettings is the per-user destination configuration. The
// pipeline consumes it read-only, as an immutable snapshot fetched per
// request; an absent or incomplete destination section means "not
// configured" and is skipped, never an error.
type IntegrationSettings struct {
	ID                uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ClientReferenceID string    `json:"client_reference_id" gorm:"type:varchar(255);not null;uniqueIndex"`

	AutosyncEnabled bool   `json:"autosync_enabled" gorm:"default:true"`
	Timezone        string `json:"timezone" gorm:"type:varchar(64);default:'UTC'"`

	NotionAPIToken        string `json:"-" gorm:"type:text"`
	NotionTasksDatabaseID string `json:"-" gorm:"type:varchar(255)"`

	MondayAPIToken string `json:"-" gorm:"type:text"`
	MondayBoardID  string `json:"-" gorm:"type:varchar(255)"`
	MondayGroupID  string `json:"-" gorm:"type:varchar(255)"`

	GoogleCalendarToken        string `json:"-" gorm:"type:text"`
	GoogleCalendarRefreshToken string `json:"-" gorm:"type:text"`
	GoogleCalendarID           string `json:"-" gorm:"type:varchar(255)"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (IntegrationSettings) TableName() string {
	return "user_integration_settings"
}

// HasNotion reports whether the Notion Kanban destination is fully
// configured for this user.
func (s *IntegrationSettings) HasNotion() bool {
	return s.NotionAPIToken != "" && s.NotionTasksDatabaseID != ""
}

// HasMonday reports whether the Monday Kanban destination is fully
// configured for this user.
func (s *IntegrationSettings) HasMonday() bool {
	return s.MondayAPIToken != "" && s.MondayBoardID != "" && s.MondayGroupID != ""
}

// HasCalendar reports whether a calendar destination is configured.
func (s *IntegrationSettings) HasCalendar() bool {
	return s.GoogleCalendarToken != "" || s.GoogleCalendarRefreshToken != ""
}

// KanbanKinds lists the configured Kanban destinations in stable order.
// Extraction and dispatch require at least one; the calendar leg alone
// never qualifies a tenant for dispatch.
func (s *IntegrationSettings) KanbanKinds() []DestinationKind {
	kinds := make([]DestinationKind, 0, 2)
	if s.HasNotion() {
		kinds = append(kinds, DestinationNotion)
	}
	if s.HasMonday() {
		kinds = append(kinds, DestinationMonday)
	}
	return kinds
}

// Location resolves the user's timezone, falling back to UTC.
func (s *IntegrationSettings) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
