package entities

import (
	"time"

	"github.com/google/uuid"
)

// DestinationKind identifies a configured output destination.
type DestinationKind string

const (
	DestinationNotion         DestinationKind = "notion"
	DestinationMonday         DestinationKind = "monday"
	DestinationGoogleCalendar DestinationKind = "google_calendar"
)

// CalendarSyncStatus tracks the calendar leg of a dispatched task,
// independent of its Kanban leg.
type CalendarSyncStatus string

const (
	CalendarNotApplicable CalendarSyncStatus = "not_applicable"
	CalendarPending       CalendarSyncStatus = "pending"
	CalendarSynced        CalendarSyncStatus = "synced"
	CalendarFailed        CalendarSyncStatus = "failed"
)

// ActionItem is one task extracted from a transcript. DueDate is a
// calendar date, not an instant; the user's timezone applies when an
// event is created for it.
type ActionItem struct {
	Title          string     `json:"title"`
	AssigneeEmail  string     `json:"assignee_email,omitempty"`
	AssigneeName   string     `json:"assignee_name,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	Details        string     `json:"details,omitempty"`
	SourceSentence string     `json:"source_sentence,omitempty"`
}

// HasDueDate reports whether the item qualifies for calendar sync.
func (a ActionItem) HasDueDate() bool {
	return a.DueDate != nil
}

// DispatchOutcome records the result of one destination call for one
// task. Fan-out is best-effort per destination, so a record carries a
// list of these rather than a single success flag.
type DispatchOutcome struct {
	Destination DestinationKind `json:"destination"`
	TaskTitle   string          `json:"task_title"`
	Status      string          `json:"status"` // created | failed | skipped_missing_configuration
	Ref         string          `json:"ref,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// ActionItemCreation is persisted once per task successfully created in
// a Kanban destination, before any calendar step for that task.
type ActionItemCreation struct {
	ID                 uuid.UUID          `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MeetingID          string             `json:"meeting_id" gorm:"type:varchar(255);not null;index:idx_creations_meeting,priority:1"`
	Provider           Provider           `json:"provider" gorm:"type:varchar(32);not null"`
	ClientReferenceID  string             `json:"client_reference_id" gorm:"type:varchar(255)"`
	RecordID           uuid.UUID          `json:"record_id" gorm:"type:uuid;index"`
	Source             string             `json:"source" gorm:"type:varchar(16);not null"` // webhook | backfill
	Title              string             `json:"title" gorm:"type:text;not null"`
	AssigneeEmail      string             `json:"assignee_email,omitempty" gorm:"type:varchar(255)"`
	DueDate            *time.Time         `json:"due_date,omitempty"`
	DestinationKind    DestinationKind    `json:"destination_kind" gorm:"type:varchar(32);not null"`
	DestinationRef     string             `json:"destination_ref" gorm:"type:varchar(255);not null"`
	CalendarSyncStatus CalendarSyncStatus `json:"calendar_sync_status" gorm:"type:varchar(32);not null"`
	CalendarEventRef   string             `json:"calendar_event_ref,omitempty" gorm:"type:varchar(255)"`
	CalendarError      string             `json:"calendar_error,omitempty" gorm:"type:text"`
	CreatedAt          time.Time          `json:"created_at" gorm:"autoCreateTime;index:idx_creations_meeting,priority:2,sort:desc"`
	UpdatedAt          time.Time          `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (ActionItemCreation) TableName() string {
	return "action_item_creations"
}
