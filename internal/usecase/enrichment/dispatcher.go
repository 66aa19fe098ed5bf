package enrichment

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lezatlabs/scheduling-backend/internal/domain/entities"
)

// OutcomeCreated and friends are the per-destination result states a
// dispatch can record for one task.
const (
	OutcomeCreated       = "created"
	OutcomeFailed        = "failed"
	OutcomeSkipped       = "skipped_duplicate"
	OutcomeSkippedConfig = "skipped_missing_configuration"
)

// dispatchRequest carries everything one fan-out run needs.
type dispatchRequest struct {
	MeetingID         string
	Provider          entities.Provider
	ClientReferenceID string
	RecordID          uuid.UUID
	Source            string // webhook | backfill
	Settings          *entities.IntegrationSettings
	Items             []entities.ActionItem

	// AlreadyDispatched holds (destination, title) pairs that were
	// created by an earlier run and must not be created again. Only
	// backfill populates it.
	AlreadyDispatched map[dispatchKey]struct{}
}

type dispatchKey struct {
	Destination entities.DestinationKind
	Title       string
}

type dispatchResult struct {
	Outcomes  []entities.DispatchOutcome
	Creations []entities.ActionItemCreation

	// KanbanAttempted and KanbanCreated drive the final record status:
	// every attempt failing means failed_partial.
	KanbanAttempted int
	KanbanCreated   int
}

// Dispatcher fans extracted tasks out to the tenant's configured
// destinations. Each destination call is isolated: one failing tool
// never blocks another, and a calendar failure never undoes the Kanban
// creation it followed.
type Dispatcher struct {
	factory DestinationFactory
	logger  *zap.Logger
}

func NewDispatcher(factory DestinationFactory, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{factory: factory, logger: logger}
}

// Dispatch creates every task in every configured Kanban destination,
// then runs the calendar leg for tasks that carry a due date. A creation
// row is produced only for tasks that were actually created in a Kanban
// tool.
func (d *Dispatcher) Dispatch(ctx context.Context, req dispatchRequest) dispatchResult {
	var result dispatchResult
	kanbans := d.factory.KanbanDestinations(req.Settings)
	calendar := d.factory.Calendar(req.Settings)

	for _, destination := range kanbans {
		for _, item := range req.Items {
			key := dispatchKey{Destination: destination.Kind(), Title: item.Title}
			if _, done := req.AlreadyDispatched[key]; done {
				result.Outcomes = append(result.Outcomes, entities.DispatchOutcome{
					Destination: destination.Kind(),
					TaskTitle:   item.Title,
					Status:      OutcomeSkipped,
				})
				continue
			}

			result.KanbanAttempted++
			ref, err := destination.CreateTask(ctx, req.MeetingID, item)
			if err != nil {
				d.logger.Warn("kanban task creation failed",
					zap.String("meeting_id", req.MeetingID),
					zap.String("destination", string(destination.Kind())),
					zap.String("title", item.Title),
					zap.Error(err))
				result.Outcomes = append(result.Outcomes, entities.DispatchOutcome{
					Destination: destination.Kind(),
					TaskTitle:   item.Title,
					Status:      OutcomeFailed,
					Error:       err.Error(),
				})
				continue
			}

			result.KanbanCreated++
			result.Outcomes = append(result.Outcomes, entities.DispatchOutcome{
				Destination: destination.Kind(),
				TaskTitle:   item.Title,
				Status:      OutcomeCreated,
				Ref:         ref,
			})
			result.Creations = append(result.Creations, entities.ActionItemCreation{
				ID:                 uuid.New(),
				MeetingID:          req.MeetingID,
				Provider:           req.Provider,
				ClientReferenceID:  req.ClientReferenceID,
				RecordID:           req.RecordID,
				Source:             req.Source,
				Title:              item.Title,
				AssigneeEmail:      item.AssigneeEmail,
				DueDate:            item.DueDate,
				DestinationKind:    destination.Kind(),
				DestinationRef:     ref,
				CalendarSyncStatus: calendarInitialStatus(calendar, item),
			})
		}
	}

	if calendar != nil {
		d.syncCalendar(ctx, req, calendar, &result)
	}
	return result
}

func calendarInitialStatus(calendar CalendarDestination, item entities.ActionItem) entities.CalendarSyncStatus {
	if calendar == nil || !item.HasDueDate() {
		return entities.CalendarNotApplicable
	}
	return entities.CalendarPending
}

// calendarRepair is the outcome of retrying the calendar leg for one
// existing creation row.
type calendarRepair struct {
	RowID    uuid.UUID
	Status   entities.CalendarSyncStatus
	EventRef string
	Error    string
}

// RetryCalendarSync retries the calendar leg for creation rows whose
// earlier sync failed. As in the first pass, one event is created per
// title and rows sharing a title share its result.
func (d *Dispatcher) RetryCalendarSync(ctx context.Context, meetingID string, settings *entities.IntegrationSettings, rows []entities.ActionItemCreation) []calendarRepair {
	calendar := d.factory.Calendar(settings)
	if calendar == nil {
		return nil
	}

	type outcome struct {
		eventRef string
		err      error
	}
	synced := map[string]outcome{}
	var repairs []calendarRepair

	for _, row := range rows {
		if row.CalendarSyncStatus != entities.CalendarFailed || row.DueDate == nil {
			continue
		}
		res, done := synced[row.Title]
		if !done {
			ref, err := calendar.CreateDueDateEvent(ctx, meetingID, entities.ActionItem{
				Title:         row.Title,
				AssigneeEmail: row.AssigneeEmail,
				DueDate:       row.DueDate,
			})
			res = outcome{eventRef: ref, err: err}
			synced[row.Title] = res
			if err != nil {
				d.logger.Warn("calendar event retry failed",
					zap.String("meeting_id", meetingID),
					zap.String("title", row.Title),
					zap.Error(err))
			}
		}
		repair := calendarRepair{RowID: row.ID, Status: entities.CalendarSynced, EventRef: res.eventRef}
		if res.err != nil {
			repair = calendarRepair{RowID: row.ID, Status: entities.CalendarFailed, Error: res.err.Error()}
		}
		repairs = append(repairs, repair)
	}
	return repairs
}

// syncCalendar creates a due-date event once per pending creation row
// and records the outcome on that row. Tasks created in two Kanban tools
// produce two rows, but only the first pending row gets an event; the
// rest reuse its result.
func (d *Dispatcher) syncCalendar(ctx context.Context, req dispatchRequest, calendar CalendarDestination, result *dispatchResult) {
	type calendarOutcome struct {
		eventRef string
		err      error
	}
	synced := map[string]calendarOutcome{}

	itemsByTitle := map[string]entities.ActionItem{}
	for _, item := range req.Items {
		itemsByTitle[item.Title] = item
	}

	for i := range result.Creations {
		creation := &result.Creations[i]
		if creation.CalendarSyncStatus != entities.CalendarPending {
			continue
		}
		item, ok := itemsByTitle[creation.Title]
		if !ok {
			continue
		}

		outcome, done := synced[creation.Title]
		if !done {
			ref, err := calendar.CreateDueDateEvent(ctx, req.MeetingID, item)
			outcome = calendarOutcome{eventRef: ref, err: err}
			synced[creation.Title] = outcome

			status := OutcomeCreated
			var errText string
			if err != nil {
				status = OutcomeFailed
				errText = err.Error()
				d.logger.Warn("calendar event creation failed",
					zap.String("meeting_id", req.MeetingID),
					zap.String("title", item.Title),
					zap.Error(err))
			}
			result.Outcomes = append(result.Outcomes, entities.DispatchOutcome{
				Destination: entities.DestinationGoogleCalendar,
				TaskTitle:   item.Title,
				Status:      status,
				Ref:         outcome.eventRef,
				Error:       errText,
			})
		}

		if outcome.err != nil {
			creation.CalendarSyncStatus = entities.CalendarFailed
			creation.CalendarError = outcome.err.Error()
		} else {
			creation.CalendarSyncStatus = entities.CalendarSynced
			creation.CalendarEventRef = outcome.eventRef
		}
	}
}
