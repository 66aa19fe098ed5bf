package enrichment

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/lezatlabs/scheduling-backend/errors"
	"github.com/lezatlabs/scheduling-backend/internal/domain/entities"
)

func seedFailedRecord(t *testing.T, fx *pipelineFixture) {
	t.Helper()
	fx.fetcher.err = errors.New("fireflies returned status 502")
	result, err := fx.svc.HandleWebhook(context.Background(), completionWebhook())
	if err != nil {
		t.Fatal(err)
	}
	if result.EnrichmentStatus != entities.StatusFailed {
		t.Fatalf("fixture expected failed record, got %q", result.EnrichmentStatus)
	}
	fx.fetcher.err = nil
}

func TestBackfillMeeting_RepairsFailedRecord(t *testing.T) {
	fx := newPipelineFixture(tenantSettings())
	seedFailedRecord(t, fx)
	fx.extractor.items = []entities.ActionItem{{Title: "Send the report", DueDate: dueDate(t, "2024-01-10")}}

	result, err := fx.svc.BackfillMeeting(context.Background(), "m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.UpdatedCount != 1 {
		t.Errorf("expected 1 record updated, got %d", result.UpdatedCount)
	}
	if result.EnrichmentStatus != entities.StatusDispatched {
		t.Errorf("expected dispatched, got %q", result.EnrichmentStatus)
	}
	if result.TasksCreated != 1 {
		t.Errorf("expected 1 task created, got %d", result.TasksCreated)
	}

	record, _ := fx.records.GetLatestByMeetingID(context.Background(), "m1")
	if !record.TranscriptTextAvailable() {
		t.Error("expected transcript repaired in place")
	}
	if record.EnrichmentError != "" {
		t.Errorf("expected enrichment error cleared, got %q", record.EnrichmentError)
	}
	if len(fx.creations.rows) != 1 || fx.creations.rows[0].Source != "backfill" {
		t.Errorf("expected one backfill creation row, got %+v", fx.creations.rows)
	}
}

func TestBackfillMeeting_SkipsAlreadyDispatchedTasks(t *testing.T) {
	fx := newPipelineFixture(tenantSettings())
	fx.extractor.items = []entities.ActionItem{{Title: "Send the report"}}

	// First delivery creates the task, backfill must not create it again.
	if _, err := fx.svc.HandleWebhook(context.Background(), completionWebhook()); err != nil {
		t.Fatal(err)
	}
	if len(fx.creations.rows) != 1 {
		t.Fatalf("fixture expected 1 creation row, got %d", len(fx.creations.rows))
	}

	result, err := fx.svc.BackfillMeeting(context.Background(), "m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TasksCreated != 0 {
		t.Errorf("expected no new tasks, got %d", result.TasksCreated)
	}
	if result.TasksSkipped != 1 {
		t.Errorf("expected 1 skipped task, got %d", result.TasksSkipped)
	}
	if len(fx.creations.rows) != 1 {
		t.Errorf("expected creation rows unchanged, got %d", len(fx.creations.rows))
	}
	if fx.notion.calls != 1 {
		t.Errorf("expected no second kanban call, got %d", fx.notion.calls)
	}
}

func TestBackfillMeeting_RetriesFailedCalendarSync(t *testing.T) {
	fx := newPipelineFixture(tenantSettings())
	fx.extractor.items = []entities.ActionItem{{Title: "Send the report", DueDate: dueDate(t, "2024-01-10")}}
	fx.calendar.err = errors.New("google calendar returned status 500")

	if _, err := fx.svc.HandleWebhook(context.Background(), completionWebhook()); err != nil {
		t.Fatal(err)
	}
	if len(fx.creations.rows) != 1 || fx.creations.rows[0].CalendarSyncStatus != entities.CalendarFailed {
		t.Fatalf("fixture expected one row with failed calendar leg, got %+v", fx.creations.rows)
	}

	fx.calendar.err = nil
	result, err := fx.svc.BackfillMeeting(context.Background(), "m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TasksCreated != 0 || result.TasksSkipped != 1 {
		t.Errorf("expected kanban leg untouched, got created=%d skipped=%d", result.TasksCreated, result.TasksSkipped)
	}

	row := fx.creations.rows[0]
	if row.CalendarSyncStatus != entities.CalendarSynced {
		t.Errorf("expected calendar leg repaired, got %q", row.CalendarSyncStatus)
	}
	if row.CalendarEventRef == "" {
		t.Error("expected event ref recorded on the repaired row")
	}
	if row.CalendarError != "" {
		t.Errorf("expected calendar error cleared, got %q", row.CalendarError)
	}
}

func TestBackfillMeeting_ExtractionFailurePersistsError(t *testing.T) {
	fx := newPipelineFixture(tenantSettings())
	seedFailedRecord(t, fx)
	fx.extractor.err = errors.New("gemini returned status 500")

	result, err := fx.svc.BackfillMeeting(context.Background(), "m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.EnrichmentStatus != entities.StatusFailedPartial {
		t.Errorf("expected failed_partial, got %q", result.EnrichmentStatus)
	}

	record, _ := fx.records.GetLatestByMeetingID(context.Background(), "m1")
	if !record.TranscriptTextAvailable() {
		t.Error("expected transcript repaired despite extraction failure")
	}
	if record.EnrichmentError == "" {
		t.Error("expected extraction error recorded on the repaired record")
	}
}

func TestBackfillMeeting_UnknownMeeting(t *testing.T) {
	fx := newPipelineFixture(tenantSettings())
	_, err := fx.svc.BackfillMeeting(context.Background(), "missing")

	var appErr apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_RECORD_NOT_FOUND {
		t.Fatalf("expected RECORD_NOT_FOUND, got %v", err)
	}
}

func TestBackfillMeeting_RejectsNonFirefliesRecords(t *testing.T) {
	fx := newPipelineFixture(tenantSettings())
	in := WebhookInput{
		Provider:          entities.ProviderReadAI,
		ClientReferenceID: "u1",
		Body:              []byte(`{"trigger": "meeting_end", "session_id": "m1", "transcript": {"text": "hello"}}`),
	}
	if _, err := fx.svc.HandleWebhook(context.Background(), in); err != nil {
		t.Fatal(err)
	}

	_, err := fx.svc.BackfillMeeting(context.Background(), "m1")
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_BACKFILL_UNSUPPORTED {
		t.Fatalf("expected BACKFILL_UNSUPPORTED, got %v", err)
	}
}

func TestBackfillMeeting_LockContention(t *testing.T) {
	fx := newPipelineFixture(tenantSettings())
	seedFailedRecord(t, fx)

	if ok, _ := fx.lock.Acquire(context.Background(), "m1", backfillLockTTL); !ok {
		t.Fatal("fixture could not pre-acquire lock")
	}

	_, err := fx.svc.BackfillMeeting(context.Background(), "m1")
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_ALREADY_EXISTS {
		t.Fatalf("expected conflict while lock is held, got %v", err)
	}
}

func TestBackfillMeeting_ReleasesLock(t *testing.T) {
	fx := newPipelineFixture(tenantSettings())
	seedFailedRecord(t, fx)

	if _, err := fx.svc.BackfillMeeting(context.Background(), "m1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := fx.svc.BackfillMeeting(context.Background(), "m1"); err != nil {
		t.Errorf("expected lock released after run, got %v", err)
	}
}

func TestBackfillMeeting_FetchFailure(t *testing.T) {
	fx := newPipelineFixture(tenantSettings())
	seedFailedRecord(t, fx)
	fx.fetcher.err = errors.New("fireflies returned status 502")

	_, err := fx.svc.BackfillMeeting(context.Background(), "m1")
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_PROVIDER_FETCH_FAILED {
		t.Fatalf("expected PROVIDER_FETCH_FAILED, got %v", err)
	}
}
