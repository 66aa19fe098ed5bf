package enrichment

import (
	"encoding/json"
	"time"

	apperrors "github.com/lezatlabs/scheduling-backend/errors"
	"github.com/lezatlabs/scheduling-backend/internal/domain/entities"
)

var meetingIDPaths = []string{
	"meeting.id",
	"meeting.meeting_id",
	"meeting.external_id",
	"meetingId",
	"meeting_id",
	"session_id",
	"transcript.meeting_id",
	"transcriptId",
	"transcript_id",
	"id",
}

var meetingURLPaths = []string{
	"meeting.url",
	"meeting.join_url",
	"meeting.link",
	"meeting_url",
	"join_url",
	"url",
}

var platformPaths = []string{
	"meeting.platform",
	"meeting.meeting_platform",
	"meeting.source",
	"platform",
	"source",
}

var eventTypePaths = []string{
	"event",
	"event_type",
	"eventType",
	"type",
	"trigger",
}

// NormalizeEvent converts a raw webhook body into the canonical event
// form. The payload must be a JSON object and must yield a meeting id;
// everything else is optional and defaults to empty.
func NormalizeEvent(provider entities.Provider, clientReferenceID string, raw []byte) (*entities.MeetingEvent, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, apperrors.ErrInvalidPayload("request body is not a JSON object")
	}

	meetingID := firstString(payload, meetingIDPaths...)
	if meetingID == "" {
		return nil, apperrors.ErrMissingMeetingID()
	}

	meetingURL := firstString(payload, meetingURLPaths...)
	platform := firstString(payload, platformPaths...)

	return &entities.MeetingEvent{
		Provider:          provider,
		MeetingID:         meetingID,
		Platform:          inferPlatform(platform, meetingURL),
		MeetingURL:        meetingURL,
		EventType:         firstString(payload, eventTypePaths...),
		RawPayload:        raw,
		ClientReferenceID: clientReferenceID,
		TranscriptText:    extractTranscriptText(payload),
		ParticipantEmails: extractParticipantEmails(payload),
		ReceivedAt:        time.Now().UTC(),
	}, nil
}
