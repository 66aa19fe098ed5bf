package enrichment

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lezatlabs/scheduling-backend/internal/domain/entities"
)

// Providers disagree on payload shape, sometimes between versions of the
// same provider. Field extraction therefore walks an ordered list of
// dotted paths and takes the first value that yields text.

func extractPath(payload map[string]interface{}, path string) interface{} {
	var value interface{} = payload
	for _, segment := range strings.Split(path, ".") {
		m, ok := value.(map[string]interface{})
		if !ok {
			return nil
		}
		value, ok = m[segment]
		if !ok {
			return nil
		}
	}
	return value
}

func firstString(payload map[string]interface{}, paths ...string) string {
	for _, path := range paths {
		if text := asText(extractPath(payload, path)); text != "" {
			return text
		}
	}
	return ""
}

// asText coerces a payload value to usable text: strings are trimmed,
// lists are joined line by line, and objects are probed for the usual
// text-bearing keys.
func asText(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []interface{}:
		var parts []string
		for _, item := range v {
			if text := asText(item); text != "" {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, "\n")
	case map[string]interface{}:
		for _, key := range []string{"text", "content", "transcript", "value"} {
			if text := asText(v[key]); text != "" {
				return text
			}
		}
		return ""
	case bool:
		return ""
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

var transcriptTextPaths = []string{
	"transcript.text",
	"transcript.content",
	"transcript.full_text",
	"transcript",
	"summary.transcript",
	"summary.text",
	"data.transcript",
	"meeting.transcript",
	"sentences",
	"paragraphs",
}

func extractTranscriptText(payload map[string]interface{}) string {
	for _, path := range transcriptTextPaths {
		if text := asText(extractPath(payload, path)); text != "" {
			return text
		}
	}
	return ""
}

var participantEmailPaths = []string{
	"participant_emails",
	"participants",
	"attendees",
	"meeting.participants",
	"meeting.attendees",
	"meeting_attendees",
}

// extractParticipantEmails collects lowercased emails from every list
// field a payload may carry; list entries may be plain strings or
// objects with an "email" key.
func extractParticipantEmails(payload map[string]interface{}) []string {
	seen := map[string]struct{}{}
	add := func(raw interface{}) {
		text, ok := raw.(string)
		if !ok {
			return
		}
		email := strings.ToLower(strings.TrimSpace(text))
		if email == "" || !strings.Contains(email, "@") {
			return
		}
		seen[email] = struct{}{}
	}

	for _, path := range participantEmailPaths {
		values, ok := extractPath(payload, path).([]interface{})
		if !ok {
			continue
		}
		for _, value := range values {
			if obj, ok := value.(map[string]interface{}); ok {
				add(obj["email"])
				continue
			}
			add(value)
		}
	}

	if len(seen) == 0 {
		return nil
	}
	emails := make([]string, 0, len(seen))
	for email := range seen {
		emails = append(emails, email)
	}
	sort.Strings(emails)
	return emails
}

// inferPlatform derives the conferencing platform when the payload does
// not name one explicitly.
func inferPlatform(platform, meetingURL string) entities.MeetingPlatform {
	for _, candidate := range []string{platform, meetingURL} {
		if candidate == "" {
			continue
		}
		lowered := strings.ToLower(candidate)
		if strings.Contains(lowered, "meet.google.com") ||
			(strings.Contains(lowered, "google") && strings.Contains(lowered, "meet")) {
			return entities.PlatformGoogleMeet
		}
	}
	if platform != "" {
		return entities.PlatformOther
	}
	return entities.PlatformUnknown
}
