package entities

// MeetingTranscript is the typed result of a transcript fetch from a
// recording provider, already reduced to the fields the pipeline uses.
type MeetingTranscript struct {
	TranscriptID      string               `json:"transcript_id"`
	Title             string               `json:"title,omitempty"`
	MeetingLink       string               `json:"meeting_link,omitempty"`
	Text              string               `json:"text"`
	Sentences         []TranscriptSentence `json:"sentences"`
	ParticipantEmails []string             `json:"participant_emails"`
}
