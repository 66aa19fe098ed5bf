package transcription

// ListReceivedRequest represents query parameters for listing received
// transcription records
type ListReceivedRequest struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=200"`
}
