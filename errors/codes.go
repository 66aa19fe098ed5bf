package errors

// ErrorCode identifies an application error category for API clients.
type ErrorCode int32

const (
	ErrorCode_HTTP_OK ErrorCode = 0

	// General
	ErrorCode_INTERNAL         ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT ErrorCode = 1001
	ErrorCode_NOT_FOUND        ErrorCode = 1002
	ErrorCode_ALREADY_EXISTS   ErrorCode = 1003
	ErrorCode_UNAUTHENTICATED  ErrorCode = 1004
	ErrorCode_FORBIDDEN        ErrorCode = 1005

	// Webhook ingestion
	ErrorCode_INVALID_PAYLOAD      ErrorCode = 2000
	ErrorCode_UNKNOWN_PROVIDER     ErrorCode = 2001
	ErrorCode_UNKNOWN_TENANT       ErrorCode = 2002
	ErrorCode_INVALID_SIGNATURE    ErrorCode = 2003
	ErrorCode_MISSING_MEETING_ID   ErrorCode = 2004
	ErrorCode_RECORD_NOT_FOUND     ErrorCode = 2005
	ErrorCode_BACKFILL_UNSUPPORTED ErrorCode = 2006

	// Enrichment pipeline
	ErrorCode_PROVIDER_FETCH_FAILED ErrorCode = 3000
	ErrorCode_EXTRACTION_FAILED     ErrorCode = 3001
	ErrorCode_DISPATCH_FAILED       ErrorCode = 3002

	// Infrastructure
	ErrorCode_DB_QUERY_FAILED    ErrorCode = 4000
	ErrorCode_STORAGE_UNAVAILABLE ErrorCode = 4001
	ErrorCode_CACHE_FAILED       ErrorCode = 4002
	ErrorCode_PROCESSING_FAILED  ErrorCode = 4003
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:               "OK",
	ErrorCode_INTERNAL:              "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:      "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:             "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:        "ALREADY_EXISTS",
	ErrorCode_UNAUTHENTICATED:       "UNAUTHENTICATED",
	ErrorCode_FORBIDDEN:             "FORBIDDEN",
	ErrorCode_INVALID_PAYLOAD:       "INVALID_PAYLOAD",
	ErrorCode_UNKNOWN_PROVIDER:      "UNKNOWN_PROVIDER",
	ErrorCode_UNKNOWN_TENANT:        "UNKNOWN_TENANT",
	ErrorCode_INVALID_SIGNATURE:     "INVALID_SIGNATURE",
	ErrorCode_MISSING_MEETING_ID:    "MISSING_MEETING_ID",
	ErrorCode_RECORD_NOT_FOUND:      "RECORD_NOT_FOUND",
	ErrorCode_BACKFILL_UNSUPPORTED:  "BACKFILL_UNSUPPORTED",
	ErrorCode_PROVIDER_FETCH_FAILED: "PROVIDER_FETCH_FAILED",
	ErrorCode_EXTRACTION_FAILED:     "EXTRACTION_FAILED",
	ErrorCode_DISPATCH_FAILED:       "DISPATCH_FAILED",
	ErrorCode_DB_QUERY_FAILED:       "DB_QUERY_FAILED",
	ErrorCode_STORAGE_UNAVAILABLE:   "STORAGE_UNAVAILABLE",
	ErrorCode_CACHE_FAILED:          "CACHE_FAILED",
	ErrorCode_PROCESSING_FAILED:     "PROCESSING_FAILED",
}

// String returns the symbolic name of the code.
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
