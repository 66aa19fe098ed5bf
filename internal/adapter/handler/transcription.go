package handler

import (
	stdErrors "errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lezatlabs/scheduling-backend/errors"
	"github.com/lezatlabs/scheduling-backend/internal/adapter/dto/transcription"
	"github.com/lezatlabs/scheduling-backend/internal/domain/entities"
	"github.com/lezatlabs/scheduling-backend/internal/usecase/enrichment"
)

// Transcription handles webhook intake and transcription record queries
type Transcription struct {
	service enrichment.Service
	logger  *zap.Logger
}

// NewTranscription creates a new transcription handler
func NewTranscription(service enrichment.Service, logger *zap.Logger) *Transcription {
	return &Transcription{service: service, logger: logger}
}

// Webhook receives a provider webhook delivery for a tenant.
// POST /v1/transcriptions/webhooks/:provider/:clientRef
func (h *Transcription) Webhook(c echo.Context) error {
	provider := entities.Provider(c.Param("provider"))
	clientRef := c.Param("clientRef")

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return h.handleError(c, errors.ErrInvalidPayload("unable to read request body"))
	}

	result, err := h.service.HandleWebhook(c.Request().Context(), enrichment.WebhookInput{
		Provider:          provider,
		ClientReferenceID: clientRef,
		Body:              body,
		Signature:         c.Request().Header.Get("x-hub-signature"),
		SharedSecret:      c.Request().Header.Get("x-webhook-secret"),
	})
	if err != nil {
		return h.handleError(c, err)
	}
	return h.handleSuccess(c, result)
}

// ListReceived returns the most recent transcription records.
// GET /v1/transcriptions/received?limit=50
func (h *Transcription) ListReceived(c echo.Context) error {
	var req transcription.ListReceivedRequest
	if err := c.Bind(&req); err != nil {
		return h.handleError(c, errors.ErrInvalidArgument("invalid query parameters"))
	}
	if err := c.Validate(&req); err != nil {
		return h.handleError(c, errors.ErrInvalidArgument(err.Error()))
	}

	records, err := h.service.ListReceived(c.Request().Context(), req.Limit)
	if err != nil {
		return h.handleError(c, err)
	}
	return h.handleSuccess(c, transcription.FromRecords(records))
}

// GetByID returns one transcription record with its transcript body.
// GET /v1/transcriptions/received/:id
func (h *Transcription) GetByID(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return h.handleError(c, errors.ErrInvalidArgument("id must be a UUID"))
	}

	record, err := h.service.GetRecord(c.Request().Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return h.handleSuccess(c, transcription.FromRecord(record, true))
}

// GetByMeetingID returns the latest record for a meeting.
// GET /v1/transcriptions/received/by-meeting/:meetingID
func (h *Transcription) GetByMeetingID(c echo.Context) error {
	meetingID := c.Param("meetingID")
	if meetingID == "" {
		return h.handleError(c, errors.ErrInvalidArgument("meetingID is required"))
	}

	record, err := h.service.GetLatestByMeetingID(c.Request().Context(), meetingID)
	if err != nil {
		return h.handleError(c, err)
	}
	return h.handleSuccess(c, transcription.FromRecord(record, true))
}

// Backfill re-fetches and repairs the records for a meeting.
// POST /v1/transcriptions/backfill/:meetingID
func (h *Transcription) Backfill(c echo.Context) error {
	meetingID := c.Param("meetingID")
	if meetingID == "" {
		return h.handleError(c, errors.ErrInvalidArgument("meetingID is required"))
	}

	result, err := h.service.BackfillMeeting(c.Request().Context(), meetingID)
	if err != nil {
		return h.handleError(c, err)
	}
	return h.handleSuccess(c, result)
}

// handleSuccess writes a standardized success response
func (h *Transcription) handleSuccess(c echo.Context, data interface{}) error {
	resp := success{
		Code:    int(errors.ErrorCode_HTTP_OK),
		Message: "success",
		Data:    data,
	}

	if h != nil && h.logger != nil {
		h.logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
		)
	}

	return c.JSON(http.StatusOK, resp)
}

// handleError centralizes error handling and logging
func (h *Transcription) handleError(c echo.Context, err error) error {
	reqID := getRequestID(c)

	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		if h != nil && h.logger != nil {
			h.logger.Error("http.response.error",
				zap.String("request_id", reqID),
				zap.String("path", c.Path()),
				zap.Any("app_code", appErr.Code),
				zap.Error(err),
			)
		}

		info := ""
		if appErr.Raw != nil {
			info = appErr.Raw.Error()
		}

		body := errs{
			Code:    appErr.Code,
			Message: appErr.Message,
			Info:    info,
		}
		return c.JSON(appErr.HTTPCode, body)
	}

	if h != nil && h.logger != nil {
		h.logger.Error("http.response.error",
			zap.String("request_id", reqID),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	body := errs{
		Code:    int(errors.ErrorCode_INTERNAL),
		Message: "internal server error",
		Info:    err.Error(),
	}
	return c.JSON(http.StatusInternalServerError, body)
}
