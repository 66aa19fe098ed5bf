package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lezatlabs/scheduling-backend/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg                  *config.Config
	transcriptionHandler *Transcription
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, transcriptionHandler *Transcription) *Router {
	return &Router{
		cfg:                  cfg,
		transcriptionHandler: transcriptionHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)

	v1 := e.Group("/v1")
	rt.setupTranscriptionRoutes(v1)
}

// setupTranscriptionRoutes configures webhook intake and record queries
func (rt *Router) setupTranscriptionRoutes(g *echo.Group) {
	group := g.Group("/transcriptions")

	if rt.transcriptionHandler == nil {
		group.POST("/webhooks/:provider/:clientRef", rt.notImplemented)
		group.GET("/received", rt.notImplemented)
		group.GET("/received/by-meeting/:meetingID", rt.notImplemented)
		group.GET("/received/:id", rt.notImplemented)
		group.POST("/backfill/:meetingID", rt.notImplemented)
		return
	}

	group.POST("/webhooks/:provider/:clientRef", rt.transcriptionHandler.Webhook)
	group.GET("/received", rt.transcriptionHandler.ListReceived)
	// by-meeting must be registered before :id so it is not captured as an id
	group.GET("/received/by-meeting/:meetingID", rt.transcriptionHandler.GetByMeetingID)
	group.GET("/received/:id", rt.transcriptionHandler.GetByID)
	group.POST("/backfill/:meetingID", rt.transcriptionHandler.Backfill)
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":  "This endpoint is not yet implemented",
		"path":   c.Request().URL.Path,
		"method": c.Request().Method,
	})
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
