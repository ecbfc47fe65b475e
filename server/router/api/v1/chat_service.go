package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/calassist/server/internal/observability"
	apiai "github.com/hrygo/calassist/server/router/api/v1/ai"
)

// Chat answers one chat message.
// POST /chat/ {"message": "...", "session_id": "..."}
func (s *APIV1Service) Chat(c echo.Context) error {
	req := &apiai.ChatRequest{}
	if err := c.Bind(req); err != nil {
		slog.Warn("invalid chat request", "error", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
	if requestID := c.Response().Header().Get(echo.HeaderXRequestID); requestID != "" {
		ctx = observability.WithRequestContext(ctx, observability.NewRequestContextWithID(nil, requestID, req.SessionID))
	}

	resp, err := s.chatHandler.Handle(ctx, req)
	if err != nil {
		status := apiai.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			slog.Error("chat request failed", "session_id", req.SessionID, "error", err)
		}
		return c.JSON(status, map[string]string{"error": apiai.ClientMessage(err)})
	}
	return c.JSON(http.StatusOK, resp)
}

// Health reports liveness.
// GET /healthz
func (s *APIV1Service) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.Profile.Version,
	})
}
