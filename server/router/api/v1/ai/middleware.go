package ai

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/hrygo/calassist/plugin/ai/session"
	"github.com/hrygo/calassist/server/internal/errors"
	"github.com/hrygo/calassist/server/middleware"
)

// ChatRequest represents a chat request.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// ChatResponse represents a chat reply.
type ChatResponse struct {
	Response string `json:"response"`
}

// Handler is the interface for handling chat requests.
type Handler interface {
	Handle(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}

// Middleware is a function that wraps a handler.
type Middleware func(Handler) Handler

// Chain chains multiple middlewares together. The first middleware runs first.
func Chain(h Handler, middlewares ...Middleware) Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// NewValidationMiddleware rejects empty messages and fills the default session.
func NewValidationMiddleware() Middleware {
	return func(next Handler) Handler {
		return &validationHandler{next: next}
	}
}

type validationHandler struct {
	next Handler
}

func (h *validationHandler) Handle(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, errors.InvalidArgument("message is required")
	}
	if req.SessionID == "" {
		req.SessionID = session.DefaultSessionID
	}
	return h.next.Handle(ctx, req)
}

// NewRateLimitMiddleware applies rate limiting per session.
func NewRateLimitMiddleware(limiter *middleware.RateLimiter) Middleware {
	return func(next Handler) Handler {
		return &rateLimitHandler{
			limiter: limiter,
			next:    next,
		}
	}
}

type rateLimitHandler struct {
	limiter *middleware.RateLimiter
	next    Handler
}

func (h *rateLimitHandler) Handle(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if !h.limiter.Allow(req.SessionID) {
		return nil, errors.RateLimitExceeded("rate limit exceeded").WithContext("session_id", req.SessionID)
	}
	return h.next.Handle(ctx, req)
}

// HTTPStatus maps an error to the HTTP status returned to the client.
func HTTPStatus(err error) int {
	switch errors.GetCodeFromError(err, errors.ErrCodeInternal) {
	case errors.ErrCodeInvalidArgument:
		return http.StatusBadRequest
	case errors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case errors.ErrCodeCalendarUnavailable, errors.ErrCodeLLMUnavailable:
		return http.StatusServiceUnavailable
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeContextCanceled:
		// nginx's "client closed request"
		return 499
	default:
		return http.StatusInternalServerError
	}
}

// ClientMessage returns the message safe to show a client for err.
func ClientMessage(err error) string {
	var aiErr *errors.AIError
	if stderrors.As(err, &aiErr) && aiErr.Code != errors.ErrCodeInternal {
		return aiErr.Message
	}
	return "internal error"
}
