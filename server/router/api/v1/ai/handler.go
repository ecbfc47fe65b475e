// Package ai adapts the assistant to the HTTP chat endpoint.
package ai

import (
	"context"

	"github.com/hrygo/calassist/server/service/assistant"
)

// AssistantHandler answers chat requests with the message router.
type AssistantHandler struct {
	assistant assistant.Handler
}

// NewAssistantHandler creates a new assistant handler.
func NewAssistantHandler(a assistant.Handler) *AssistantHandler {
	return &AssistantHandler{assistant: a}
}

// Handle implements Handler.
func (h *AssistantHandler) Handle(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	reply, err := h.assistant.Handle(ctx, req.SessionID, req.Message)
	if err != nil {
		return nil, err
	}
	return &ChatResponse{Response: reply}, nil
}

// Ensure AssistantHandler implements Handler
var _ Handler = (*AssistantHandler)(nil)
