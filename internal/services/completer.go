package services

import (
	"context"
	"encoding/json"

	"fitai-backend/internal/models"
)

// CompletionRequest is one call to a provider for a single model.
type CompletionRequest struct {
	Model       string
	Messages    []models.ChatTurn
	Temperature float64
	MaxTokens   int
	TopP        float64
}

// Completion is the provider's answer. Usage is the provider's own usage
// object, if any.
type Completion struct {
	Content string
	Usage   json.RawMessage
}

// Completer sends a message list to a chat-completion provider.
// Failures carrying an upstream status are returned as *ProviderError.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
	Name() string
}
