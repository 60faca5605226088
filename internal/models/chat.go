package models

import "encoding/json"

// Role is the speaker of a chat turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// ChatTurn represents a single message in a conversation.
type ChatTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the chat endpoint. History is owned by
// the caller and replayed on every request.
type ChatRequest struct {
	Message     string     `json:"message"`
	ChatHistory []ChatTurn `json:"chatHistory"`
}

// ChatResponse is the reply from the AI chat. Usage is passed through from
// the provider untouched.
type ChatResponse struct {
	Message string          `json:"message"`
	Usage   json.RawMessage `json:"usage,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error        string   `json:"error"`
	Message      string   `json:"message,omitempty"`
	Details      string   `json:"details,omitempty"`
	Suggestion   string   `json:"suggestion,omitempty"`
	Service      string   `json:"service,omitempty"`
	Model        string   `json:"model,omitempty"`
	Instructions []string `json:"instructions,omitempty"`
	Note         string   `json:"note,omitempty"`
	RequestID    string   `json:"request_id,omitempty"`
}

// StatusResponse is the body of the liveness endpoints.
type StatusResponse struct {
	Message string `json:"message,omitempty"`
	Status  string `json:"status,omitempty"`
}
