package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"fitai-backend/internal/models"
	"fitai-backend/internal/services"
)

const liveMessage = "Gym AI Chat API is running!"

type chatRelay interface {
	Handle(ctx context.Context, message string, history []models.ChatTurn) (*services.ChatResult, error)
	Configured() bool
	Profile() services.ProviderProfile
	Models() []string
}

type ChatHandler struct {
	relay chatRelay
	log   *slog.Logger
}

func NewChatHandler(relay chatRelay, log *slog.Logger) *ChatHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ChatHandler{relay: relay, log: log}
}

// Status is the static liveness response of the chat route.
func (h *ChatHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.StatusResponse{Message: liveMessage})
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("Request body too large", r))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResp("Invalid request body", r))
		return
	}

	status, resp := h.Process(r.Context(), body, r.Header.Get("X-Request-ID"))
	writeJSON(w, status, resp)
}

// Process runs one raw chat request through the relay and returns the status
// and body to send. It never fails; every error becomes an error body.
func (h *ChatHandler) Process(ctx context.Context, body []byte, requestID string) (int, interface{}) {
	if !h.relay.Configured() {
		return h.chatError(&services.ConfigError{Profile: h.relay.Profile()}, requestID)
	}

	var req models.ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return h.chatError(&services.ValidationError{Message: "invalid request body: " + err.Error()}, requestID)
	}

	res, err := h.relay.Handle(ctx, req.Message, req.ChatHistory)
	if err != nil {
		return h.chatError(err, requestID)
	}
	return http.StatusOK, models.ChatResponse{Message: res.Message, Usage: res.Usage}
}

// chatError maps relay failures to a status and remediation body.
func (h *ChatHandler) chatError(err error, requestID string) (int, models.ErrorResponse) {
	p := h.relay.Profile()
	resp := models.ErrorResponse{RequestID: requestID}

	var cfgErr *services.ConfigError
	var valErr *services.ValidationError
	switch {
	case errors.As(err, &cfgErr):
		resp.Error = cfgErr.Error()
		resp.Message = "Please add your " + p.Credential + " to the .env.local file"
		resp.Instructions = p.Instructions()
		resp.Note = p.Note
		return http.StatusInternalServerError, resp
	case errors.As(err, &valErr):
		resp.Error = "Invalid request"
		resp.Details = valErr.Error()
		resp.Suggestion = "Verify your message format and try again"
		return http.StatusBadRequest, resp
	case errors.Is(err, services.ErrEmptyCompletion):
		resp.Error = "No response from AI"
		return http.StatusInternalServerError, resp
	case errors.Is(err, services.ErrNoProviderResponded):
		resp.Error = "No available " + p.Service + " responded"
		return http.StatusBadGateway, resp
	}

	resp.Details = errorDetails(err)
	resp.Service = p.Service
	resp.Model = services.FailedModel(err)
	if resp.Model == "" {
		if candidates := h.relay.Models(); len(candidates) > 0 {
			resp.Model = candidates[0]
		}
	}

	status := services.StatusCode(err)
	switch status {
	case http.StatusUnauthorized:
		resp.Error = "Invalid " + p.Credential
		resp.Suggestion = "Check your " + p.Credential + " at " + p.TokenURL
	case http.StatusForbidden:
		resp.Error = p.Credential + " does not have access to " + p.Service
		resp.Suggestion = "Ensure your " + p.Credential + " has the correct permissions for " + p.Service
	case http.StatusTooManyRequests:
		resp.Error = "Rate limit exceeded"
		resp.Suggestion = "Wait a moment and try again"
	case http.StatusBadRequest:
		resp.Error = "Bad request - check your input"
		resp.Suggestion = "Verify your message format and try again"
	case http.StatusNotFound:
		resp.Error = p.Service + " service or model not found"
		resp.Suggestion = p.Service + " may not be available in your region or account"
	default:
		status = http.StatusInternalServerError
		resp.Error = "Failed to process chat request"
		resp.Suggestion = "Please check your " + p.Credential + " configuration"
	}

	h.log.Error("chat request failed", "status", status, "model", resp.Model, "error", err, "request_id", requestID)
	return status, resp
}

func errorDetails(err error) string {
	var pe *services.ProviderError
	if errors.As(err, &pe) && pe.Message != "" {
		return pe.Message
	}
	return err.Error()
}
