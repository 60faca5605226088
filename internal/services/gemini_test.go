package services

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"fitai-backend/internal/models"
)

func TestSplitForGemini(t *testing.T) {
	msgs := BuildMessages("And legs?", []models.ChatTurn{
		{Role: models.RoleUser, Content: "Plan my chest day"},
		{Role: models.RoleAssistant, Content: "Bench press 3x8"},
	})

	system, history, last := splitForGemini(msgs)
	assert.Equal(t, SystemPrompt, system)
	assert.Equal(t, "And legs?", last)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, []genai.Part{genai.Text("Plan my chest day")}, history[0].Parts)
	assert.Equal(t, "model", history[1].Role)
	assert.Equal(t, []genai.Part{genai.Text("Bench press 3x8")}, history[1].Parts)
}

func TestSplitForGemini_EmptyHistory(t *testing.T) {
	system, history, last := splitForGemini(BuildMessages("hi", nil))
	assert.Equal(t, SystemPrompt, system)
	assert.Empty(t, history)
	assert.Equal(t, "hi", last)
}

func TestExtractText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("Hello "), genai.Text("athlete")}}},
			{Content: nil},
		},
	}
	assert.Equal(t, "Hello athlete", extractText(resp))
	assert.Empty(t, extractText(nil))
}

func TestGeminiUsage(t *testing.T) {
	raw := geminiUsage(&genai.UsageMetadata{
		PromptTokenCount:     10,
		CandidatesTokenCount: 7,
		TotalTokenCount:      17,
	})
	assert.JSONEq(t, `{"prompt_tokens":10,"completion_tokens":7,"total_tokens":17}`, string(raw))
	assert.Nil(t, geminiUsage(nil))
}

func TestGeminiStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "googleapi", err: &googleapi.Error{Code: http.StatusForbidden}, want: http.StatusForbidden},
		{name: "wrapped googleapi", err: fmt.Errorf("send: %w", &googleapi.Error{Code: http.StatusNotFound}), want: http.StatusNotFound},
		{name: "grpc not found", err: status.Error(codes.NotFound, "model missing"), want: http.StatusNotFound},
		{name: "grpc unauthenticated", err: status.Error(codes.Unauthenticated, "bad key"), want: http.StatusUnauthorized},
		{name: "grpc permission", err: status.Error(codes.PermissionDenied, "denied"), want: http.StatusForbidden},
		{name: "grpc quota", err: status.Error(codes.ResourceExhausted, "quota"), want: http.StatusTooManyRequests},
		{name: "grpc invalid", err: status.Error(codes.InvalidArgument, "bad"), want: http.StatusBadRequest},
		{name: "grpc internal", err: status.Error(codes.Internal, "oops"), want: 0},
		{name: "plain", err: errors.New("dial tcp: refused"), want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, geminiStatus(tt.err))
		})
	}
}
