package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"fitai-backend/internal/models"
)

var _ Completer = (*Gemini)(nil)

// Gemini talks to Google Generative AI directly.
type Gemini struct {
	client *genai.Client
}

func NewGemini(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Gemini, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini{client: client}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Close() error {
	return g.client.Close()
}

func (g *Gemini) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	system, history, last := splitForGemini(req.Messages)

	model := g.client.GenerativeModel(req.Model)
	model.SetTemperature(float32(req.Temperature))
	model.SetTopP(float32(req.TopP))
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	cs := model.StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, genai.Text(last))
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return &Completion{}, nil
		}
		if code := geminiStatus(err); code != 0 {
			return nil, &ProviderError{StatusCode: code, Model: req.Model, Message: err.Error()}
		}
		return nil, fmt.Errorf("gemini: %w", err)
	}

	return &Completion{
		Content: extractText(resp),
		Usage:   geminiUsage(resp.UsageMetadata),
	}, nil
}

// splitForGemini separates system turns, prior turns and the final user turn.
// Gemini calls the assistant role "model".
func splitForGemini(msgs []models.ChatTurn) (system string, history []*genai.Content, last string) {
	var sys []string
	rest := make([]models.ChatTurn, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == models.RoleSystem {
			sys = append(sys, m.Content)
			continue
		}
		rest = append(rest, m)
	}
	if n := len(rest); n > 0 && rest[n-1].Role == models.RoleUser {
		last = rest[n-1].Content
		rest = rest[:n-1]
	}
	for _, m := range rest {
		role := "user"
		if m.Role == models.RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	return strings.Join(sys, "\n\n"), history, last
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

func geminiUsage(u *genai.UsageMetadata) json.RawMessage {
	if u == nil {
		return nil
	}
	raw, err := json.Marshal(map[string]int32{
		"prompt_tokens":     u.PromptTokenCount,
		"completion_tokens": u.CandidatesTokenCount,
		"total_tokens":      u.TotalTokenCount,
	})
	if err != nil {
		return nil
	}
	return raw
}

// geminiStatus maps a Google API error to an HTTP status, or 0 when the
// error carries none.
func geminiStatus(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	if ae, ok := apierror.FromError(err); ok {
		if code := ae.HTTPCode(); code > 0 {
			return code
		}
		if st := ae.GRPCStatus(); st != nil {
			return grpcToHTTP(st.Code())
		}
	}
	if st, ok := status.FromError(err); ok && st.Code() != codes.OK {
		return grpcToHTTP(st.Code())
	}
	return 0
}

func grpcToHTTP(c codes.Code) int {
	switch c {
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	}
	return 0
}
