package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"fitai-backend/internal/models"
)

const DefaultGitHubModelsURL = "https://models.github.ai/inference"

var _ Completer = (*GitHubModels)(nil)

// GitHubModels calls the OpenAI-compatible Chat Completions API hosted by
// GitHub Models.
type GitHubModels struct {
	baseURL string
	llm     llms.Model
	client  *http.Client
}

// NewGitHubModels creates an adapter. An empty baseURL uses the public
// endpoint; a nil client gets a 2 minute timeout.
func NewGitHubModels(baseURL, token string, client *http.Client) (*GitHubModels, error) {
	if baseURL == "" {
		baseURL = DefaultGitHubModelsURL
	}
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	baseURL = strings.TrimRight(baseURL, "/")

	llm, err := openai.New(
		openai.WithToken(token),
		openai.WithBaseURL(baseURL),
		openai.WithHTTPClient(capturingDoer{client: client}),
	)
	if err != nil {
		return nil, fmt.Errorf("github models client: %w", err)
	}
	return &GitHubModels{baseURL: baseURL, llm: llm, client: client}, nil
}

func (g *GitHubModels) Name() string { return "github-models" }

func (g *GitHubModels) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	exchange := &rawExchange{}
	ctx = context.WithValue(ctx, exchangeKey{}, exchange)

	resp, err := g.llm.GenerateContent(ctx, toMessageContent(req.Messages),
		llms.WithModel(req.Model),
		llms.WithTemperature(req.Temperature),
		llms.WithMaxTokens(req.MaxTokens),
		llms.WithTopP(req.TopP),
	)

	if exchange.status != 0 && (exchange.status < 200 || exchange.status >= 300) {
		return nil, &ProviderError{
			StatusCode: exchange.status,
			Model:      req.Model,
			Message:    errorMessage(exchange.body),
		}
	}

	var raw ghResponse
	if exchange.status != 0 {
		if jerr := json.Unmarshal(exchange.body, &raw); jerr != nil && err == nil {
			return nil, fmt.Errorf("decode response: %w", jerr)
		}
	}

	if err != nil {
		// A 2xx without choices is an answer with no text, not a transport failure.
		if exchange.status != 0 && len(raw.Choices) == 0 {
			return &Completion{}, nil
		}
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	out := &Completion{}
	if len(raw.Usage) > 0 && string(raw.Usage) != "null" {
		out.Usage = raw.Usage
	}
	if len(resp.Choices) > 0 && resp.Choices[0] != nil {
		out.Content = resp.Choices[0].Content
	}
	return out, nil
}

func toMessageContent(turns []models.ChatTurn) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(turns))
	for _, t := range turns {
		role := llms.ChatMessageTypeHuman
		switch t.Role {
		case models.RoleSystem:
			role = llms.ChatMessageTypeSystem
		case models.RoleAssistant:
			role = llms.ChatMessageTypeAI
		}
		out = append(out, llms.TextParts(role, t.Content))
	}
	return out
}

// ghResponse is the part of the completion body the client library drops.
type ghResponse struct {
	Choices []json.RawMessage `json:"choices"`
	Usage   json.RawMessage   `json:"usage"`
}

type ghErrorEnvelope struct {
	Error struct {
		Message string          `json:"message"`
		Code    json.RawMessage `json:"code"`
	} `json:"error"`
}

// errorMessage pulls the message out of an OpenAI error envelope, falling
// back to the raw body.
func errorMessage(raw []byte) string {
	var env ghErrorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error.Message != "" {
		return env.Error.Message
	}
	return strings.TrimSpace(string(raw))
}

type exchangeKey struct{}

// rawExchange records the upstream status and body of one call.
type rawExchange struct {
	status int
	body   []byte
}

// capturingDoer hands responses to the client library unchanged and keeps a
// copy in the request's rawExchange, if any.
type capturingDoer struct {
	client *http.Client
}

func (d capturingDoer) Do(req *http.Request) (*http.Response, error) {
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	exchange, ok := req.Context().Value(exchangeKey{}).(*rawExchange)
	if !ok {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	exchange.status = resp.StatusCode
	exchange.body = body
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}
