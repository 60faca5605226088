package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"fitai-backend/internal/models"
)

const SystemPrompt = `You are FitBot, an expert AI personal trainer and fitness coach. You help users with:

🏋️ Workout Planning & Exercise Selection
💪 Form Correction & Technique Tips  
📊 Progress Tracking & Goal Setting
🍎 Basic Nutrition Guidance
💡 Motivation & Encouragement
🎯 Personalized Fitness Advice

Guidelines:
- Always prioritize safety and proper form
- Recommend starting with bodyweight exercises for beginners
- Suggest progressive overload for strength building
- Encourage rest and recovery
- Ask about any injuries or limitations before recommending exercises
- Be motivational and supportive
- Provide specific, actionable advice
- Include estimated sets, reps, and rest times when relevant
- Mention when to consult healthcare professionals

Keep responses concise but helpful. Use emojis to make interactions engaging.`

// RelayOptions are the per-process settings of a Relay.
type RelayOptions struct {
	Models         []string
	Temperature    float64
	MaxTokens      int
	TopP           float64
	AttemptTimeout time.Duration
	Logger         *slog.Logger
}

// ChatResult is a successful relay outcome.
type ChatResult struct {
	Message string
	Usage   json.RawMessage
	Model   string
}

// Relay forwards a chat turn to the provider, walking the candidate models
// in order until one answers.
type Relay struct {
	client     Completer
	configured bool
	profile    ProviderProfile
	opts       RelayOptions
	log        *slog.Logger
}

// NewRelay creates a relay. A nil client means the credential is missing;
// every Handle call then fails with *ConfigError.
func NewRelay(client Completer, profile ProviderProfile, opts RelayOptions) *Relay {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Relay{
		client:     client,
		configured: client != nil,
		profile:    profile,
		opts:       opts,
		log:        log,
	}
}

func (r *Relay) Configured() bool         { return r.configured }
func (r *Relay) Profile() ProviderProfile { return r.profile }

// Close releases the provider client when it holds resources.
func (r *Relay) Close() error {
	if c, ok := r.client.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Models returns a copy of the candidate list.
func (r *Relay) Models() []string {
	return append([]string(nil), r.opts.Models...)
}

type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeRetryable
	outcomeFatal
)

type attempt struct {
	outcome    outcome
	completion *Completion
	err        error
}

// Handle relays message with the caller's history and returns the first
// successful completion.
func (r *Relay) Handle(ctx context.Context, message string, history []models.ChatTurn) (*ChatResult, error) {
	if !r.configured {
		return nil, &ConfigError{Profile: r.profile}
	}
	if err := ValidateTurn(message, history); err != nil {
		return nil, err
	}

	msgs := BuildMessages(message, history)

	var lastErr error
	for _, model := range r.opts.Models {
		r.log.Info("attempting model", "model", model, "service", r.profile.Service)

		a := r.attempt(ctx, model, msgs)
		switch a.outcome {
		case outcomeSuccess:
			if a.completion.Content == "" {
				r.log.Error("empty completion", "model", model)
				return nil, &AttemptError{Model: model, Err: ErrEmptyCompletion}
			}
			return &ChatResult{
				Message: a.completion.Content,
				Usage:   a.completion.Usage,
				Model:   model,
			}, nil
		case outcomeRetryable:
			r.log.Warn("model unavailable, trying next candidate",
				"model", model, "status", StatusCode(a.err), "error", a.err)
			lastErr = a.err
		default:
			r.log.Error("chat completion failed", "model", model, "error", a.err)
			return nil, a.err
		}
	}

	if lastErr != nil {
		r.log.Error("all candidate models failed", "error", lastErr)
		return nil, lastErr
	}
	return nil, ErrNoProviderResponded
}

func (r *Relay) attempt(ctx context.Context, model string, msgs []models.ChatTurn) attempt {
	if r.opts.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.AttemptTimeout)
		defer cancel()
	}

	completion, err := r.client.Complete(ctx, CompletionRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: r.opts.Temperature,
		MaxTokens:   r.opts.MaxTokens,
		TopP:        r.opts.TopP,
	})
	if err != nil {
		err = &AttemptError{Model: model, Err: err}
		var pe *ProviderError
		if errors.As(err, &pe) && pe.Retryable() {
			return attempt{outcome: outcomeRetryable, err: err}
		}
		return attempt{outcome: outcomeFatal, err: err}
	}
	if completion == nil {
		completion = &Completion{}
	}
	return attempt{outcome: outcomeSuccess, completion: completion}
}

// ValidateTurn checks the new message and the caller's history.
func ValidateTurn(message string, history []models.ChatTurn) error {
	if strings.TrimSpace(message) == "" {
		return &ValidationError{Field: "message", Message: "message is required"}
	}
	for i, turn := range history {
		switch turn.Role {
		case models.RoleUser, models.RoleAssistant:
		case models.RoleSystem:
			return &ValidationError{
				Field:   fmt.Sprintf("chatHistory[%d].role", i),
				Message: "system turns cannot be supplied",
			}
		default:
			return &ValidationError{
				Field:   fmt.Sprintf("chatHistory[%d].role", i),
				Message: fmt.Sprintf("unknown role %q", turn.Role),
			}
		}
	}
	return nil
}

// BuildMessages returns [system prompt] + history + [user message].
func BuildMessages(message string, history []models.ChatTurn) []models.ChatTurn {
	msgs := make([]models.ChatTurn, 0, len(history)+2)
	msgs = append(msgs, models.ChatTurn{Role: models.RoleSystem, Content: SystemPrompt})
	for _, turn := range history {
		msgs = append(msgs, models.ChatTurn{Role: turn.Role, Content: turn.Content})
	}
	return append(msgs, models.ChatTurn{Role: models.RoleUser, Content: message})
}
