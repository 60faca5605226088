package services

import (
	"context"
	"fmt"
	"net/http"

	"fitai-backend/internal/config"
)

// NewCompleter builds the adapter selected by cfg.Provider. The returned
// Completer is nil when the credential is not configured.
func NewCompleter(ctx context.Context, cfg *config.Config, httpClient *http.Client) (Completer, ProviderProfile, error) {
	switch cfg.Provider {
	case config.ProviderGitHub, "":
		if cfg.Credential() == "" {
			return nil, GitHubModelsProfile, nil
		}
		g, err := NewGitHubModels(cfg.GitHubModelsURL, cfg.GitHubToken, httpClient)
		if err != nil {
			return nil, GitHubModelsProfile, err
		}
		return g, GitHubModelsProfile, nil
	case config.ProviderGemini:
		if cfg.Credential() == "" {
			return nil, GeminiProfile, nil
		}
		g, err := NewGemini(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, GeminiProfile, err
		}
		return g, GeminiProfile, nil
	default:
		return nil, ProviderProfile{}, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// NewRelayFromConfig wires a Relay from configuration.
func NewRelayFromConfig(ctx context.Context, cfg *config.Config, opts RelayOptions) (*Relay, error) {
	client, profile, err := NewCompleter(ctx, cfg, nil)
	if err != nil {
		return nil, err
	}
	opts.Models = cfg.CandidateModels()
	opts.Temperature = cfg.Temperature
	opts.MaxTokens = cfg.MaxTokens
	opts.TopP = cfg.TopP
	opts.AttemptTimeout = cfg.AttemptTimeout
	return NewRelay(client, profile, opts), nil
}
