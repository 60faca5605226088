package services

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrEmptyCompletion is returned when a provider answered without text.
	ErrEmptyCompletion = errors.New("no response from AI")
	// ErrNoProviderResponded is returned when no candidate produced a result.
	ErrNoProviderResponded = errors.New("no provider responded")
)

// ConfigError means the provider credential is missing.
type ConfigError struct {
	Profile ProviderProfile
}

func (e *ConfigError) Error() string {
	return e.Profile.Credential + " not configured"
}

// ValidationError describes caller input that cannot be relayed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ProviderError is a failure reported by the upstream API with a status.
type ProviderError struct {
	StatusCode int
	Model      string
	Message    string
}

func (e *ProviderError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, msg)
}

// Retryable reports whether the next candidate model should be tried.
func (e *ProviderError) Retryable() bool {
	return e.StatusCode == http.StatusForbidden || e.StatusCode == http.StatusNotFound
}

// AttemptError ties a failure to the model it happened on.
type AttemptError struct {
	Model string
	Err   error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("model %s: %v", e.Model, e.Err)
}

func (e *AttemptError) Unwrap() error { return e.Err }

// StatusCode extracts the upstream status from err, or 0.
func StatusCode(err error) int {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.StatusCode
	}
	return 0
}

// FailedModel returns the model an error is attributed to, or "".
func FailedModel(err error) string {
	var ae *AttemptError
	if errors.As(err, &ae) {
		return ae.Model
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Model
	}
	return ""
}
