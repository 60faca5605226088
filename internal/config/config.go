package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGitHub = "github"
	ProviderGemini = "gemini"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Model provider
	Provider        string
	GitHubToken     string
	GitHubModelsURL string
	GitHubModels    []string
	GeminiAPIKey    string
	GeminiModels    []string

	// Sampling
	Temperature float64
	MaxTokens   int
	TopP        float64

	// Chat relay
	AttemptTimeout time.Duration
	ChatRateLimit  int

	// Redis (optional, shared rate limiting)
	RedisURL string

	// Frontend
	FrontendURL string

	// Logging
	LogFormat string
	LogLevel  string
}

// EnvFiles are loaded in order. godotenv never overrides a variable that is
// already set, so the first file to define a key wins.
var EnvFiles = []string{".env", ".env.local"}

func Load() *Config {
	return LoadFrom(".")
}

// LoadFrom reads EnvFiles relative to dir, then the environment.
func LoadFrom(dir string) *Config {
	// Load .env files if they exist
	for _, f := range EnvFiles {
		godotenv.Load(filepath.Join(dir, f))
	}

	cfg := &Config{
		Port:            getEnvOrDefault("PORT", "8080"),
		Env:             getEnvOrDefault("ENV", "development"),
		Provider:        strings.ToLower(getEnvOrDefault("FITAI_PROVIDER", ProviderGitHub)),
		GitHubToken:     strings.TrimSpace(os.Getenv("GITHUB_TOKEN")),
		GitHubModelsURL: getEnvOrDefault("GITHUB_MODELS_URL", "https://models.github.ai/inference"),
		GitHubModels:    getEnvAsListOrDefault("GITHUB_MODELS", []string{"openai/gpt-4o", "openai/gpt-4o-mini"}),
		GeminiAPIKey:    strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModels:    getEnvAsListOrDefault("GEMINI_MODELS", []string{"gemini-2.0-flash", "gemini-1.5-flash"}),
		Temperature:     getEnvAsFloatOrDefault("CHAT_TEMPERATURE", 1),
		MaxTokens:       getEnvAsIntOrDefault("CHAT_MAX_TOKENS", 4096),
		TopP:            getEnvAsFloatOrDefault("CHAT_TOP_P", 1),
		AttemptTimeout:  getEnvAsDurationOrDefault("CHAT_ATTEMPT_TIMEOUT", 60*time.Second),
		ChatRateLimit:   getEnvAsIntOrDefault("CHAT_RATE_LIMIT", 20),
		RedisURL:        getEnvOrDefault("REDIS_URL", ""),
		FrontendURL:     getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
		LogFormat:       getEnvOrDefault("LOG_FORMAT", "pretty"),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
	}

	return cfg
}

// Credential returns the credential for the selected provider. An empty
// string means the chat relay is not configured.
func (c *Config) Credential() string {
	if c.Provider == ProviderGemini {
		return c.GeminiAPIKey
	}
	return c.GitHubToken
}

// CandidateModels returns the fallback list for the selected provider.
func (c *Config) CandidateModels() []string {
	if c.Provider == ProviderGemini {
		return c.GeminiModels
	}
	return c.GitHubModels
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

// getEnvAsListOrDefault splits a comma-separated value, dropping empty items.
func getEnvAsListOrDefault(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
