package services

// ProviderProfile holds the names used in remediation text for a provider.
type ProviderProfile struct {
	Service      string
	Credential   string
	EnvVar       string
	TokenURL     string
	ExampleValue string
	Note         string
}

var GitHubModelsProfile = ProviderProfile{
	Service:      "GitHub Models",
	Credential:   "GitHub token",
	EnvVar:       "GITHUB_TOKEN",
	TokenURL:     "https://github.com/settings/tokens",
	ExampleValue: "ghp_your-token-here",
	Note:         "Using GitHub Models for free access to OpenAI GPT-4o",
}

var GeminiProfile = ProviderProfile{
	Service:      "Google Gemini",
	Credential:   "Gemini API key",
	EnvVar:       "GEMINI_API_KEY",
	TokenURL:     "https://aistudio.google.com/app/apikey",
	ExampleValue: "your-gemini-api-key",
	Note:         "Using Google Gemini directly",
}

// Instructions lists the steps to configure the credential.
func (p ProviderProfile) Instructions() []string {
	return []string{
		"1. Generate a " + shortCredential(p) + " from: " + p.TokenURL,
		"2. Add to .env.local: " + p.EnvVar + "=" + p.ExampleValue,
		"3. Restart the server: fitai serve",
	}
}

func shortCredential(p ProviderProfile) string {
	if p.EnvVar == GitHubModelsProfile.EnvVar {
		return "GitHub PAT"
	}
	return p.Credential
}
