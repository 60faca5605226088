package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LocalEnvFile is the file the CLI writes credentials to.
const LocalEnvFile = ".env.local"

// DefaultLocalEnv seeds a freshly created .env.local.
var DefaultLocalEnv = map[string]string{
	"GITHUB_TOKEN": "",
	"FRONTEND_URL": "http://localhost:3000",
	"ENV":          "development",
}

// ReadEnvFile returns the key/value pairs in path. A missing file is an
// empty map, not an error.
func ReadEnvFile(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return env, nil
}

// EnsureEnvFile creates path when it does not exist and reports whether it
// did so. The new file is a byte copy of template when that exists,
// otherwise it holds defaults.
func EnsureEnvFile(path, template string, defaults map[string]string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if template != "" {
		content, err := os.ReadFile(template)
		if err == nil {
			if err := os.WriteFile(path, content, 0o600); err != nil {
				return false, fmt.Errorf("failed to create %s: %w", path, err)
			}
			return true, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return false, fmt.Errorf("failed to read %s: %w", template, err)
		}
	}

	env := make(map[string]string, len(defaults))
	for k, v := range defaults {
		env[k] = v
	}
	if err := godotenv.Write(env, path); err != nil {
		return false, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return true, nil
}

// UpsertEnvValue sets key=value in path. The line holding key is rewritten
// in place; comments, order and every other line are kept. A missing key is
// appended. It reports whether the stored value changed.
func UpsertEnvValue(path, key, value string) (bool, error) {
	env, err := ReadEnvFile(path)
	if err != nil {
		return false, err
	}
	if current, ok := env[key]; ok && current == value {
		return false, nil
	}

	content, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	line := key + "=" + formatEnvValue(value)
	lines := strings.SplitAfter(string(content), "\n")
	replaced := false
	for i, l := range lines {
		if !replaced && envLineKey(l) == key {
			ending := ""
			if strings.HasSuffix(l, "\n") {
				ending = "\n"
				if strings.HasSuffix(l, "\r\n") {
					ending = "\r\n"
				}
			}
			lines[i] = line + ending
			replaced = true
		}
	}

	out := strings.Join(lines, "")
	if !replaced {
		if out != "" && !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		out += line + "\n"
	}

	if err := os.WriteFile(path, []byte(out), 0o600); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}

// envLineKey returns the key assigned on an env file line, or "".
func envLineKey(line string) string {
	l := strings.TrimSpace(line)
	if l == "" || strings.HasPrefix(l, "#") {
		return ""
	}
	l = strings.TrimPrefix(l, "export ")
	idx := strings.IndexAny(l, "=:")
	if idx <= 0 {
		return ""
	}
	return strings.TrimSpace(l[:idx])
}

// formatEnvValue quotes value when it would not survive unquoted.
func formatEnvValue(value string) string {
	if value != "" && !strings.ContainsAny(value, " \t#'\"\\$\n\r") {
		return value
	}
	r := strings.NewReplacer("\\", "\\\\", "\"", "\\\"", "\n", "\\n", "\r", "\\r", "$", "\\$")
	return "\"" + r.Replace(value) + "\""
}

// ValidTokenFormat reports whether token looks like a GitHub personal access
// token. Unrecognized formats are still accepted by the CLI, with a warning.
func ValidTokenFormat(token string) bool {
	return strings.HasPrefix(token, "ghp_") || strings.HasPrefix(token, "github_pat_")
}

// MaskToken keeps the first 10 and last 4 characters of token.
func MaskToken(token string) string {
	if len(token) <= 14 {
		return strings.Repeat("*", len(token))
	}
	return token[:10] + "..." + token[len(token)-4:]
}
