package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"fitai-backend/internal/config"
)

const setupLongDesc string = `Prepare the local credential file.

Creates .env.local (from .env.example when present, otherwise with
defaults), then copies GITHUB_TOKEN from .env into .env.local. A token in
.env takes precedence over one already in .env.local.`

const setupShortDesc string = "Create .env.local and sync GITHUB_TOKEN"

const tokenKey = "GITHUB_TOKEN"

func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: setupShortDesc,
		Long:  setupLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			return runSetup(cmd.OutOrStdout(), dir)
		},
	}
}

func runSetup(out io.Writer, dir string) error {
	fmt.Fprintln(out, "🏋️ FitAI Setup - GitHub Models")

	localPath := filepath.Join(dir, config.LocalEnvFile)

	// 1) Ensure .env.local exists
	created, err := config.EnsureEnvFile(localPath, filepath.Join(dir, ".env.example"), config.DefaultLocalEnv)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(out, "✓ Created %s\n", config.LocalEnvFile)
	}

	// 2) .env wins over .env.local
	dotEnv, err := config.ReadEnvFile(filepath.Join(dir, ".env"))
	if err != nil {
		return err
	}
	local, err := config.ReadEnvFile(localPath)
	if err != nil {
		return err
	}
	token := strings.TrimSpace(dotEnv[tokenKey])
	if token == "" {
		token = strings.TrimSpace(local[tokenKey])
	}

	if token == "" {
		fmt.Fprintf(out, "⚠️  No %s found in .env or %s\n", tokenKey, config.LocalEnvFile)
		fmt.Fprintf(out, "   Add to .env: %s=ghp_your_token_here\n", tokenKey)
		fmt.Fprintln(out, "   or run: fitai set-token")
		return nil
	}

	// 3) Write back to .env.local
	changed, err := config.UpsertEnvValue(localPath, tokenKey, token)
	if err != nil {
		return err
	}
	if changed {
		fmt.Fprintf(out, "✓ Synchronized %s from .env into %s\n", tokenKey, config.LocalEnvFile)
	} else {
		fmt.Fprintf(out, "ℹ️  %s already up-to-date in %s\n", tokenKey, config.LocalEnvFile)
	}
	fmt.Fprintf(out, "🔒 Using token: %s\n", config.MaskToken(token))

	fmt.Fprintln(out, "\n🚀 Setup complete! Run \"fitai serve\" to start the server")
	return nil
}

func requireLocalEnv(dir string) (string, error) {
	path := filepath.Join(dir, config.LocalEnvFile)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s not found, run \"fitai setup\" first", config.LocalEnvFile)
		}
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return path, nil
}
