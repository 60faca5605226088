package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"fitai-backend/internal/config"
)

const setTokenLongDesc string = `Store a GitHub personal access token in .env.local.

The token can be given as an argument, piped on stdin, or typed at a hidden
prompt. Get one from https://github.com/settings/tokens. Tokens normally
start with "ghp_" or "github_pat_"; other formats are stored with a warning.

Examples:
  fitai set-token                     Prompt for the token
  fitai set-token ghp_xxx             Store the given token
  echo $TOKEN | fitai set-token       Read the token from stdin`

const setTokenShortDesc string = "Store a GitHub token in .env.local"

func newSetTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-token [token]",
		Short: setTokenShortDesc,
		Long:  setTokenLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			path, err := requireLocalEnv(dir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var token string
			if len(args) == 1 {
				token = args[0]
			} else {
				if token, err = readToken(cmd.InOrStdin(), out); err != nil {
					return err
				}
			}
			return runSetToken(out, path, token)
		},
	}
}

func runSetToken(out io.Writer, path, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("no token provided")
	}

	if !config.ValidTokenFormat(token) {
		fmt.Fprintln(out, "⚠️  Warning: GitHub token format not recognized")
		fmt.Fprintln(out, "   Expected: ghp_... or github_pat_...")
		fmt.Fprintln(out, "   Proceeding anyway...")
	}

	if _, err := config.UpsertEnvValue(path, tokenKey, token); err != nil {
		return err
	}

	fmt.Fprintln(out, "✓ GitHub token saved")
	fmt.Fprintf(out, "   Token: %s\n", config.MaskToken(token))
	fmt.Fprintln(out, "   Restart the server: fitai serve")
	return nil
}

// readToken prompts with hidden input on a terminal, otherwise reads the
// first line of in.
func readToken(in io.Reader, out io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintln(out, "🔗 Get your token from: https://github.com/settings/tokens")
		fmt.Fprint(out, "Enter your GitHub token: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out) // newline after hidden input
		if err != nil {
			return "", fmt.Errorf("reading token: %w", err)
		}
		return string(b), nil
	}

	scanner := bufio.NewScanner(in)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return "", errors.New("no token provided")
}
