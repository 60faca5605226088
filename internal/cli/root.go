// Package cli provides the fitai command: the API server plus helpers that
// manage the local credential file.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

const rootLongDesc string = `FitAI is the backend for the FitAI workout app.

Commands:
  fitai serve        Run the API server (default)
  fitai setup        Create .env.local and sync GITHUB_TOKEN from .env
  fitai set-token    Store a GitHub token in .env.local`

const rootShortDesc string = "FitAI - workout catalog and AI coaching chat"

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "fitai",
		Short:        rootShortDesc,
		Long:         rootLongDesc,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("dir", ".", "Directory holding .env and .env.local")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSetupCmd())
	cmd.AddCommand(newSetTokenCmd())

	return cmd
}

// Execute runs the root command. With no arguments it serves.
func Execute() error {
	cmd := NewRootCmd()
	if len(os.Args) == 1 {
		cmd.SetArgs([]string{"serve"})
	}
	return cmd.Execute()
}
