package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newAuthLoginCmd creates the auth login command.
func newAuthLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <server-url>",
		Short: "Authenticate to an MCP server",
		Long: `Authenticate to an MCP server using OAuth.

This runs the full browser-based authorization flow against the server,
replacing any stored credential, and persists the result. Requests to the
same URL then authenticate automatically.

Examples:
  murl auth login http://localhost:3000
  murl auth login https://mcp.example.com/api`,
		Args: cobra.ExactArgs(1),
		RunE: runAuthLogin,
	}
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	serverURL := args[0]

	authorizer, err := authAuthorizer()
	if err != nil {
		return err
	}

	authPrint("Authenticating to %s...\n", serverURL)

	cred, err := authorizer.AuthorizeAndSave(cmd.Context(), serverURL)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	authPrint("Authenticated to %s\n", serverURL)
	authPrint("  Token expires %s\n", formatExpiry(cred.ExpiresAt))
	return nil
}
