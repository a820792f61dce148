package cmd

import (
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// newAuthStatusCmd creates the auth status command.
func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <server-url>",
		Short: "Show credential status for an MCP server",
		Long: `Show the stored OAuth credential for a server: whether one exists,
when it expires, and whether it can be refreshed without a browser.

Examples:
  murl auth status http://localhost:3000`,
		Args: cobra.ExactArgs(1),
		RunE: runAuthStatus,
	}
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	serverURL := args[0]

	authorizer, err := authAuthorizer()
	if err != nil {
		return err
	}

	authPrint("Server: %s\n", serverURL)

	cred := authorizer.Store().Get(serverURL)
	if cred == nil {
		authPrint("  Status:    %s\n", text.FgYellow.Sprint("Not authenticated"))
		authPrint("\nTo authenticate, run:\n  murl auth login %s\n", serverURL)
		return nil
	}

	if cred.IsExpired() {
		authPrint("  Status:    %s\n", text.FgYellow.Sprint("Expired"))
	} else {
		authPrint("  Status:    %s\n", text.FgGreen.Sprint("Authenticated"))
	}
	authPrint("  Client ID: %s\n", cred.ClientID)
	authPrint("  Expires:   %s\n", formatExpiry(cred.ExpiresAt))
	if cred.RefreshToken != "" {
		authPrint("  Refresh:   %s\n", text.FgGreen.Sprint("Available"))
	} else {
		authPrint("  Refresh:   %s\n", text.FgYellow.Sprint("Not available (re-auth required on expiry)"))
	}

	return nil
}
