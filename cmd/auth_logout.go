package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newAuthLogoutCmd creates the auth logout command.
func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout <server-url>",
		Short: "Clear stored credentials for an MCP server",
		Long: `Clear the stored OAuth credential for a server.

The next request to the server will run the full authorization flow again.
Clearing credentials that do not exist is not an error.

Note that credentials are keyed by the exact URL string: logging out of
http://localhost:3000 does not affect http://localhost:3000/ .

Examples:
  murl auth logout http://localhost:3000`,
		Args: cobra.ExactArgs(1),
		RunE: runAuthLogout,
	}
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	serverURL := args[0]

	authorizer, err := authAuthorizer()
	if err != nil {
		return err
	}

	if err := authorizer.Store().Clear(serverURL); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	authPrint("Logged out from %s\n", serverURL)
	return nil
}
