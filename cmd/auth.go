package cmd

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/turlockmike/murl/internal/oauth"
)

// authCmd represents the auth command group
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication for murl",
	Long: `Manage OAuth credentials for MCP servers.

Requests to protected servers authenticate automatically, so these commands
are mostly for inspecting and resetting state.

Examples:
  murl auth login http://localhost:3000    # Authenticate explicitly
  murl auth status http://localhost:3000   # Show credential status
  murl auth logout http://localhost:3000   # Clear stored credentials`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogging()
	},
}

// authPrint prints output only if the --quiet flag is not set.
func authPrint(format string, args ...interface{}) {
	if !rootQuiet {
		fmt.Printf(format, args...)
	}
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(newAuthLoginCmd())
	authCmd.AddCommand(newAuthLogoutCmd())
	authCmd.AddCommand(newAuthStatusCmd())
}

// authAuthorizer builds the OAuth orchestrator for auth subcommands.
func authAuthorizer() (*oauth.Authorizer, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return buildAuthorizer(cfg)
}

// formatExpiry formats a Unix epoch expiry as "in X" or "expired X ago".
func formatExpiry(expiresAt int64) string {
	if expiresAt == 0 {
		return text.FgYellow.Sprint("unknown")
	}

	remaining := time.Until(time.Unix(expiresAt, 0))
	if remaining > 0 {
		return "in " + formatDuration(remaining)
	}
	return text.FgYellow.Sprintf("expired %s ago", formatDuration(-remaining))
}

// formatDuration renders a duration in the largest sensible unit.
func formatDuration(d time.Duration) string {
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours())/24)
	case d >= time.Hour:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	case d >= time.Minute:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}
