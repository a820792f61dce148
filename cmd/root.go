package cmd

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/turlockmike/murl/internal/cli"
	"github.com/turlockmike/murl/internal/config"
	"github.com/turlockmike/murl/internal/oauth"
	"github.com/turlockmike/murl/pkg/logging"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAuthRequired indicates authentication is required but not available.
	ExitCodeAuthRequired = 2
	// ExitCodeAuthFailed indicates the OAuth flow failed.
	ExitCodeAuthFailed = 3
)

var (
	rootData       []string
	rootHeaders    []string
	rootVerbose    bool
	rootQuiet      bool
	rootNoAuth     bool
	rootReauth     bool
	rootTimeout    int
	rootConfigPath string
)

// rootCmd represents the base command. Unlike most CLIs the root command does
// the real work: `murl <url>` is the request itself, curl style.
var rootCmd = &cobra.Command{
	Use:   "murl [url]",
	Short: "A curl-like CLI for MCP servers",
	Long: `murl is a curl-like command-line client for Model Context Protocol (MCP)
servers. The URL names both the server and what to do there: the last
/tools, /resources, or /prompts segment is the request, everything before
it is the server endpoint.

OAuth-protected servers are handled transparently: murl discovers the
authorization server, registers itself as a client, opens your browser for
approval, and caches the resulting token for subsequent requests.

Examples:

  # List tools
  murl http://localhost:3000/tools

  # Call a tool
  murl http://localhost:3000/tools/echo -d message=hello

  # Call a tool with JSON data
  murl http://localhost:3000/tools/config -d '{"theme": "dark"}'

  # Read a resource (file path)
  murl http://localhost:3000/resources/path/to/file

  # Bring your own token
  murl http://localhost:3000/prompts -H "Authorization: Bearer token123"`,
	Args: cobra.MaximumNArgs(1),
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
	// RunE is wired up in init: runRequest reads rootCmd, so assigning it
	// here would create an initialization cycle.
}

// SetVersion sets the version for the root command. Called from the main
// package to inject the build-time version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "murl version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	var authRequired *cli.AuthRequiredError
	if errors.As(err, &authRequired) {
		return ExitCodeAuthRequired
	}

	var authFailed *cli.AuthFailedError
	if errors.As(err, &authFailed) {
		return ExitCodeAuthFailed
	}

	var flowErr *oauth.FlowError
	if errors.As(err, &flowErr) {
		return ExitCodeAuthFailed
	}

	return ExitCodeError
}

func init() {
	rootCmd.RunE = runRequest
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())

	rootCmd.Flags().StringArrayVarP(&rootData, "data", "d", nil, "Add data to the request. Format: key=value or JSON object")
	rootCmd.Flags().StringArrayVarP(&rootHeaders, "header", "H", nil, "Add custom HTTP header. Format: \"Key: Value\"")
	rootCmd.Flags().BoolVar(&rootNoAuth, "no-auth", false, "Disable OAuth authentication entirely")
	rootCmd.Flags().BoolVar(&rootReauth, "reauth", false, "Discard stored credentials and re-authenticate")
	rootCmd.Flags().IntVar(&rootTimeout, "timeout", 0, "Request timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Enable verbose output on stderr")
	rootCmd.PersistentFlags().BoolVarP(&rootQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config-path", "", "Configuration directory (default ~/.config/murl)")
}

// runRequest executes a single MCP request against the URL argument.
func runRequest(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	initLogging()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	authorizer, err := buildAuthorizer(cfg)
	if err != nil {
		return err
	}

	timeoutSeconds := cfg.RequestTimeoutSeconds
	if rootTimeout > 0 {
		timeoutSeconds = rootTimeout
	}

	executor := cli.NewExecutor(authorizer, cli.ExecutorOptions{
		Quiet:          rootQuiet,
		RequestTimeout: time.Duration(timeoutSeconds) * time.Second,
		Version:        rootCmd.Version,
		Output:         cmd.OutOrStdout(),
	})

	return executor.Execute(cmd.Context(), cli.RequestOptions{
		URL:     args[0],
		Data:    rootData,
		Headers: rootHeaders,
		NoAuth:  rootNoAuth,
		Reauth:  rootReauth,
	})
}

// initLogging wires the verbosity flag into the logging subsystem. Logs go
// to stderr; stdout carries only request results.
func initLogging() {
	level := logging.LevelWarn
	if rootVerbose {
		level = logging.LevelDebug
	}
	logging.Init(level, os.Stderr)
}

// loadConfig resolves the configuration directory and loads config.yaml.
func loadConfig() (config.Config, error) {
	configPath := rootConfigPath
	if configPath == "" {
		var err error
		configPath, err = config.GetDefaultConfigPath()
		if err != nil {
			return config.Config{}, err
		}
	}
	return config.LoadConfig(configPath)
}

// buildAuthorizer constructs the OAuth orchestrator from configuration.
func buildAuthorizer(cfg config.Config) (*oauth.Authorizer, error) {
	return oauth.NewAuthorizer(oauth.AuthorizerConfig{
		CredentialsDir:  cfg.CredentialsDir,
		ClientName:      cfg.ClientName,
		CallbackTimeout: time.Duration(cfg.CallbackTimeoutSeconds) * time.Second,
	})
}
