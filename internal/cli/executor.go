package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/turlockmike/murl/internal/agent"
	"github.com/turlockmike/murl/internal/oauth"
	"github.com/turlockmike/murl/pkg/logging"
)

// Authorizer is the slice of the OAuth orchestrator the executor needs.
type Authorizer interface {
	// EnsureCredential returns a valid credential, refreshing or running the
	// interactive flow as needed. force discards any stored credential.
	EnsureCredential(ctx context.Context, serverURL string, force bool) (*oauth.Credential, error)

	// AuthorizeAndSave runs the full interactive flow and persists the
	// result. Used after a server-side rejection, where the stored token is
	// not trusted enough to refresh.
	AuthorizeAndSave(ctx context.Context, serverURL string) (*oauth.Credential, error)
}

// requestRunner executes one MCP request. Swappable for tests.
type requestRunner func(ctx context.Context, endpoint string, headers map[string]string, method string, params map[string]interface{}) (interface{}, error)

// RequestOptions carries the flags of a single murl invocation.
type RequestOptions struct {
	// URL is the full request URL including the virtual path.
	URL string

	// Data holds raw -d/--data flag values.
	Data []string

	// Headers holds raw -H/--header flag values.
	Headers []string

	// NoAuth disables the OAuth flow entirely.
	NoAuth bool

	// Reauth discards any stored credential before the request.
	Reauth bool
}

// ExecutorOptions configures an Executor.
type ExecutorOptions struct {
	// Quiet suppresses the progress spinner.
	Quiet bool

	// RequestTimeout bounds each MCP request.
	RequestTimeout time.Duration

	// Version is advertised in the MCP handshake.
	Version string

	// Output is where results are printed. Defaults to os.Stdout.
	Output io.Writer
}

// Executor runs murl requests end to end: parse, authenticate, execute,
// retry once on rejection, print.
type Executor struct {
	authorizer Authorizer
	options    ExecutorOptions
	run        requestRunner
}

// NewExecutor creates an executor. authorizer may be nil, in which case all
// requests run unauthenticated.
func NewExecutor(authorizer Authorizer, options ExecutorOptions) *Executor {
	if options.Output == nil {
		options.Output = os.Stdout
	}
	if options.RequestTimeout == 0 {
		options.RequestTimeout = agent.DefaultRequestTimeout
	}

	e := &Executor{
		authorizer: authorizer,
		options:    options,
	}
	e.run = e.runMCPRequest
	return e
}

// Execute runs one murl request.
func (e *Executor) Execute(ctx context.Context, opts RequestOptions) error {
	baseURL, virtualPath, err := ParseRequestURL(opts.URL)
	if err != nil {
		return err
	}

	data, err := ParseDataFlags(opts.Data)
	if err != nil {
		return err
	}

	headers, err := ParseHeaders(opts.Headers)
	if err != nil {
		return err
	}

	method, params, err := MapVirtualPath(virtualPath, data)
	if err != nil {
		return err
	}

	// An explicit Authorization header means the user is managing
	// credentials themselves.
	authenticated := !opts.NoAuth && e.authorizer != nil && !hasAuthorizationHeader(headers)

	if authenticated {
		cred, err := e.authorizer.EnsureCredential(ctx, baseURL, opts.Reauth)
		if err != nil {
			return &AuthFailedError{Endpoint: baseURL, Reason: err}
		}
		headers["Authorization"] = cred.BearerHeader()
	}

	result, err := e.execute(ctx, baseURL, headers, method, params)

	if err != nil && agent.IsUnauthorized(err) {
		if !authenticated {
			return &AuthRequiredError{Endpoint: baseURL}
		}

		// The server rejected a token the store considered valid. Run one
		// full re-authorization and retry once; a second rejection is
		// terminal.
		logging.Info("Executor", "Server rejected credentials for %s, re-authorizing", baseURL)
		if !e.options.Quiet {
			fmt.Fprintln(os.Stderr, "Credentials rejected by server. Re-authenticating...")
		}

		cred, authErr := e.authorizer.AuthorizeAndSave(ctx, baseURL)
		if authErr != nil {
			return &AuthFailedError{Endpoint: baseURL, Reason: authErr}
		}
		headers["Authorization"] = cred.BearerHeader()

		result, err = e.execute(ctx, baseURL, headers, method, params)
		if err != nil && agent.IsUnauthorized(err) {
			return &AuthFailedError{Endpoint: baseURL, Reason: err}
		}
	}

	if err != nil {
		return ClassifyConnectionError(err, baseURL)
	}

	return e.printResult(result)
}

// execute runs one request attempt with progress indication.
func (e *Executor) execute(ctx context.Context, endpoint string, headers map[string]string, method string, params map[string]interface{}) (interface{}, error) {
	var s *spinner.Spinner
	if !e.options.Quiet {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		s.Suffix = fmt.Sprintf(" %s %s...", method, endpoint)
		s.Start()
	}

	result, err := e.run(ctx, endpoint, headers, method, params)

	if s != nil {
		s.Stop()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", text.FgRed.Sprintf("Request failed: %s", method))
		}
	}

	return result, err
}

// runMCPRequest connects a fresh MCP client and dispatches the method.
func (e *Executor) runMCPRequest(ctx context.Context, endpoint string, headers map[string]string, method string, params map[string]interface{}) (interface{}, error) {
	client := agent.NewClient(endpoint,
		agent.WithRequestTimeout(e.options.RequestTimeout),
		agent.WithVersion(e.options.Version),
	)
	for k, v := range headers {
		client.SetHeader(k, v)
	}

	if err := client.Connect(ctx); err != nil {
		return nil, err
	}
	defer client.Close()

	switch method {
	case MethodToolsList:
		result, err := client.ListTools(ctx)
		if err != nil {
			return nil, err
		}
		return result.Tools, nil

	case MethodToolsCall:
		name, _ := params["name"].(string)
		args, _ := params["arguments"].(map[string]interface{})
		result, err := client.CallTool(ctx, name, args)
		if err != nil {
			return nil, err
		}
		return result.Content, nil

	case MethodResourcesList:
		result, err := client.ListResources(ctx)
		if err != nil {
			return nil, err
		}
		return result.Resources, nil

	case MethodResourcesRead:
		uri, _ := params["uri"].(string)
		result, err := client.ReadResource(ctx, uri)
		if err != nil {
			return nil, err
		}
		return result.Contents, nil

	case MethodPromptsList:
		result, err := client.ListPrompts(ctx)
		if err != nil {
			return nil, err
		}
		return result.Prompts, nil

	case MethodPromptsGet:
		name, _ := params["name"].(string)
		args := make(map[string]string)
		if rawArgs, ok := params["arguments"].(map[string]interface{}); ok {
			for k, v := range rawArgs {
				args[k] = fmt.Sprintf("%v", v)
			}
		}
		result, err := client.GetPrompt(ctx, name, args)
		if err != nil {
			return nil, err
		}
		return result.Messages, nil

	default:
		return nil, fmt.Errorf("unsupported method: %s", method)
	}
}

// printResult writes the result as indented JSON to the output.
func (e *Executor) printResult(result interface{}) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = fmt.Fprintln(e.options.Output, string(data))
	return err
}

// hasAuthorizationHeader reports whether the parsed headers contain an
// Authorization header, case-insensitively.
func hasAuthorizationHeader(headers map[string]string) bool {
	for k := range headers {
		if strings.EqualFold(k, "Authorization") {
			return true
		}
	}
	return false
}
