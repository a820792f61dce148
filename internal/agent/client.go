package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/turlockmike/murl/pkg/logging"
)

// TransportType defines the transport type for MCP connections
type TransportType string

const (
	TransportSSE            TransportType = "sse"
	TransportStreamableHTTP TransportType = "streamable-http"
)

// DefaultRequestTimeout bounds each individual MCP request.
const DefaultRequestTimeout = 30 * time.Second

// InferTransport picks the transport from the endpoint shape: URLs ending in
// /sse use the SSE transport, everything else streamable-http.
func InferTransport(endpoint string) TransportType {
	if strings.HasSuffix(strings.TrimRight(endpoint, "/"), "/sse") {
		return TransportSSE
	}
	return TransportStreamableHTTP
}

// Client is a single-use MCP client for one request against one server.
type Client struct {
	endpoint  string
	transport TransportType
	headers   map[string]string
	timeout   time.Duration
	version   string

	mu     sync.Mutex
	client client.MCPClient
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTransport overrides the transport inferred from the endpoint.
func WithTransport(t TransportType) ClientOption {
	return func(c *Client) {
		c.transport = t
	}
}

// WithRequestTimeout sets the per-request timeout.
func WithRequestTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithVersion sets the client version advertised during the MCP handshake.
func WithVersion(version string) ClientOption {
	return func(c *Client) {
		c.version = version
	}
}

// NewClient creates a client for the given endpoint. The transport is
// inferred from the endpoint unless overridden.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:  endpoint,
		transport: InferTransport(endpoint),
		headers:   make(map[string]string),
		timeout:   DefaultRequestTimeout,
		version:   "dev",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetHeader sets an HTTP header sent with every transport request. Must be
// called before Connect.
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetAuthorizationHeader sets the Authorization header.
func (c *Client) SetAuthorizationHeader(value string) {
	c.SetHeader("Authorization", value)
}

// Connect establishes the transport and performs the MCP handshake.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return nil
	}

	logging.Debug("Agent", "Connecting to %s using %s transport", c.endpoint, c.transport)

	mcpClient, err := c.createClient(ctx)
	if err != nil {
		return err
	}

	if err := c.initialize(ctx, mcpClient); err != nil {
		mcpClient.Close()
		return err
	}

	c.client = mcpClient
	return nil
}

// createClient builds and starts the transport-specific MCP client.
func (c *Client) createClient(ctx context.Context) (client.MCPClient, error) {
	switch c.transport {
	case TransportSSE:
		var opts []transport.ClientOption
		if len(c.headers) > 0 {
			opts = append(opts, transport.WithHeaders(c.headers))
		}
		sseClient, err := client.NewSSEMCPClient(c.endpoint, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create SSE client: %w", err)
		}
		if err := sseClient.Start(ctx); err != nil {
			return nil, fmt.Errorf("failed to start SSE client: %w", err)
		}
		return sseClient, nil

	case TransportStreamableHTTP:
		var opts []transport.StreamableHTTPCOption
		if len(c.headers) > 0 {
			opts = append(opts, transport.WithHTTPHeaders(c.headers))
		}
		httpClient, err := client.NewStreamableHttpClient(c.endpoint, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create streamable-http client: %w", err)
		}
		if err := httpClient.Start(ctx); err != nil {
			return nil, fmt.Errorf("failed to start streamable-http client: %w", err)
		}
		return httpClient, nil

	default:
		return nil, fmt.Errorf("unsupported transport type: %s", c.transport)
	}
}

// initialize performs the MCP protocol handshake.
func (c *Client) initialize(ctx context.Context, mcpClient client.MCPClient) error {
	req := mcp.InitializeRequest{
		Params: struct {
			ProtocolVersion string                 `json:"protocolVersion"`
			Capabilities    mcp.ClientCapabilities `json:"capabilities"`
			ClientInfo      mcp.Implementation     `json:"clientInfo"`
		}{
			ProtocolVersion: "2024-11-05",
			ClientInfo: mcp.Implementation{
				Name:    "murl",
				Version: c.version,
			},
			Capabilities: mcp.ClientCapabilities{},
		},
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := mcpClient.Initialize(timeoutCtx, req)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	logging.Debug("Agent", "Connected to %s %s (protocol %s)",
		result.ServerInfo.Name, result.ServerInfo.Version, result.ProtocolVersion)
	return nil
}

// ListTools returns all available tools from the server.
func (c *Client) ListTools(ctx context.Context) (*mcp.ListToolsResult, error) {
	if c.client == nil {
		return nil, fmt.Errorf("client not connected")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.client.ListTools(timeoutCtx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("tools/list failed: %w", err)
	}
	return result, nil
}

// CallTool executes a tool and returns the result.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	if c.client == nil {
		return nil, fmt.Errorf("client not connected")
	}

	req := mcp.CallToolRequest{
		Params: struct {
			Name      string    `json:"name"`
			Arguments any       `json:"arguments,omitempty"`
			Meta      *mcp.Meta `json:"_meta,omitempty"`
		}{
			Name:      name,
			Arguments: args,
		},
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.client.CallTool(timeoutCtx, req)
	if err != nil {
		return nil, fmt.Errorf("tools/call failed: %w", err)
	}
	return result, nil
}

// ListResources returns all available resources from the server.
func (c *Client) ListResources(ctx context.Context) (*mcp.ListResourcesResult, error) {
	if c.client == nil {
		return nil, fmt.Errorf("client not connected")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.client.ListResources(timeoutCtx, mcp.ListResourcesRequest{})
	if err != nil {
		return nil, fmt.Errorf("resources/list failed: %w", err)
	}
	return result, nil
}

// ReadResource reads a resource by URI.
func (c *Client) ReadResource(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	if c.client == nil {
		return nil, fmt.Errorf("client not connected")
	}

	req := mcp.ReadResourceRequest{
		Params: struct {
			URI       string         `json:"uri"`
			Arguments map[string]any `json:"arguments,omitempty"`
		}{
			URI: uri,
		},
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.client.ReadResource(timeoutCtx, req)
	if err != nil {
		return nil, fmt.Errorf("resources/read failed: %w", err)
	}
	return result, nil
}

// ListPrompts returns all available prompts from the server.
func (c *Client) ListPrompts(ctx context.Context) (*mcp.ListPromptsResult, error) {
	if c.client == nil {
		return nil, fmt.Errorf("client not connected")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.client.ListPrompts(timeoutCtx, mcp.ListPromptsRequest{})
	if err != nil {
		return nil, fmt.Errorf("prompts/list failed: %w", err)
	}
	return result, nil
}

// GetPrompt retrieves a prompt with the given arguments.
func (c *Client) GetPrompt(ctx context.Context, name string, args map[string]string) (*mcp.GetPromptResult, error) {
	if c.client == nil {
		return nil, fmt.Errorf("client not connected")
	}

	req := mcp.GetPromptRequest{
		Params: struct {
			Name      string            `json:"name"`
			Arguments map[string]string `json:"arguments,omitempty"`
		}{
			Name:      name,
			Arguments: args,
		},
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.client.GetPrompt(timeoutCtx, req)
	if err != nil {
		return nil, fmt.Errorf("prompts/get failed: %w", err)
	}
	return result, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		c.client.Close()
		c.client = nil
	}
	return nil
}
