package agent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferTransport(t *testing.T) {
	tests := []struct {
		endpoint string
		want     TransportType
	}{
		{"http://localhost:8080/mcp", TransportStreamableHTTP},
		{"https://mcp.example.com", TransportStreamableHTTP},
		{"http://localhost:8080/sse", TransportSSE},
		{"http://localhost:8080/sse/", TransportSSE},
		{"https://mcp.example.com/api/sse", TransportSSE},
		{"https://mcp.example.com/ssense", TransportStreamableHTTP},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			assert.Equal(t, tt.want, InferTransport(tt.endpoint))
		})
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("http://localhost:8080/mcp")

	assert.Equal(t, TransportStreamableHTTP, c.transport)
	assert.Equal(t, DefaultRequestTimeout, c.timeout)
}

func TestNewClient_Options(t *testing.T) {
	c := NewClient("http://localhost:8080/mcp",
		WithTransport(TransportSSE),
		WithRequestTimeout(5*time.Second),
		WithVersion("1.2.3"),
	)

	assert.Equal(t, TransportSSE, c.transport)
	assert.Equal(t, 5*time.Second, c.timeout)
	assert.Equal(t, "1.2.3", c.version)
}

func TestClient_NotConnected(t *testing.T) {
	c := NewClient("http://localhost:8080/mcp")
	ctx := context.Background()

	_, err := c.ListTools(ctx)
	assert.Error(t, err)
	_, err = c.CallTool(ctx, "echo", nil)
	assert.Error(t, err)
	_, err = c.ReadResource(ctx, "file:///x")
	assert.Error(t, err)
}

// newEchoServer builds an in-process MCP server with one tool, wrapped so the
// test can observe the Authorization header on incoming requests.
func newEchoServer(t *testing.T, gotAuth *string) *httptest.Server {
	t.Helper()

	mcpServer := server.NewMCPServer("echo-server", "1.0.0",
		server.WithToolCapabilities(false),
	)
	mcpServer.AddTool(
		mcp.NewTool("echo", mcp.WithDescription("Echoes a fixed response")),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("hello"), nil
		},
	)

	streamable := server.NewStreamableHTTPServer(mcpServer)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotAuth != nil {
			if auth := r.Header.Get("Authorization"); auth != "" {
				*gotAuth = auth
			}
		}
		streamable.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestClient_ConnectAndCallTool(t *testing.T) {
	var gotAuth string
	ts := newEchoServer(t, &gotAuth)

	c := NewClient(ts.URL)
	c.SetAuthorizationHeader("Bearer tok1")

	ctx := context.Background()
	require.NoError(t, c.Connect(ctx))
	defer c.Close()

	tools, err := c.ListTools(ctx)
	require.NoError(t, err)
	require.Len(t, tools.Tools, 1)
	assert.Equal(t, "echo", tools.Tools[0].Name)

	result, err := c.CallTool(ctx, "echo", map[string]interface{}{"message": "hi"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	assert.Equal(t, "hello", text.Text)

	assert.Equal(t, "Bearer tok1", gotAuth, "Authorization header not carried by transport")
}

func TestClient_ConnectUnauthorized(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("WWW-Authenticate", `Bearer realm="mcp"`)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, WithRequestTimeout(2*time.Second))
	err := c.Connect(context.Background())
	if err == nil {
		c.Close()
		t.Fatal("expected Connect to fail against 401 server")
	}
	assert.True(t, IsUnauthorized(err), "expected IsUnauthorized to classify %v", err)
}
