// Package agent provides the MCP client used to execute requests against a
// server. It wraps mark3labs/mcp-go with the two HTTP transports murl
// supports (streamable-http and SSE), carries the caller's headers into the
// transport, and exposes the subset of MCP operations the request layer
// maps URLs onto: listing and calling tools, listing and reading resources,
// and listing and getting prompts.
//
// The client is single-use: create, Connect, run one request, Close. The
// request layer builds a fresh client per attempt so a re-authorization can
// swap the bearer header without transport-level state leaking across
// attempts.
package agent
