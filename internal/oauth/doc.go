// Package oauth implements the OAuth 2.0 Authorization Code + PKCE flow
// murl uses to authenticate against remote MCP servers.
//
// # Architecture
//
// The package is composed of small, independently testable pieces:
//
//   - PKCE and state generation (pkce.go)
//   - Authorization server metadata discovery with a deterministic fallback
//     (discovery.go)
//   - Dynamic client registration per RFC 7591 (registration.go)
//   - A temporary loopback callback server that receives exactly one
//     authorization redirect (callback_server.go)
//   - Token exchange and refresh (exchange.go)
//   - Per-server credential persistence with restrictive file permissions
//     (credential_store.go)
//   - The Authorizer, which composes all of the above into the interactive
//     flow and the refresh flow (flow.go)
//
// # Flow
//
// A full interactive authorization runs:
//
//	discovery -> registration -> PKCE + state -> browser + callback -> exchange
//
// The Authorizer starts the loopback listener and the browser concurrently,
// then joins the listener with a deadline strictly greater than the
// listener's own window so the process can never block indefinitely.
//
// # Security
//
//   - PKCE with the S256 method is always used; "plain" is never offered.
//   - The state parameter is validated by the callback handler itself; a
//     redirect with a non-matching state is rejected before the code is read.
//   - Credentials are written with 0600 permissions only after a fully
//     successful exchange or refresh. Failed flows never leave partial state.
//   - Token values are never logged.
package oauth
