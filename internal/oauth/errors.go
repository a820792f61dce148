package oauth

import (
	"fmt"
	"time"
)

// MetadataError indicates that authorization server metadata could not be
// fetched or parsed. Note that 404 responses and transport-level failures do
// NOT produce a MetadataError; those fall back to synthesized default
// endpoints (see DiscoverMetadata).
type MetadataError struct {
	// URL is the metadata document URL that was requested.
	URL string
	// StatusCode is the HTTP status of the response, if one was received.
	StatusCode int
	// Body is an excerpt of the response body.
	Body string
	// Err is the underlying error, if any.
	Err error
}

func (e *MetadataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to fetch OAuth metadata from %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("failed to fetch OAuth metadata (%d): %s", e.StatusCode, e.Body)
}

func (e *MetadataError) Unwrap() error {
	return e.Err
}

// RegistrationError indicates that dynamic client registration failed.
type RegistrationError struct {
	// Endpoint is the registration endpoint that was called.
	Endpoint string
	// StatusCode is the HTTP status of the response, if one was received.
	StatusCode int
	// Body is an excerpt of the response body.
	Body string
	// Err is the underlying error, if any.
	Err error
}

func (e *RegistrationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("client registration failed: %v", e.Err)
	}
	return fmt.Sprintf("client registration failed (%d): %s", e.StatusCode, e.Body)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// StateMismatchError indicates that the callback's state parameter did not
// match the one generated for the flow. The received state is deliberately
// not carried: it is attacker-controlled input.
type StateMismatchError struct{}

func (e *StateMismatchError) Error() string {
	return "state mismatch - possible CSRF attack"
}

// AuthorizationDeniedError indicates the authorization server redirected
// back with an error instead of a code (e.g., the user clicked "deny").
type AuthorizationDeniedError struct {
	// Code is the OAuth error code (e.g., "access_denied").
	Code string
	// Description is the optional human-readable error_description.
	Description string
}

func (e *AuthorizationDeniedError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("authorization failed: %s - %s", e.Code, e.Description)
	}
	return fmt.Sprintf("authorization failed: %s", e.Code)
}

// CallbackTimeoutError indicates no matching redirect arrived at the
// loopback listener within its wall-clock window.
type CallbackTimeoutError struct {
	// Timeout is the window that elapsed.
	Timeout time.Duration
}

func (e *CallbackTimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting for authorization callback after %s", e.Timeout)
}

// TokenExchangeError indicates an authorization code could not be exchanged
// for tokens.
type TokenExchangeError struct {
	// StatusCode is the HTTP status of the response, if one was received.
	StatusCode int
	// Body is an excerpt of the response body.
	Body string
	// Err is the underlying error, if any.
	Err error
}

func (e *TokenExchangeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token exchange failed: %v", e.Err)
	}
	return fmt.Sprintf("token exchange failed (%d): %s", e.StatusCode, e.Body)
}

func (e *TokenExchangeError) Unwrap() error {
	return e.Err
}

// RefreshError indicates a refresh-token grant failed. Callers are expected
// to fall back to a fresh interactive authorization.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("token refresh failed: %v", e.Err)
}

func (e *RefreshError) Unwrap() error {
	return e.Err
}

// CredentialIOError indicates a credential file could not be written.
// Read failures never surface as errors; the store treats them as a cache
// miss so a corrupt file degrades to "no credential".
type CredentialIOError struct {
	Path string
	Err  error
}

func (e *CredentialIOError) Error() string {
	return fmt.Sprintf("credential store: %s: %v", e.Path, e.Err)
}

func (e *CredentialIOError) Unwrap() error {
	return e.Err
}

// FlowError is the single typed condition every subsystem failure collapses
// into at the Authorizer boundary. State identifies where the flow failed;
// Err carries the identifiable cause from the taxonomy above.
type FlowError struct {
	State FlowState
	Err   error
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("authentication failed (%s): %v", e.State, e.Err)
}

func (e *FlowError) Unwrap() error {
	return e.Err
}
