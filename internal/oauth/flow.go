package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/turlockmike/murl/pkg/logging"
)

// callbackJoinSlack is added to the listener's window when the Authorizer
// joins the listener goroutine. The join deadline must be strictly greater
// than the listener's own timeout so the listener, not the join, reports
// the timeout under normal drift.
const callbackJoinSlack = 5 * time.Second

// FlowState identifies where an authorization flow currently is, and where
// it failed.
type FlowState int

const (
	// FlowStateIdle means no flow is running.
	FlowStateIdle FlowState = iota

	// FlowStateDiscovering means server metadata is being resolved.
	FlowStateDiscovering

	// FlowStateRegistering means dynamic client registration is running.
	FlowStateRegistering

	// FlowStateAwaitingCallback means the browser redirect is pending.
	FlowStateAwaitingCallback

	// FlowStateExchanging means the authorization code is being exchanged.
	FlowStateExchanging

	// FlowStateComplete means the flow produced a credential.
	FlowStateComplete

	// FlowStateFailed means the flow failed.
	FlowStateFailed
)

// String returns the string representation of the flow state.
func (s FlowState) String() string {
	switch s {
	case FlowStateIdle:
		return "idle"
	case FlowStateDiscovering:
		return "discovering"
	case FlowStateRegistering:
		return "registering"
	case FlowStateAwaitingCallback:
		return "awaiting_callback"
	case FlowStateExchanging:
		return "exchanging"
	case FlowStateComplete:
		return "complete"
	case FlowStateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Authorizer composes discovery, registration, the loopback listener, the
// browser, and token exchange into the full interactive flow, plus the
// refresh flow. It is the single entry point the request layer uses to
// obtain a valid bearer token.
type Authorizer struct {
	mu              sync.RWMutex
	client          *Client
	store           *CredentialStore
	callbackTimeout time.Duration
	openBrowser     func(string) error
	state           FlowState
}

// AuthorizerConfig configures the Authorizer.
type AuthorizerConfig struct {
	// CredentialsDir is the directory for persisted credentials.
	// Defaults to ~/.config/murl/credentials.
	CredentialsDir string

	// ClientName is the client_name used for dynamic registration.
	// Defaults to "murl".
	ClientName string

	// CallbackTimeout is the loopback listener's window.
	// Defaults to DefaultCallbackTimeout.
	CallbackTimeout time.Duration

	// HTTPClient is an optional custom HTTP client.
	HTTPClient *http.Client
}

// NewAuthorizer creates an Authorizer with the specified configuration.
func NewAuthorizer(cfg AuthorizerConfig) (*Authorizer, error) {
	store, err := NewCredentialStore(cfg.CredentialsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create credential store: %w", err)
	}

	clientOpts := []ClientOption{}
	if cfg.ClientName != "" {
		clientOpts = append(clientOpts, WithClientName(cfg.ClientName))
	}
	if cfg.HTTPClient != nil {
		clientOpts = append(clientOpts, WithHTTPClient(cfg.HTTPClient))
	}

	callbackTimeout := cfg.CallbackTimeout
	if callbackTimeout == 0 {
		callbackTimeout = DefaultCallbackTimeout
	}

	return &Authorizer{
		client:          NewClient(clientOpts...),
		store:           store,
		callbackTimeout: callbackTimeout,
		openBrowser:     OpenBrowser,
		state:           FlowStateIdle,
	}, nil
}

// Store exposes the underlying credential store for logout/status commands.
func (a *Authorizer) Store() *CredentialStore {
	return a.store
}

// State returns the current flow state.
func (a *Authorizer) State() FlowState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

func (a *Authorizer) setState(s FlowState) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

// fail records the failure and collapses the cause into a *FlowError
// carrying the state the flow was in when it failed.
func (a *Authorizer) fail(at FlowState, err error) error {
	a.setState(FlowStateFailed)
	return &FlowError{State: at, Err: err}
}

// Authorize runs the full interactive authorization flow against a server
// and returns the resulting credential. The caller persists it.
//
// Steps: metadata discovery -> dynamic client registration -> PKCE + state
// -> concurrent {loopback listener, browser launch} -> code exchange.
func (a *Authorizer) Authorize(ctx context.Context, serverURL string) (*Credential, error) {
	a.setState(FlowStateDiscovering)
	logging.Info("OAuth", "Discovering OAuth metadata for %s", serverURL)

	metadata, err := a.client.DiscoverMetadata(ctx, serverURL)
	if err != nil {
		return nil, a.fail(FlowStateDiscovering, err)
	}

	// A missing registration endpoint is a configuration problem, not a
	// transient one. Fail before any local resources are bound.
	if metadata.RegistrationEndpoint == "" {
		return nil, a.fail(FlowStateDiscovering, errors.New(
			"server does not advertise a registration endpoint; manual client registration may be required"))
	}

	state, err := GenerateState()
	if err != nil {
		return nil, a.fail(FlowStateDiscovering, err)
	}

	// Bind the loopback port first so the redirect URI is known at
	// registration time.
	callbackServer := NewCallbackServer(state)
	listenerCtx, cancelListener := context.WithCancel(ctx)
	defer cancelListener()

	redirectURI, err := callbackServer.Start(listenerCtx)
	if err != nil {
		return nil, a.fail(FlowStateAwaitingCallback, err)
	}
	defer callbackServer.Stop()

	a.setState(FlowStateRegistering)
	logging.Info("OAuth", "Registering client with %s", metadata.RegistrationEndpoint)

	registration, err := a.client.RegisterClient(ctx, metadata.RegistrationEndpoint, redirectURI)
	if err != nil {
		return nil, a.fail(FlowStateRegistering, err)
	}

	pkce, err := GeneratePKCE()
	if err != nil {
		return nil, a.fail(FlowStateRegistering, err)
	}

	authURL, err := buildAuthorizationURL(metadata.AuthorizationEndpoint, registration.ClientID, redirectURI, state, pkce)
	if err != nil {
		return nil, a.fail(FlowStateRegistering, err)
	}

	a.setState(FlowStateAwaitingCallback)
	logging.Info("OAuth", "Opening browser for authorization")

	// Fire-and-forget: if the browser can't be launched the user can still
	// open the URL by hand, so this never fails the flow.
	if err := a.openBrowser(authURL); err != nil {
		logging.Warn("OAuth", "Could not open browser automatically: %v", err)
		logging.Info("OAuth", "Open this URL to authorize: %s", authURL)
	}

	// Join the listener with a deadline strictly greater than its own
	// window, so a misbehaving listener can never block the process.
	type callbackOutcome struct {
		result *CallbackResult
		err    error
	}
	outcomeCh := make(chan callbackOutcome, 1)
	go func() {
		result, waitErr := callbackServer.WaitForCallback(listenerCtx, a.callbackTimeout)
		outcomeCh <- callbackOutcome{result: result, err: waitErr}
	}()

	joinTimer := time.NewTimer(a.callbackTimeout + callbackJoinSlack)
	defer joinTimer.Stop()

	var outcome callbackOutcome
	select {
	case outcome = <-outcomeCh:
	case <-joinTimer.C:
		outcome = callbackOutcome{err: &CallbackTimeoutError{Timeout: a.callbackTimeout}}
	case <-ctx.Done():
		return nil, a.fail(FlowStateAwaitingCallback, ctx.Err())
	}

	if outcome.err != nil {
		return nil, a.fail(FlowStateAwaitingCallback, outcome.err)
	}

	a.setState(FlowStateExchanging)
	logging.Info("OAuth", "Exchanging authorization code for token")

	token, err := a.client.ExchangeCode(ctx, metadata.TokenEndpoint,
		outcome.result.Code, registration.ClientID, registration.ClientSecret,
		redirectURI, pkce.CodeVerifier)
	if err != nil {
		return nil, a.fail(FlowStateExchanging, err)
	}

	credential := &Credential{
		ClientID:             registration.ClientID,
		ClientSecret:         registration.ClientSecret,
		AccessToken:          token.AccessToken,
		RefreshToken:         token.RefreshToken,
		ExpiresAt:            token.Expiry.Unix(),
		TokenEndpoint:        metadata.TokenEndpoint,
		RegistrationEndpoint: metadata.RegistrationEndpoint,
		ServerURL:            serverURL,
	}

	a.setState(FlowStateComplete)
	logging.Info("OAuth", "Authorization successful for %s", serverURL)
	return credential, nil
}

// Refresh exchanges the credential's refresh token for a new access token
// and updates the credential in place. It fails immediately with a
// *RefreshError if no refresh token is present; on any failure the caller
// is expected to fall back to a fresh interactive Authorize.
func (a *Authorizer) Refresh(ctx context.Context, cred *Credential) (*Credential, error) {
	if cred.RefreshToken == "" {
		return nil, &RefreshError{Err: errors.New("no refresh token available")}
	}

	token, err := a.client.RefreshToken(ctx, cred.TokenEndpoint, cred.RefreshToken, cred.ClientID, cred.ClientSecret)
	if err != nil {
		return nil, err
	}

	cred.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		// Server rotated the refresh token
		cred.RefreshToken = token.RefreshToken
	}
	cred.ExpiresAt = token.Expiry.Unix()

	return cred, nil
}

// EnsureCredential returns a valid credential for the server, running
// whatever is needed: the stored credential if still valid, a refresh if
// expired, or the full interactive flow if there is no credential or the
// refresh fails. force discards any stored credential first. The result is
// always persisted before it is returned.
func (a *Authorizer) EnsureCredential(ctx context.Context, serverURL string, force bool) (*Credential, error) {
	if force {
		if err := a.store.Clear(serverURL); err != nil {
			return nil, err
		}
	}

	cred := a.store.Get(serverURL)
	if cred == nil {
		return a.AuthorizeAndSave(ctx, serverURL)
	}

	if !cred.IsExpired() {
		return cred, nil
	}

	refreshed, err := a.Refresh(ctx, cred)
	if err == nil {
		if err := a.store.Save(serverURL, refreshed); err != nil {
			return nil, err
		}
		return refreshed, nil
	}

	logging.Debug("OAuth", "Refresh failed for %s, falling back to interactive authorization: %v", serverURL, err)
	return a.AuthorizeAndSave(ctx, serverURL)
}

// AuthorizeAndSave runs the full interactive flow and persists the result.
// This is also the reactive path after a request is rejected with 401: the
// rejected token is not trusted, so refresh is never attempted here.
func (a *Authorizer) AuthorizeAndSave(ctx context.Context, serverURL string) (*Credential, error) {
	cred, err := a.Authorize(ctx, serverURL)
	if err != nil {
		return nil, err
	}
	if err := a.store.Save(serverURL, cred); err != nil {
		return nil, err
	}
	return cred, nil
}

// buildAuthorizationURL constructs the authorization request URL.
func buildAuthorizationURL(authorizationEndpoint, clientID, redirectURI, state string, pkce *PKCEChallenge) (string, error) {
	authURL, err := url.Parse(authorizationEndpoint)
	if err != nil {
		return "", fmt.Errorf("invalid authorization endpoint: %w", err)
	}

	params := url.Values{
		"client_id":             {clientID},
		"redirect_uri":          {redirectURI},
		"response_type":         {"code"},
		"code_challenge":        {pkce.CodeChallenge},
		"code_challenge_method": {pkce.CodeChallengeMethod},
		"state":                 {state},
	}

	authURL.RawQuery = params.Encode()
	return authURL.String(), nil
}
