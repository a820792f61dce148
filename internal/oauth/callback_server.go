package oauth

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"
)

// DefaultCallbackTimeout is how long the loopback listener waits for the
// browser redirect before giving up.
const DefaultCallbackTimeout = 60 * time.Second

//go:embed templates/callback_success.html
var callbackSuccessHTML string

//go:embed templates/callback_error.html
var callbackErrorHTML string

var (
	callbackSuccessTmpl = template.Must(template.New("success").Parse(callbackSuccessHTML))
	callbackErrorTmpl   = template.Must(template.New("error").Parse(callbackErrorHTML))
)

// CallbackResult is the successful outcome of an OAuth redirect. It lives
// in memory only and is consumed exactly once by the Authorizer.
type CallbackResult struct {
	// Code is the authorization code from the authorization server.
	Code string
}

// CallbackServer is a temporary loopback HTTP server for receiving the OAuth
// redirect. It binds 127.0.0.1 on an OS-assigned port, serves exactly one
// matching request, then shuts down. Requests for paths other than
// /callback get a 404 and do not count as the one accepted callback.
//
// State validation happens inside the handler: a redirect whose state does
// not exactly match the one generated for this flow is rejected before the
// authorization code is even looked at.
type CallbackServer struct {
	expectedState string
	server        *http.Server
	listener      net.Listener
	port          int
	resultCh      chan *CallbackResult
	errorCh       chan error
	once          sync.Once
}

// NewCallbackServer creates a callback server bound to the given flow state.
func NewCallbackServer(expectedState string) *CallbackServer {
	return &CallbackServer{
		expectedState: expectedState,
		resultCh:      make(chan *CallbackResult, 1),
		errorCh:       make(chan error, 1),
	}
}

// Start binds the loopback listener and begins serving.
// Returns the redirect URI to use in the OAuth authorization request,
// http://127.0.0.1:<port>/callback. The server stops when the context is
// cancelled.
func (s *CallbackServer) Start(ctx context.Context) (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to start callback server: %w", err)
	}

	s.listener = listener
	s.port = listener.Addr().(*net.TCPAddr).Port

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", s.handleCallback)

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Serve in a goroutine
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			select {
			case s.errorCh <- err:
			default:
			}
		}
	}()

	// Release the port when the context is cancelled
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return s.RedirectURI(), nil
}

// WaitForCallback blocks until the redirect arrives, the window elapses, or
// the context is cancelled. The window expiring yields a
// *CallbackTimeoutError.
func (s *CallbackServer) WaitForCallback(ctx context.Context, timeout time.Duration) (*CallbackResult, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-s.resultCh:
		return result, nil
	case err := <-s.errorCh:
		return nil, err
	case <-timer.C:
		return nil, &CallbackTimeoutError{Timeout: timeout}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// handleCallback handles the OAuth redirect request.
func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	var handled bool
	s.once.Do(func() {
		handled = true
		s.processCallback(w, r)
	})

	if !handled {
		http.Error(w, "Callback already processed", http.StatusBadRequest)
	}
}

// processCallback inspects the redirect query and records the outcome.
// Called exactly once via sync.Once.
func (s *CallbackServer) processCallback(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "no-store")

	query := r.URL.Query()

	// Validate state before anything else
	if query.Get("state") != s.expectedState {
		s.finish(w, &StateMismatchError{}, "state mismatch")
		return
	}

	if errCode := query.Get("error"); errCode != "" {
		denied := &AuthorizationDeniedError{
			Code:        errCode,
			Description: query.Get("error_description"),
		}
		reason := denied.Description
		if reason == "" {
			reason = denied.Code
		}
		s.finish(w, denied, reason)
		return
	}

	code := query.Get("code")
	if code == "" {
		s.finish(w, errors.New("no authorization code received"), "no code received")
		return
	}

	s.renderPage(w, callbackSuccessTmpl, nil)
	select {
	case s.resultCh <- &CallbackResult{Code: code}:
	default:
	}
	s.scheduleShutdown()
}

// finish responds with the failure page and records the typed error.
func (s *CallbackServer) finish(w http.ResponseWriter, cause error, reason string) {
	s.renderPage(w, callbackErrorTmpl, map[string]string{"Reason": reason})
	select {
	case s.errorCh <- cause:
	default:
	}
	s.scheduleShutdown()
}

func (s *CallbackServer) renderPage(w http.ResponseWriter, tmpl *template.Template, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// scheduleShutdown stops the server shortly after the response is sent.
func (s *CallbackServer) scheduleShutdown() {
	go func() {
		time.Sleep(1 * time.Second)
		s.Stop()
	}()
}

// Stop gracefully shuts down the callback server and releases the port.
func (s *CallbackServer) Stop() {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(ctx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
}

// RedirectURI returns the redirect URI served by this listener.
func (s *CallbackServer) RedirectURI() string {
	return fmt.Sprintf("http://127.0.0.1:%d/callback", s.port)
}

// Port returns the OS-assigned port the server is listening on.
func (s *CallbackServer) Port() int {
	return s.port
}
