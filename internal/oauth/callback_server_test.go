package oauth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func startCallbackServer(t *testing.T, expectedState string) (*CallbackServer, string) {
	t.Helper()

	server := NewCallbackServer(expectedState)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	redirectURI, err := server.Start(ctx)
	if err != nil {
		t.Fatalf("failed to start callback server: %v", err)
	}
	t.Cleanup(server.Stop)

	return server, redirectURI
}

func TestCallbackServer_RedirectURI(t *testing.T) {
	server, redirectURI := startCallbackServer(t, "state-1")

	if !strings.HasPrefix(redirectURI, "http://127.0.0.1:") {
		t.Errorf("redirect URI should use the loopback address, got %s", redirectURI)
	}
	if !strings.HasSuffix(redirectURI, "/callback") {
		t.Errorf("redirect URI should end in /callback, got %s", redirectURI)
	}
	if server.Port() == 0 {
		t.Error("expected OS-assigned port after start")
	}
}

func TestCallbackServer_Success(t *testing.T) {
	server, redirectURI := startCallbackServer(t, "state-1")

	resp, err := http.Get(redirectURI + "?code=abc&state=state-1")
	if err != nil {
		t.Fatalf("callback request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 from callback, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "Authorization successful") {
		t.Errorf("expected success page, got: %s", body)
	}

	result, err := server.WaitForCallback(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("WaitForCallback failed: %v", err)
	}
	if result.Code != "abc" {
		t.Errorf("expected code abc, got %q", result.Code)
	}
}

func TestCallbackServer_StateMismatch(t *testing.T) {
	server, redirectURI := startCallbackServer(t, "state-1")

	resp, err := http.Get(redirectURI + "?code=abc&state=evil")
	if err != nil {
		t.Fatalf("callback request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if !strings.Contains(string(body), "Authorization failed") {
		t.Errorf("expected failure page, got: %s", body)
	}

	_, err = server.WaitForCallback(context.Background(), time.Second)
	var mismatch *StateMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected *StateMismatchError, got %v", err)
	}
}

func TestCallbackServer_AuthorizationDenied(t *testing.T) {
	server, redirectURI := startCallbackServer(t, "state-1")

	resp, err := http.Get(redirectURI + "?error=access_denied&error_description=user+said+no&state=state-1")
	if err != nil {
		t.Fatalf("callback request failed: %v", err)
	}
	resp.Body.Close()

	_, err = server.WaitForCallback(context.Background(), time.Second)
	var denied *AuthorizationDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected *AuthorizationDeniedError, got %v", err)
	}
	if denied.Code != "access_denied" {
		t.Errorf("expected error code access_denied, got %q", denied.Code)
	}
	if denied.Description != "user said no" {
		t.Errorf("expected error description, got %q", denied.Description)
	}
}

func TestCallbackServer_MissingCode(t *testing.T) {
	server, redirectURI := startCallbackServer(t, "state-1")

	resp, err := http.Get(redirectURI + "?state=state-1")
	if err != nil {
		t.Fatalf("callback request failed: %v", err)
	}
	resp.Body.Close()

	_, err = server.WaitForCallback(context.Background(), time.Second)
	if err == nil {
		t.Fatal("expected error for callback without code")
	}
}

func TestCallbackServer_WrongPathKeepsWaiting(t *testing.T) {
	server, redirectURI := startCallbackServer(t, "state-1")
	base := strings.TrimSuffix(redirectURI, "/callback")

	// A request for an unrelated path gets a 404 and does not consume
	// the one accepted callback.
	resp, err := http.Get(base + "/favicon.ico")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for wrong path, got %d", resp.StatusCode)
	}

	// The real callback still succeeds afterwards.
	resp, err = http.Get(redirectURI + "?code=abc&state=state-1")
	if err != nil {
		t.Fatalf("callback request failed: %v", err)
	}
	resp.Body.Close()

	result, err := server.WaitForCallback(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("WaitForCallback failed: %v", err)
	}
	if result.Code != "abc" {
		t.Errorf("expected code abc, got %q", result.Code)
	}
}

func TestCallbackServer_Timeout(t *testing.T) {
	server, _ := startCallbackServer(t, "state-1")

	start := time.Now()
	_, err := server.WaitForCallback(context.Background(), 50*time.Millisecond)
	elapsed := time.Since(start)

	var timeout *CallbackTimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("expected *CallbackTimeoutError, got %v", err)
	}
	if elapsed > 2*time.Second {
		t.Errorf("timeout took too long: %s", elapsed)
	}
}

func TestCallbackServer_SecondCallbackRejected(t *testing.T) {
	server, redirectURI := startCallbackServer(t, "state-1")

	resp, err := http.Get(redirectURI + "?code=first&state=state-1")
	if err != nil {
		t.Fatalf("first callback failed: %v", err)
	}
	resp.Body.Close()

	resp, err = http.Get(redirectURI + "?code=second&state=state-1")
	if err == nil {
		// Server may already be shutting down; if the request got through
		// it must have been rejected.
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400 for second callback, got %d", resp.StatusCode)
		}
		resp.Body.Close()
	}

	result, err := server.WaitForCallback(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("WaitForCallback failed: %v", err)
	}
	if result.Code != "first" {
		t.Errorf("expected first code to win, got %q", result.Code)
	}
}
