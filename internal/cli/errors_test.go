package cli

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"
)

func TestAuthRequiredError(t *testing.T) {
	t.Run("error message includes endpoint and guidance", func(t *testing.T) {
		err := &AuthRequiredError{Endpoint: "https://mcp.example.com"}
		msg := err.Error()

		if !strings.Contains(msg, "https://mcp.example.com") {
			t.Error("expected error message to contain endpoint")
		}
		if !strings.Contains(msg, "murl auth login") {
			t.Error("expected error message to contain login command")
		}
	})

	t.Run("errors.Is works with wrapped error", func(t *testing.T) {
		authErr := &AuthRequiredError{Endpoint: "https://example.com"}
		wrapped := fmt.Errorf("wrapped: %w", authErr)

		if !errors.Is(wrapped, &AuthRequiredError{}) {
			t.Error("expected errors.Is to find wrapped AuthRequiredError")
		}
	})
}

func TestAuthFailedError(t *testing.T) {
	t.Run("error message includes endpoint and reason", func(t *testing.T) {
		err := &AuthFailedError{
			Endpoint: "https://mcp.example.com",
			Reason:   errors.New("callback timed out"),
		}
		msg := err.Error()

		if !strings.Contains(msg, "https://mcp.example.com") {
			t.Error("expected error message to contain endpoint")
		}
		if !strings.Contains(msg, "callback timed out") {
			t.Error("expected error message to contain reason")
		}
	})

	t.Run("Unwrap returns reason", func(t *testing.T) {
		reason := errors.New("boom")
		err := &AuthFailedError{Endpoint: "https://example.com", Reason: reason}

		if !errors.Is(err, reason) {
			t.Error("expected errors.Is to find the underlying reason")
		}
	})
}

func TestClassifyConnectionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ConnectionErrorType
	}{
		{
			name: "connection refused",
			err:  errors.New("dial tcp 127.0.0.1:3000: connect: connection refused"),
			want: ConnectionErrorNetwork,
		},
		{
			name: "certificate error",
			err:  errors.New("x509: certificate signed by unknown authority"),
			want: ConnectionErrorTLS,
		},
		{
			name: "dns failure",
			err:  &net.DNSError{Err: "no such host", Name: "missing.example.com"},
			want: ConnectionErrorDNS,
		},
		{
			name: "deadline exceeded",
			err:  errors.New("context deadline exceeded"),
			want: ConnectionErrorTimeout,
		},
		{
			name: "unclassified",
			err:  errors.New("something unexpected"),
			want: ConnectionErrorUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyConnectionError(tt.err, "https://example.com")
			if got == nil {
				t.Fatal("expected non-nil ConnectionError")
			}
			if got.Type != tt.want {
				t.Errorf("classified as %s, want %s", got.Type, tt.want)
			}
			if !errors.Is(got, tt.err) {
				t.Error("expected classified error to wrap the original")
			}
		})
	}

	t.Run("nil error", func(t *testing.T) {
		if got := ClassifyConnectionError(nil, "https://example.com"); got != nil {
			t.Errorf("expected nil for nil error, got %v", got)
		}
	})
}
