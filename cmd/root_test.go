package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/turlockmike/murl/internal/cli"
	"github.com/turlockmike/murl/internal/oauth"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "auth required",
			err:  &cli.AuthRequiredError{Endpoint: "https://example.com"},
			want: ExitCodeAuthRequired,
		},
		{
			name: "auth failed",
			err:  &cli.AuthFailedError{Endpoint: "https://example.com", Reason: errors.New("boom")},
			want: ExitCodeAuthFailed,
		},
		{
			name: "flow error",
			err:  &oauth.FlowError{State: oauth.FlowStateExchanging, Err: errors.New("boom")},
			want: ExitCodeAuthFailed,
		},
		{
			name: "wrapped auth required",
			err:  fmt.Errorf("request failed: %w", &cli.AuthRequiredError{Endpoint: "https://example.com"}),
			want: ExitCodeAuthRequired,
		},
		{
			name: "generic error",
			err:  errors.New("something broke"),
			want: ExitCodeError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getExitCode(tt.err); got != tt.want {
				t.Errorf("getExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestRootCommandShowsHelpWithoutArgs(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute without args failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "murl") || !strings.Contains(output, "Usage") {
		t.Errorf("expected help output, got: %q", output)
	}
}

func TestRootCommandRunsRequest(t *testing.T) {
	// Keep config and credentials inside the test sandbox.
	t.Setenv("HOME", t.TempDir())

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"http://localhost:1/not-an-mcp-path"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected an error for a URL without a virtual path")
	}
	if !strings.Contains(err.Error(), "invalid MCP URL") {
		t.Errorf("expected the URL parse error from the request path, got: %v", err)
	}
}

func TestRootCommandFlags(t *testing.T) {
	for _, flag := range []string{"data", "header", "no-auth", "reauth", "timeout"} {
		if rootCmd.Flags().Lookup(flag) == nil {
			t.Errorf("root command missing --%s flag", flag)
		}
	}
	for _, flag := range []string{"verbose", "quiet", "config-path"} {
		if rootCmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("root command missing persistent --%s flag", flag)
		}
	}
}

func TestSetVersion(t *testing.T) {
	original := rootCmd.Version
	defer func() { rootCmd.Version = original }()

	SetVersion("9.9.9")
	if GetVersion() != "9.9.9" {
		t.Errorf("GetVersion() = %q, want 9.9.9", GetVersion())
	}
}
