package oauth

import (
	"fmt"
	"os/exec"
	"runtime"
)

// browserCommand returns the platform launcher for opening a URL in the
// user's default browser.
func browserCommand(url string) (*exec.Cmd, error) {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("xdg-open", url), nil
	case "darwin":
		return exec.Command("open", url), nil
	case "windows":
		return exec.Command("cmd", "/c", "start", url), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// OpenBrowser launches the default web browser at the authorization URL.
// The launcher is started, not waited on: the flow continues immediately and
// the loopback listener picks up the redirect whenever the user approves.
func OpenBrowser(url string) error {
	cmd, err := browserCommand(url)
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}
