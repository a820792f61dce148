package agent

import (
	"strings"
)

// IsUnauthorized checks if an error indicates the server rejected the
// request for lack of valid credentials. The MCP transports surface 401s as
// plain errors, so this is a string-pattern check.
func IsUnauthorized(err error) bool {
	if err == nil {
		return false
	}

	patterns := []string{
		"401",
		"unauthorized",
		"invalid_token",
		"token expired",
		"token has expired",
		"authentication required",
	}

	errLower := strings.ToLower(err.Error())
	for _, pattern := range patterns {
		if strings.Contains(errLower, pattern) {
			return true
		}
	}

	return false
}
