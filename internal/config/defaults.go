package config

const (
	// DefaultClientName is the client_name used for dynamic registration.
	DefaultClientName = "murl"

	// DefaultCallbackTimeoutSeconds is the OAuth callback wait window.
	DefaultCallbackTimeoutSeconds = 60

	// DefaultRequestTimeoutSeconds bounds each MCP request.
	DefaultRequestTimeoutSeconds = 30
)

// GetDefaultConfig returns the default configuration. CredentialsDir is left
// empty so the credential store falls back to its own default under the
// user's home directory.
func GetDefaultConfig() Config {
	return Config{
		ClientName:             DefaultClientName,
		CallbackTimeoutSeconds: DefaultCallbackTimeoutSeconds,
		RequestTimeoutSeconds:  DefaultRequestTimeoutSeconds,
	}
}
