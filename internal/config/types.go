package config

// Config is the top-level configuration structure for murl.
type Config struct {
	// ClientName is the client_name used for dynamic client registration.
	ClientName string `yaml:"clientName,omitempty"`

	// CredentialsDir is the directory for persisted credentials.
	CredentialsDir string `yaml:"credentialsDir,omitempty"`

	// CallbackTimeoutSeconds is the OAuth loopback listener's window.
	CallbackTimeoutSeconds int `yaml:"callbackTimeoutSeconds,omitempty"`

	// RequestTimeoutSeconds bounds each MCP request.
	RequestTimeoutSeconds int `yaml:"requestTimeoutSeconds,omitempty"`
}
