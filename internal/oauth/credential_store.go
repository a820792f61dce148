package oauth

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/turlockmike/murl/pkg/logging"
)

// DefaultCredentialsDir is the default directory for stored credentials,
// relative to the user's home directory.
const DefaultCredentialsDir = ".config/murl/credentials"

// CredentialExpiryBuffer is the margin applied when checking credential
// expiry. It accounts for clock skew and in-flight request time.
const CredentialExpiryBuffer = 60 * time.Second

// Credential is the persisted result of a successful authorization. It is
// written only after a fully successful exchange or refresh; failed flows
// never leave a partial file behind.
type Credential struct {
	// ClientID is the OAuth client identifier from dynamic registration.
	ClientID string `json:"client_id"`

	// ClientSecret is the optional client secret.
	ClientSecret string `json:"client_secret,omitempty"`

	// AccessToken is the bearer token presented to the server.
	AccessToken string `json:"access_token"`

	// RefreshToken is the optional refresh token.
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresAt is the absolute expiry time as a Unix epoch timestamp.
	// Zero means unknown, which IsExpired treats as expired.
	ExpiresAt int64 `json:"expires_at,omitempty"`

	// TokenEndpoint is where refresh grants are sent.
	TokenEndpoint string `json:"token_endpoint"`

	// RegistrationEndpoint is where the client was registered.
	RegistrationEndpoint string `json:"registration_endpoint,omitempty"`

	// ServerURL is the exact server URL this credential belongs to.
	ServerURL string `json:"server_url"`
}

// IsExpired reports whether the access token is expired or about to expire
// within the buffer. A credential without an expiry is always expired.
func (c *Credential) IsExpired() bool {
	if c == nil || c.ExpiresAt == 0 {
		return true
	}
	return time.Now().Unix() >= c.ExpiresAt-int64(CredentialExpiryBuffer.Seconds())
}

// BearerHeader returns the Authorization header value for this credential.
func (c *Credential) BearerHeader() string {
	return "Bearer " + c.AccessToken
}

// CredentialStore persists credentials keyed by server URL.
//
// The storage key is the hex SHA-256 digest of the exact URL string as
// supplied by the caller. There is no normalization: two spellings of the
// same host are distinct identities.
//
// SECURITY: credential files are created with 0600 permissions and the
// directory with 0700. Token values are never logged.
type CredentialStore struct {
	mu  sync.Mutex
	dir string
}

// NewCredentialStore creates a credential store rooted at dir. An empty dir
// defaults to ~/.config/murl/credentials.
func NewCredentialStore(dir string) (*CredentialStore, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, DefaultCredentialsDir)
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create credentials directory: %w", err)
	}

	return &CredentialStore{dir: dir}, nil
}

// Get returns the stored credential for a server URL, or nil if none
// exists. A file that cannot be read or parsed is treated as "not found";
// corruption never surfaces to the caller.
func (s *CredentialStore) Get(serverURL string) *Credential {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.credentialPath(serverURL)

	// #nosec G304 -- path is derived from a digest, not user input
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Debug("Store", "Failed to read credential file for %s: %v", serverURL, err)
		}
		return nil
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		logging.Debug("Store", "Ignoring unparseable credential file for %s: %v", serverURL, err)
		return nil
	}

	return &cred
}

// Save persists a credential for a server URL, setting its ServerURL field
// and restricting the file to owner read/write.
func (s *CredentialStore) Save(serverURL string, cred *Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred.ServerURL = serverURL
	path := s.credentialPath(serverURL)

	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return &CredentialIOError{Path: path, Err: err}
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return &CredentialIOError{Path: path, Err: err}
	}

	logging.Debug("Store", "Stored credential for %s (has_refresh_token=%t)",
		serverURL, cred.RefreshToken != "")
	return nil
}

// Clear deletes the stored credential for a server URL. Clearing a
// credential that does not exist is not an error.
func (s *CredentialStore) Clear(serverURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.credentialPath(serverURL)
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return &CredentialIOError{Path: path, Err: err}
	}
	return nil
}

// credentialPath returns the file path for a server URL's credential.
func (s *CredentialStore) credentialPath(serverURL string) string {
	return filepath.Join(s.dir, credentialKey(serverURL)+".json")
}

// credentialKey is the hex SHA-256 digest of the exact server URL string.
func credentialKey(serverURL string) string {
	hash := sha256.Sum256([]byte(serverURL))
	return hex.EncodeToString(hash[:])
}
