package oauth

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	// DefaultHTTPTimeout is the default timeout for OAuth HTTP requests
	// (discovery, registration, token exchange).
	DefaultHTTPTimeout = 10 * time.Second

	// DefaultMetadataCacheTTL is the default TTL for cached server metadata.
	DefaultMetadataCacheTTL = 30 * time.Minute

	// DefaultClientName is the client_name sent during dynamic client
	// registration.
	DefaultClientName = "murl"
)

// metadataCacheEntry holds cached server metadata with its timestamp.
type metadataCacheEntry struct {
	metadata  *Metadata
	fetchedAt time.Time
}

// Client performs the OAuth protocol operations: metadata discovery, dynamic
// client registration, code exchange, and token refresh.
type Client struct {
	httpClient *http.Client
	clientName string

	// Metadata cache with mutex for thread safety
	metadataMu    sync.RWMutex
	metadataCache map[string]*metadataCacheEntry
	metadataTTL   time.Duration

	// singleflight group to deduplicate concurrent metadata fetches
	metadataGroup singleflight.Group
}

// ClientOption configures the OAuth client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithClientName sets the client_name used for dynamic client registration.
func WithClientName(name string) ClientOption {
	return func(c *Client) {
		c.clientName = name
	}
}

// WithMetadataCacheTTL sets the metadata cache TTL.
func WithMetadataCacheTTL(ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.metadataTTL = ttl
	}
}

// NewClient creates a new OAuth client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient:    &http.Client{Timeout: DefaultHTTPTimeout},
		clientName:    DefaultClientName,
		metadataCache: make(map[string]*metadataCacheEntry),
		metadataTTL:   DefaultMetadataCacheTTL,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// bodyExcerptLimit caps response bodies carried inside errors.
const bodyExcerptLimit = 1024

// bodyExcerpt truncates a response body for inclusion in error messages.
func bodyExcerpt(body []byte) string {
	if len(body) > bodyExcerptLimit {
		return string(body[:bodyExcerptLimit]) + "..."
	}
	return string(body)
}
