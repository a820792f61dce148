package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/turlockmike/murl/pkg/logging"
)

// wellKnownMetadataPath is the RFC 8414 authorization server metadata path.
const wellKnownMetadataPath = "/.well-known/oauth-authorization-server"

// Metadata represents OAuth 2.0 Authorization Server Metadata as discovered
// from the well-known endpoint (RFC 8414).
type Metadata struct {
	Issuer                        string   `json:"issuer,omitempty"`
	AuthorizationEndpoint         string   `json:"authorization_endpoint"`
	TokenEndpoint                 string   `json:"token_endpoint"`
	RegistrationEndpoint          string   `json:"registration_endpoint,omitempty"`
	ScopesSupported               []string `json:"scopes_supported,omitempty"`
	ResponseTypesSupported        []string `json:"response_types_supported,omitempty"`
	CodeChallengeMethodsSupported []string `json:"code_challenge_methods_supported,omitempty"`
}

// AuthorityBase extracts scheme + host from a server URL, discarding any
// path component. The metadata document and the fallback endpoints are
// always rooted at the authority, not at the MCP endpoint path.
func AuthorityBase(serverURL string) (string, error) {
	parsed, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL %q: %w", serverURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("server URL %q must include scheme and host", serverURL)
	}
	return parsed.Scheme + "://" + parsed.Host, nil
}

// DefaultMetadata returns the synthesized default endpoints for servers that
// publish no metadata document.
func DefaultMetadata(authority string) *Metadata {
	return &Metadata{
		AuthorizationEndpoint: authority + "/authorize",
		TokenEndpoint:         authority + "/token",
		RegistrationEndpoint:  authority + "/register",
	}
}

// DiscoverMetadata resolves the authorization server endpoints for a target
// server URL.
//
// It fetches {authority}/.well-known/oauth-authorization-server (redirects
// followed, short timeout). A 200 with valid JSON is returned verbatim. A
// 404 -- or any transport-level failure (DNS, connect, timeout) -- falls
// back to the synthesized defaults from DefaultMetadata. A 200 with invalid
// JSON, or any other status, fails with a *MetadataError.
//
// Results are cached per authority with a TTL, and concurrent fetches for
// the same authority are deduplicated.
func (c *Client) DiscoverMetadata(ctx context.Context, serverURL string) (*Metadata, error) {
	authority, err := AuthorityBase(serverURL)
	if err != nil {
		return nil, &MetadataError{Err: err}
	}

	// Check cache first with read lock
	c.metadataMu.RLock()
	if entry, ok := c.metadataCache[authority]; ok {
		if time.Since(entry.fetchedAt) < c.metadataTTL {
			c.metadataMu.RUnlock()
			return entry.metadata, nil
		}
	}
	c.metadataMu.RUnlock()

	// Use singleflight to deduplicate concurrent fetches
	result, err, _ := c.metadataGroup.Do(authority, func() (interface{}, error) {
		// Double-check cache after acquiring singleflight lock
		c.metadataMu.RLock()
		if entry, ok := c.metadataCache[authority]; ok {
			if time.Since(entry.fetchedAt) < c.metadataTTL {
				c.metadataMu.RUnlock()
				return entry.metadata, nil
			}
		}
		c.metadataMu.RUnlock()

		return c.doDiscoverMetadata(ctx, authority)
	})

	if err != nil {
		return nil, err
	}

	return result.(*Metadata), nil
}

// doDiscoverMetadata performs the actual HTTP fetch for server metadata.
func (c *Client) doDiscoverMetadata(ctx context.Context, authority string) (*Metadata, error) {
	metadataURL := authority + wellKnownMetadataPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, metadataURL, nil)
	if err != nil {
		return nil, &MetadataError{URL: metadataURL, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network-level failure (DNS, connect, timeout). Best effort:
		// assume the server has no metadata document and guess the
		// conventional endpoints.
		logging.Debug("OAuth", "Metadata fetch from %s failed (%v), using default endpoints", metadataURL, err)
		metadata := DefaultMetadata(authority)
		c.cacheMetadata(authority, metadata)
		return metadata, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &MetadataError{URL: metadataURL, StatusCode: resp.StatusCode, Err: err}
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var metadata Metadata
		if err := json.Unmarshal(body, &metadata); err != nil {
			return nil, &MetadataError{
				URL:        metadataURL,
				StatusCode: resp.StatusCode,
				Body:       bodyExcerpt(body),
				Err:        fmt.Errorf("invalid JSON in metadata response: %w", err),
			}
		}
		c.cacheMetadata(authority, &metadata)
		return &metadata, nil

	case http.StatusNotFound:
		logging.Debug("OAuth", "No metadata document at %s, using default endpoints", metadataURL)
		metadata := DefaultMetadata(authority)
		c.cacheMetadata(authority, metadata)
		return metadata, nil

	default:
		return nil, &MetadataError{
			URL:        metadataURL,
			StatusCode: resp.StatusCode,
			Body:       bodyExcerpt(body),
		}
	}
}

// cacheMetadata stores metadata in the cache.
func (c *Client) cacheMetadata(authority string, metadata *Metadata) {
	c.metadataMu.Lock()
	c.metadataCache[authority] = &metadataCacheEntry{
		metadata:  metadata,
		fetchedAt: time.Now(),
	}
	c.metadataMu.Unlock()

	logging.Debug("OAuth", "Cached metadata for %s (authorization_endpoint=%s, token_endpoint=%s)",
		authority, metadata.AuthorizationEndpoint, metadata.TokenEndpoint)
}
