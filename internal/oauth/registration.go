package oauth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// ClientRegistration is the result of dynamic client registration.
type ClientRegistration struct {
	// ClientID is the registered OAuth client identifier.
	ClientID string `json:"client_id"`

	// ClientSecret is the optional client secret. Registration requests
	// ask for the "none" token endpoint auth method, so most servers
	// leave this empty.
	ClientSecret string `json:"client_secret,omitempty"`

	// RedirectURI is the redirect URI the client was registered with.
	RedirectURI string `json:"-"`
}

// registrationRequest is the fixed RFC 7591 registration payload.
type registrationRequest struct {
	ClientName              string   `json:"client_name"`
	RedirectURIs            []string `json:"redirect_uris"`
	GrantTypes              []string `json:"grant_types"`
	ResponseTypes           []string `json:"response_types"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method"`
}

// RegisterClient performs dynamic client registration (RFC 7591) against the
// discovered registration endpoint. Success requires HTTP 200 or 201 with a
// JSON body containing at least client_id; anything else fails with a
// *RegistrationError.
func (c *Client) RegisterClient(ctx context.Context, registrationEndpoint, redirectURI string) (*ClientRegistration, error) {
	payload := registrationRequest{
		ClientName:              c.clientName,
		RedirectURIs:            []string{redirectURI},
		GrantTypes:              []string{"authorization_code"},
		ResponseTypes:           []string{"code"},
		TokenEndpointAuthMethod: "none",
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, &RegistrationError{Endpoint: registrationEndpoint, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, registrationEndpoint, bytes.NewReader(data))
	if err != nil {
		return nil, &RegistrationError{Endpoint: registrationEndpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RegistrationError{Endpoint: registrationEndpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RegistrationError{Endpoint: registrationEndpoint, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &RegistrationError{
			Endpoint:   registrationEndpoint,
			StatusCode: resp.StatusCode,
			Body:       bodyExcerpt(body),
		}
	}

	var registration ClientRegistration
	if err := json.Unmarshal(body, &registration); err != nil {
		return nil, &RegistrationError{
			Endpoint:   registrationEndpoint,
			StatusCode: resp.StatusCode,
			Body:       bodyExcerpt(body),
			Err:        fmt.Errorf("invalid JSON in registration response: %w", err),
		}
	}

	if registration.ClientID == "" {
		return nil, &RegistrationError{
			Endpoint:   registrationEndpoint,
			StatusCode: resp.StatusCode,
			Body:       bodyExcerpt(body),
			Err:        fmt.Errorf("registration response missing client_id"),
		}
	}

	registration.RedirectURI = redirectURI
	return &registration, nil
}
