package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// DefaultTokenLifetime is assumed when the token response omits expires_in.
const DefaultTokenLifetime = 3600 * time.Second

// tokenResponse is the JSON body of a successful token endpoint response.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

// ExchangeCode exchanges an authorization code for tokens using the PKCE
// verifier generated for the flow. clientSecret may be empty for public
// clients registered with the "none" auth method.
func (c *Client) ExchangeCode(ctx context.Context, tokenEndpoint, code, clientID, clientSecret, redirectURI, codeVerifier string) (*oauth2.Token, error) {
	data := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {clientID},
		"redirect_uri":  {redirectURI},
		"code_verifier": {codeVerifier},
	}
	if clientSecret != "" {
		data.Set("client_secret", clientSecret)
	}

	return c.postTokenRequest(ctx, tokenEndpoint, data)
}

// RefreshToken exchanges a refresh token for a new access token. Failures
// are reported as *RefreshError so callers can fall back to a fresh
// interactive authorization.
func (c *Client) RefreshToken(ctx context.Context, tokenEndpoint, refreshToken, clientID, clientSecret string) (*oauth2.Token, error) {
	data := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"client_id":     {clientID},
	}
	if clientSecret != "" {
		data.Set("client_secret", clientSecret)
	}

	token, err := c.postTokenRequest(ctx, tokenEndpoint, data)
	if err != nil {
		return nil, &RefreshError{Err: err}
	}
	return token, nil
}

// postTokenRequest POSTs a form-encoded grant to the token endpoint and
// parses the response into an oauth2.Token.
func (c *Client) postTokenRequest(ctx context.Context, tokenEndpoint string, data url.Values) (*oauth2.Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenEndpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, &TokenExchangeError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TokenExchangeError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TokenExchangeError{StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &TokenExchangeError{
			StatusCode: resp.StatusCode,
			Body:       bodyExcerpt(body),
		}
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, &TokenExchangeError{
			StatusCode: resp.StatusCode,
			Body:       bodyExcerpt(body),
			Err:        fmt.Errorf("invalid JSON in token response: %w", err),
		}
	}

	if tokenResp.AccessToken == "" {
		return nil, &TokenExchangeError{
			StatusCode: resp.StatusCode,
			Body:       bodyExcerpt(body),
			Err:        fmt.Errorf("token response missing access_token"),
		}
	}

	lifetime := DefaultTokenLifetime
	if tokenResp.ExpiresIn > 0 {
		lifetime = time.Duration(tokenResp.ExpiresIn) * time.Second
	}

	return &oauth2.Token{
		AccessToken:  tokenResp.AccessToken,
		TokenType:    tokenResp.TokenType,
		RefreshToken: tokenResp.RefreshToken,
		Expiry:       time.Now().Add(lifetime),
	}, nil
}
