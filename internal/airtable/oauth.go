package airtable

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultAuthorizeEndpoint = "https://airtable.com/oauth2/v1/authorize"
	defaultTokenEndpoint     = "https://airtable.com/oauth2/v1/token"
)

// DefaultScope covers everything the form builder needs: record reads and
// writes, base schema, webhook management, and the user's email.
const DefaultScope = "data.records:read data.records:write schema.bases:read webhook:manage user.email:read"

// OAuthConfig drives the authorization-code-with-PKCE flow against
// Airtable's OAuth endpoints.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// Endpoint overrides, used by tests. Empty means the Airtable defaults.
	AuthorizeEndpoint string
	TokenEndpoint     string

	HTTPClient *http.Client
}

// AuthorizeURL builds the URL the browser is sent to, binding the attempt
// to state and the S256 code challenge.
func (c OAuthConfig) AuthorizeURL(state, codeChallenge string) string {
	endpoint := c.AuthorizeEndpoint
	if endpoint == "" {
		endpoint = defaultAuthorizeEndpoint
	}
	q := url.Values{}
	q.Set("client_id", c.ClientID)
	q.Set("redirect_uri", c.RedirectURI)
	q.Set("response_type", "code")
	q.Set("scope", DefaultScope)
	q.Set("state", state)
	q.Set("code_challenge", codeChallenge)
	q.Set("code_challenge_method", "S256")
	return endpoint + "?" + q.Encode()
}

// Token is the token endpoint's response.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
}

// Exchange trades an authorization code plus the stored code verifier for
// tokens. The client secret rides in basic auth, per Airtable's token
// endpoint contract.
func (c OAuthConfig) Exchange(ctx context.Context, code, codeVerifier string) (*Token, error) {
	endpoint := c.TokenEndpoint
	if endpoint == "" {
		endpoint = defaultTokenEndpoint
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", c.ClientID)
	form.Set("code", code)
	form.Set("redirect_uri", c.RedirectURI)
	form.Set("code_verifier", codeVerifier)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &Error{Op: "token exchange", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.ClientID, c.ClientSecret)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &Error{Op: "token exchange", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &Error{Op: "token exchange", StatusCode: resp.StatusCode, Body: string(data)}
	}

	var tok Token
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, &Error{Op: "token exchange", Err: err}
	}
	return &tok, nil
}
