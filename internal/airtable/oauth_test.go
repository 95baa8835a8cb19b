package airtable

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizeURL(t *testing.T) {
	cfg := OAuthConfig{
		ClientID:    "client-1",
		RedirectURI: "https://app.example.com/callback",
	}

	raw := cfg.AuthorizeURL("state-abc", "challenge-xyz")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "client-1", q.Get("client_id"))
	assert.Equal(t, "https://app.example.com/callback", q.Get("redirect_uri"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "state-abc", q.Get("state"))
	assert.Equal(t, "challenge-xyz", q.Get("code_challenge"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.Equal(t, DefaultScope, q.Get("scope"))
}

func TestExchange(t *testing.T) {
	var gotForm url.Values
	var gotUser, gotPass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "at",
			"refresh_token": "rt",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	}))
	defer srv.Close()

	cfg := OAuthConfig{
		ClientID:      "client-1",
		ClientSecret:  "shh",
		RedirectURI:   "https://app.example.com/callback",
		TokenEndpoint: srv.URL,
	}

	tok, err := cfg.Exchange(context.Background(), "code-123", "verifier-456")
	require.NoError(t, err)
	assert.Equal(t, "at", tok.AccessToken)
	assert.Equal(t, "rt", tok.RefreshToken)

	assert.Equal(t, "client-1", gotUser)
	assert.Equal(t, "shh", gotPass)
	assert.Equal(t, "authorization_code", gotForm.Get("grant_type"))
	assert.Equal(t, "code-123", gotForm.Get("code"))
	assert.Equal(t, "verifier-456", gotForm.Get("code_verifier"))
	assert.Equal(t, "https://app.example.com/callback", gotForm.Get("redirect_uri"))
}

func TestExchangeRejectedCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	cfg := OAuthConfig{ClientID: "client-1", TokenEndpoint: srv.URL}
	_, err := cfg.Exchange(context.Background(), "bad", "verifier")
	require.Error(t, err)
	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusBadRequest, ae.StatusCode)
	assert.False(t, IsTemporary(err))
}
