package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"formbridge/internal/airtable"
	"formbridge/internal/auth"
	"formbridge/internal/models"
	"formbridge/internal/pkce"
	"formbridge/internal/repository"
)

// ClientFactory builds an Airtable client for one access token.
type ClientFactory func(accessToken string) *airtable.Client

type AuthService struct {
	users     *repository.UserRepo
	pkce      pkce.Store
	oauth     airtable.OAuthConfig
	newClient ClientFactory
	jwtSecret string
}

func NewAuthService(users *repository.UserRepo, store pkce.Store, oauth airtable.OAuthConfig, newClient ClientFactory, jwtSecret string) *AuthService {
	return &AuthService{
		users:     users,
		pkce:      store,
		oauth:     oauth,
		newClient: newClient,
		jwtSecret: jwtSecret,
	}
}

type AuthorizationURL struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// AuthorizationURL issues a fresh PKCE challenge and returns the URL the
// browser should be sent to. The state is held server-side and consumed
// exactly once by the callback.
func (s *AuthService) AuthorizationURL(ctx context.Context) (*AuthorizationURL, error) {
	if s.oauth.ClientID == "" || s.oauth.RedirectURI == "" {
		return nil, errors.New("oauth not configured")
	}
	ch, err := s.pkce.Issue(ctx)
	if err != nil {
		return nil, err
	}
	return &AuthorizationURL{
		URL:   s.oauth.AuthorizeURL(ch.State, ch.CodeChallenge),
		State: ch.State,
	}, nil
}

type AuthResult struct {
	Token string              `json:"token"`
	User  models.UserResponse `json:"user"`
}

// Callback completes the login: consumes the single-use state, exchanges
// the code, resolves the Airtable identity, and upserts the local user with
// the fresh tokens.
func (s *AuthService) Callback(ctx context.Context, code, state string) (*AuthResult, error) {
	verifier, err := s.pkce.Consume(ctx, state)
	if errors.Is(err, pkce.ErrStateNotFound) {
		return nil, validationf("invalid state or expired session")
	}
	if err != nil {
		return nil, err
	}

	tok, err := s.oauth.Exchange(ctx, code, verifier)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	info, err := s.newClient(tok.AccessToken).WhoAmI(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}

	now := time.Now().UTC()
	user, err := s.users.FindByAirtableUserID(ctx, info.ID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &models.User{
			AirtableUserID: info.ID,
			Email:          info.Email,
			Name:           info.Name,
		}
	}
	user.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		user.RefreshToken = tok.RefreshToken
	}
	user.LastLogin = now
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, err
	}

	token, err := auth.GenerateToken(s.jwtSecret, user.ID.Hex(), user.AirtableUserID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user.ToResponse()}, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*models.UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	resp := user.ToResponse()
	return &resp, nil
}
