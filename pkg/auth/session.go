package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oullin/profilesync/pkg/portal"
)

const (
	LoginPath   = "/api/login"
	RefreshPath = "/api/token/refresh"
	LogoutPath  = "/api/logout"

	refreshLeeway = 30 * time.Second
)

var ErrSessionExpired = portal.ErrSessionExpired

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Session holds the bearer token of one signed-in account and implements
// portal.TokenSource. The refresh token travels in the client cookie jar
// and, when the backend also returns it in the body, in the refresh request.
type Session struct {
	mu           sync.Mutex
	client       *portal.Client
	credentials  Credentials
	token        string
	refreshToken string
	now          func() time.Time
}

func NewSession(client *portal.Client, credentials Credentials) *Session {
	return &Session{
		client:      client,
		credentials: credentials,
		now:         time.Now,
	}
}

func (s *Session) Login(ctx context.Context) error {
	var pair tokenPair

	err := s.client.PostJSON(ctx, LoginPath, s.credentials, &pair, portal.Anonymous())
	if err != nil {
		return fmt.Errorf("auth: login: %w", err)
	}

	if pair.Token == "" {
		return errors.New("auth: login returned no token")
	}

	s.mu.Lock()
	s.token = pair.Token
	s.refreshToken = pair.RefreshToken
	s.mu.Unlock()

	slog.Info("signed in", "email", s.credentials.Email)

	return nil
}

// Token returns the current bearer token, signing in first when the session
// has none yet and refreshing ahead of an imminent expiry.
func (s *Session) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token == "" {
		if err := s.Login(ctx); err != nil {
			return "", err
		}

		return s.current(), nil
	}

	if claims, err := ParseClaims(token); err == nil && claims.ExpiresWithin(s.now(), refreshLeeway) {
		if fresh, err := s.Refresh(ctx); err == nil {
			return fresh, nil
		}
	}

	return token, nil
}

func (s *Session) Refresh(ctx context.Context) (string, error) {
	s.mu.Lock()
	body := map[string]string{}
	if s.refreshToken != "" {
		body["refresh_token"] = s.refreshToken
	}
	s.mu.Unlock()

	var pair tokenPair

	if err := s.client.PostJSON(ctx, RefreshPath, body, &pair, portal.Anonymous()); err != nil {
		s.clear()

		return "", fmt.Errorf("auth: refresh: %w", err)
	}

	if pair.Token == "" {
		s.clear()

		return "", errors.New("auth: refresh returned no token")
	}

	s.mu.Lock()
	s.token = pair.Token
	if pair.RefreshToken != "" {
		s.refreshToken = pair.RefreshToken
	}
	s.mu.Unlock()

	return pair.Token, nil
}

// Logout asks the backend to revoke the refresh token and forgets the
// session locally even when the call fails.
func (s *Session) Logout(ctx context.Context) error {
	token := s.current()
	if token == "" {
		return nil
	}

	defer s.clear()

	err := s.client.PostJSON(ctx, LogoutPath, map[string]string{}, nil,
		portal.Anonymous(),
		portal.WithHeader(portal.AuthorizationHeader, "Bearer "+token),
	)

	if err != nil {
		return fmt.Errorf("auth: logout: %w", err)
	}

	return nil
}

func (s *Session) Claims() (*Claims, error) {
	return ParseClaims(s.current())
}

func (s *Session) Authenticated() bool {
	return s.current() != ""
}

func (s *Session) current() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.token
}

func (s *Session) clear() {
	s.mu.Lock()
	s.token = ""
	s.refreshToken = ""
	s.mu.Unlock()
}
