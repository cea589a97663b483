package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Claims are the fields the backend puts in its access tokens.
type Claims struct {
	Username string `json:"username"`
	UserID   any    `json:"id,omitempty"`
	jwt.RegisteredClaims
}

// ParseClaims reads the claims of an access token without verifying its
// signature. The backend keeps the signing key; the client only needs to
// know who it is and when the token expires.
func ParseClaims(token string) (*Claims, error) {
	if token == "" {
		return nil, errors.New("auth: empty token")
	}

	claims := &Claims{}

	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("auth: parse token: %w", err)
	}

	return claims, nil
}

// OwnerID returns the numeric user id carried by the token, or 0.
func (c *Claims) OwnerID() int {
	if c == nil {
		return 0
	}

	switch v := c.UserID.(type) {
	case float64:
		return int(v)
	case string:
		id, _ := strconv.Atoi(v)
		return id
	}

	if c.Subject != "" {
		id, _ := strconv.Atoi(c.Subject)
		return id
	}

	return 0
}

// ExpiresWithin reports whether the token expires in less than d.
func (c *Claims) ExpiresWithin(now time.Time, d time.Duration) bool {
	if c == nil || c.ExpiresAt == nil {
		return false
	}

	return c.ExpiresAt.Time.Before(now.Add(d))
}
