package session

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of an access token issued by the backend.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id,omitempty"`
}

// Principal is the id the backend scopes private data to.
func (c *Claims) Principal() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

// ExpiredAt reports whether the token is expired at now. A token without
// an exp claim never expires.
func (c *Claims) ExpiredAt(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(c.ExpiresAt.Time)
}

// ParseClaims decodes token without verifying its signature. The client
// holds no signing key; it only needs expiry and principal.
func ParseClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	return claims, nil
}
