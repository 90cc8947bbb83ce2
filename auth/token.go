package auth

import (
	"strings"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// TokenResult holds the tokens returned from an OAuth2 token endpoint.
type TokenResult struct {
	AccessToken string `json:"access_token"`
	// RefreshToken may be empty.
	RefreshToken string `json:"refresh_token,omitempty"`
	// TokenType is typically "Bearer".
	TokenType string `json:"token_type,omitempty"`
	// ExpiresAt is zero when the endpoint did not report a lifetime.
	ExpiresAt time.Time `json:"expires_at,omitzero"`
	Scopes    []string  `json:"scopes,omitempty"`
}

// Expired reports whether the token's lifetime has passed, allowing leeway.
func (t *TokenResult) Expired(leeway time.Duration) bool {
	if t == nil || t.AccessToken == "" {
		return true
	}
	if t.ExpiresAt.IsZero() {
		return false
	}
	return !time.Now().Add(leeway).Before(t.ExpiresAt)
}

// TokenExpiry returns the exp claim of a JWT. The signature is not checked.
// ok is false when raw is not a JWT or carries no exp claim.
func TokenExpiry(raw string) (exp time.Time, ok bool) {
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
	if strings.Count(raw, ".") != 2 {
		return time.Time{}, false
	}

	claims := gojwt.MapClaims{}
	if _, _, err := gojwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	date, err := claims.GetExpirationTime()
	if err != nil || date == nil {
		return time.Time{}, false
	}
	return date.Time, true
}

// TokenExpired reports whether raw is a JWT whose exp claim is within leeway
// of now or already past. Opaque tokens are never reported as expired.
func TokenExpired(raw string, leeway time.Duration) bool {
	exp, ok := TokenExpiry(raw)
	if !ok {
		return false
	}
	return !time.Now().Add(leeway).Before(exp)
}
