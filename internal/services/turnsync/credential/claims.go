package credential

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/louisbranch/turnsync/internal/platform/errors"
)

// accessClaims mirrors the claims the authority signs into access tokens.
type accessClaims struct {
	jwt.RegisteredClaims
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// Claims are the client-visible fields of an access token.
type Claims struct {
	UserID    int64
	Username  string
	ExpiresAt time.Time
}

// ParseClaims reads an access token without verifying its signature. The
// client never holds the signing key; the authority remains the verifier.
func ParseClaims(token string) (Claims, error) {
	var parsed accessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &parsed); err != nil {
		return Claims{}, apperrors.Wrap(apperrors.CodeUnauthorized, "parse access token", err)
	}
	claims := Claims{UserID: parsed.UserID, Username: parsed.Username}
	if parsed.ExpiresAt != nil {
		claims.ExpiresAt = parsed.ExpiresAt.Time.UTC()
	}
	return claims, nil
}

// expiresWithin reports whether token expires before now+skew. Tokens that
// cannot be parsed or carry no exp are treated as fresh; the authority's 401
// covers them.
func expiresWithin(token string, now time.Time, skew time.Duration) bool {
	claims, err := ParseClaims(token)
	if err != nil || claims.ExpiresAt.IsZero() {
		return false
	}
	return !claims.ExpiresAt.After(now.Add(skew))
}
