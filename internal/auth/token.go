// Package auth — session token issuance and verification.
//
// SESSION MODEL:
// Sessions are stateless. A login issues a signed JWT carrying the user's
// id, email, and username; nothing is persisted server-side. Validity is
// purely cryptographic plus expiry, which also means a token cannot be
// revoked before it expires — logout only deletes the client's cookie.
//
// The token travels in an HttpOnly cookie named "token", so JavaScript
// can never read it (XSS protection) and the browser attaches it to every
// request automatically.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is how long an issued session token stays valid.
const TokenTTL = 24 * time.Hour

const issuer = "learnhub"

// Claims is the signed assertion embedded in every session token.
// UserID/Email/Username are the three facts a request handler needs
// without a database round-trip; everything else lives in
// jwt.RegisteredClaims (expiry, issued-at, issuer).
type Claims struct {
	UserID   string `json:"userID"`
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies session tokens with a server-held
// HMAC secret. The same secret must be used for both operations.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production;
// anything under 16 characters is rejected outright.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret), ttl: TokenTTL}, nil
}

// Generate creates and signs a session token for the given user.
//
// Signing algorithm: HS256 (HMAC-SHA256) — symmetric, same key signs and
// verifies. Fine for a single-server deployment; RS256 only matters once
// separate services need to verify without the signing key.
func (s *TokenService) Generate(userID, email, username string) (string, error) {
	return s.generateWithExpiry(userID, email, username, s.ttl)
}

// generateWithExpiry issues a token with the given lifetime. Generate
// passes the service TTL; tests pass a negative duration to mint an
// already-expired token.
func (s *TokenService) generateWithExpiry(userID, email, username string, d time.Duration) (string, error) {
	now := time.Now()

	c := Claims{
		UserID:   userID,
		Email:    email,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token string, returning its claims.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired
//   - Issuer matches (prevents tokens minted by other apps with a
//     shared secret from being accepted)
//   - Algorithm is HS256 — jwt.WithValidMethods closes the classic
//     algorithm-confusion hole where an attacker picks "none"
func (s *TokenService) Validate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}
	if c.UserID == "" {
		return nil, fmt.Errorf("auth: token has no user ID")
	}

	return c, nil
}
