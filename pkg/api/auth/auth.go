// Package auth implements JWT issuance and validation for the operator API.
//
// Emporium runs with a single operator account configured at init time, so
// tokens carry only the operator username. Tokens are signed with HS256 using
// the secret from the server configuration.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Sentinel errors returned by token validation.
var (
	// ErrInvalidToken is returned when a token fails signature or claim checks.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a token is well-formed but expired.
	ErrExpiredToken = errors.New("token has expired")
)

// minSecretLength is the shortest accepted signing secret. Anything shorter
// than 32 bytes is too weak for HS256.
const minSecretLength = 32

// issuer is the iss claim stamped on every token this service signs.
const issuer = "emporium"

// Claims are the JWT claims carried by an operator token.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Token is an issued access token with its expiry metadata.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"` // seconds
	ExpiresAt   time.Time `json:"expires_at"`
}

// JWTService issues and validates operator tokens.
type JWTService struct {
	secret []byte
	expiry time.Duration
}

// NewJWTService creates a token service signing with the given secret.
//
// The secret must be at least 32 characters. A non-positive expiry falls back
// to 24 hours.
func NewJWTService(secret string, expiry time.Duration) (*JWTService, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters, got %d", minSecretLength, len(secret))
	}
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}

	return &JWTService{
		secret: []byte(secret),
		expiry: expiry,
	}, nil
}

// GenerateToken issues a signed token for the given operator username.
func (s *JWTService) GenerateToken(username string) (*Token, error) {
	now := time.Now()
	expiresAt := now.Add(s.expiry)

	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Token{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.expiry.Seconds()),
		ExpiresAt:   expiresAt,
	}, nil
}

// ValidateToken parses and verifies a token string, returning its claims.
//
// Returns ErrExpiredToken for expired tokens and ErrInvalidToken for
// everything else that fails verification.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Username == "" {
		return nil, fmt.Errorf("%w: missing username claim", ErrInvalidToken)
	}

	return claims, nil
}
