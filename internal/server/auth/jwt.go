// Package auth issues and verifies signed session tokens and hashes
// account passwords.
package auth

import (
	"errors"
	"time"

	"github.com/StormRens/Fake-Twitter/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Identity is what a session token asserts about its bearer.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Claims carries the registered JWT claims plus the identity fields.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"id"`
	Username string `json:"username"`
}

// GenerateToken signs an HS256 token for identity that expires after validityDuration.
func GenerateToken(identity Identity, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID:   identity.ID,
		Username: identity.Username,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken checks the signature and expiry of tokenString and returns the
// embedded identity. Expired tokens yield common.ErrTokenExpired; every
// other failure, including a token without id or username, yields
// common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, common.ErrTokenExpired
		}
		return Identity{}, common.ErrInvalidToken
	}

	if !token.Valid {
		return Identity{}, common.ErrInvalidToken
	}

	if claims.UserID == "" || claims.Username == "" {
		return Identity{}, common.ErrInvalidToken
	}

	return Identity{ID: claims.UserID, Username: claims.Username}, nil
}

// Tokens binds the signing secret and token lifetime so callers only deal
// with identities.
type Tokens struct {
	secret   []byte
	validity time.Duration
}

func NewTokens(secret string, validity time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), validity: validity}
}

// Issue mints a session token for identity.
func (t *Tokens) Issue(identity Identity) (string, error) {
	return GenerateToken(identity, t.secret, t.validity)
}

// Verify returns the identity carried by token.
func (t *Tokens) Verify(token string) (Identity, error) {
	return ParseToken(token, t.secret)
}

// Validity is the lifetime of issued tokens; cookies use it as Max-Age.
func (t *Tokens) Validity() time.Duration {
	return t.validity
}
