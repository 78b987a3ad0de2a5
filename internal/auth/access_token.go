// Package auth verifies user access tokens issued by the login service
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the role claim carried by an access token
type Role int

const (
	RoleLearner Role = 1
	RoleTeacher Role = 2
)

// ErrInvalidAccessToken is returned for malformed, forged or expired access tokens
var ErrInvalidAccessToken = errors.New("invalid or expired access token")

// accessClaims is the payload of an access token
type accessClaims struct {
	UserID int64  `json:"user_id"`
	Role   Role   `json:"role"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// AccessTokens signs and validates HS256 user access tokens
type AccessTokens struct {
	secret []byte
	expiry time.Duration
}

// NewAccessTokens creates a new access token validator
func NewAccessTokens(secret string, expiry time.Duration) *AccessTokens {
	return &AccessTokens{
		secret: []byte(secret),
		expiry: expiry,
	}
}

// Generate signs an access token for a user
func (a *AccessTokens) Generate(userID int64, role Role) (string, error) {
	now := time.Now()
	claims := accessClaims{
		UserID: userID,
		Role:   role,
		Type:   "access",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.expiry)),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return tokenString, nil
}

// Validate checks an access token and returns the user id and role it carries
func (a *AccessTokens) Validate(tokenString string) (int64, Role, error) {
	var claims accessClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrInvalidAccessToken, err)
	}

	if claims.Type != "access" || claims.UserID == 0 {
		return 0, 0, ErrInvalidAccessToken
	}

	return claims.UserID, claims.Role, nil
}
