// Package token issues and resolves opaque reference tokens naming lesson and reference records.
//
// A token is a compact HS256 JWS carrying the record identifier in "sub" and
// its issuance time in "iat". It is URL safe and needs no server side session.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pronounce/backend/internal/models"
)

// DefaultMaxAge is how long a token stays valid after issuance
const DefaultMaxAge = time.Hour

// RecordLookup finds records by identifier.
// Both methods return models.ErrNotFound when no record matches.
type RecordLookup interface {
	GetLessonRecordByID(ctx context.Context, id string) (*models.LessonRecord, error)
	GetReferenceRecordByID(ctx context.Context, id string) (*models.ReferenceRecord, error)
}

// Codec signs and verifies reference tokens with a server held secret
type Codec struct {
	secret []byte
	now    func() time.Time
}

// NewCodec creates a new token codec
func NewCodec(secret string) *Codec {
	return &Codec{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Issue returns a signed token naming the record identifier
func (c *Codec) Issue(recordID string) (string, error) {
	if recordID == "" {
		return "", fmt.Errorf("record id is required")
	}

	claims := jwt.RegisteredClaims{
		Subject:  recordID,
		IssuedAt: jwt.NewNumericDate(c.now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign record token: %w", err)
	}

	return tokenString, nil
}

// Verify checks the signature and age of a token and returns the record identifier.
// Every failure is reported as models.ErrInvalidToken.
func (c *Codec) Verify(tokenString string, maxAge time.Duration) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return "", models.ErrInvalidToken
	}

	if claims.IssuedAt == nil || claims.Subject == "" {
		return "", models.ErrInvalidToken
	}

	age := c.now().Sub(claims.IssuedAt.Time)
	if age < 0 || age > maxAge {
		return "", models.ErrInvalidToken
	}

	return claims.Subject, nil
}

// Resolve verifies a token and looks up the record it names, lesson records first.
//
// It returns models.ErrInvalidToken for forged or expired tokens and
// models.ErrRecordNotFound when the identifier matches neither record type.
func (c *Codec) Resolve(ctx context.Context, tokenString string, maxAge time.Duration, lookup RecordLookup) (models.ResolvedRecord, error) {
	recordID, err := c.Verify(tokenString, maxAge)
	if err != nil {
		return models.ResolvedRecord{}, err
	}

	lesson, err := lookup.GetLessonRecordByID(ctx, recordID)
	if err == nil {
		return models.ResolvedRecord{Kind: models.RecordKindLesson, Lesson: lesson}, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return models.ResolvedRecord{}, fmt.Errorf("failed to get lesson record: %w", err)
	}

	reference, err := lookup.GetReferenceRecordByID(ctx, recordID)
	if err == nil {
		return models.ResolvedRecord{Kind: models.RecordKindReference, Reference: reference}, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return models.ResolvedRecord{}, fmt.Errorf("failed to get reference record: %w", err)
	}

	return models.ResolvedRecord{Kind: models.RecordKindNone}, models.ErrRecordNotFound
}
