// Package auth issues and verifies bearer tokens and hashes passwords.
package auth

import (
	"errors"
	"time"

	"smartpos/internal/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types carried in the "type" claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims are the signed token payload: sub, exp, iat and type.
type Claims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// UserID returns the user id the token was issued for.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Issue signs an HS256 token of the given type for subject.
func (s *TokenService) Issue(subject, tokenType string) (string, error) {
	ttl := s.accessTTL
	if tokenType == TypeRefresh {
		ttl = s.refreshTTL
	}
	now := s.now()
	claims := Claims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", apperror.Wrap(apperror.KindInternal, err, "failed to sign token")
	}
	return signed, nil
}

func (s *TokenService) IssuePair(subject string) (*TokenPair, error) {
	access, err := s.Issue(subject, TypeAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := s.Issue(subject, TypeRefresh)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

// Parse verifies signature, expiry and type. Every failure is Unauthenticated.
func (s *TokenService) Parse(token, expectedType string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.Unauthenticated("token expired")
		}
		return nil, apperror.Unauthenticated("could not validate credentials")
	}
	if claims.Type != expectedType {
		return nil, apperror.Unauthenticated("invalid token type")
	}
	if _, err := claims.UserID(); err != nil {
		return nil, apperror.Unauthenticated("could not validate credentials")
	}
	return claims, nil
}
