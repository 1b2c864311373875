// Package token mints and verifies the JWT pair issued at successful
// authentication: a short-lived access token and a long-lived refresh
// token, signed with separate HS256 secrets.
package token

import (
	"errors"
	"strings"
	"time"

	"github.com/carelink/apiserver/types"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token fails verification for
	// any reason (bad signature, expiry, wrong kind, missing subject).
	ErrInvalidToken = errors.New("invalid token")
)

// Pair bundles the two tokens returned to the client.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// AccessClaims are the claims carried by access tokens. Refresh tokens
// carry registered claims plus the subject only.
type AccessClaims struct {
	jwt.RegisteredClaims
	Email string     `json:"email"`
	Role  types.Role `json:"role"`
}

// Service signs and verifies token pairs.
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// Issue mints a fresh pair scoped to the given user.
func (s *Service) Issue(user types.User) (Pair, error) {
	now := time.Now()

	accessClaims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
		Email: user.Email,
		Role:  user.Role,
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(s.accessSecret)
	if err != nil {
		return Pair{}, err
	}

	refreshClaims := jwt.RegisteredClaims{
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
	}
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(s.refreshSecret)
	if err != nil {
		return Pair{}, err
	}

	return Pair{Access: access, Refresh: refresh}, nil
}

// VerifyAccess parses an access token and returns its claims.
func (s *Service) VerifyAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.verify(tokenString, claims, s.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefresh parses a refresh token and returns the user ID it is
// scoped to.
func (s *Service) VerifyRefresh(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	if err := s.verify(tokenString, claims, s.refreshSecret); err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (s *Service) verify(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	subject, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(subject) == "" {
		return ErrInvalidToken
	}
	return nil
}
