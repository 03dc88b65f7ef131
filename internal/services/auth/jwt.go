package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid access token")

// Service validates externally issued HS256 access tokens. Token issuance
// lives outside this backend; only verification happens here.
type Service struct {
	secret []byte
}

func NewService(secret string) *Service {
	return &Service{secret: []byte(secret)}
}

// ValidateAccessToken verifies the signature and expiry and returns the
// caller identity from the subject claim.
func (s *Service) ValidateAccessToken(_ context.Context, token string) (Identity, error) {
	if strings.TrimSpace(token) == "" || len(s.secret) == 0 {
		return Identity{}, ErrInvalidToken
	}

	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return Identity{}, ErrInvalidToken
	}

	return Identity{UserID: claims.Subject}, nil
}
