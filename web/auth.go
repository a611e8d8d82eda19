package web

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "postbox-devserver"

var ErrInvalidToken = errors.New("invalid token")

// Claims is the dev backend's session token payload.
type Claims struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	gojwt.RegisteredClaims
}

// Signer issues and verifies HS256 session tokens.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *Signer) Issue(userId uuid.UUID, username string, avatar string) (string, error) {
	now := s.now()
	claims := Claims{
		Username: username,
		Avatar:   avatar,
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userId.String(),
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token for %s: %w", username, err)
	}
	return token, nil
}

func (s *Signer) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := gojwt.ParseWithClaims(token, claims,
		func(t *gojwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithIssuer(tokenIssuer),
		gojwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}
