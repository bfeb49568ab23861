package auth

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/antonvlk/emberline/internal/domain/enums"
)

var ErrUnauthorized = errors.New("unauthorized")

// Verifier validates access tokens issued by the external identity provider.
// This service never issues tokens; it only checks the signature and reads
// the subject and role claims.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

type Claims struct {
	Subject   string
	Role      enums.Role
	ExpiresAt time.Time
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		now:    time.Now,
	}
}

func (v *Verifier) Verify(raw string) (Claims, error) {
	if len(v.secret) == 0 {
		return Claims{}, ErrUnauthorized
	}
	if strings.TrimSpace(raw) == "" {
		return Claims{}, ErrUnauthorized
	}

	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(_ *jwt.Token) (interface{}, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(func() time.Time { return v.now() }),
	)
	if err != nil || token == nil || !token.Valid {
		return Claims{}, ErrUnauthorized
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return Claims{}, ErrUnauthorized
	}
	if claims.ExpiresAt == nil {
		return Claims{}, ErrUnauthorized
	}

	return Claims{
		Subject:   subject,
		Role:      enums.ParseRole(claims.Role),
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
