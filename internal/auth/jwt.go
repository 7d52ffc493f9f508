package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ScopeInspect grants read and clear access to stored webhook events.
const ScopeInspect = "webhooks:inspect"

var ErrMissingScope = errors.New("token lacks the webhooks:inspect scope")

type Claims struct {
	Operator string
	Scope    string
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope"`
}

func GenerateToken(operator string, secret string, expiry time.Duration) (string, error) {
	if operator == "" {
		return "", fmt.Errorf("GenerateToken: operator is required")
	}
	now := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   operator,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Scope: ScopeInspect,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("GenerateToken: %w", err)
	}
	return signed, nil
}

func ValidateToken(tokenString string, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("ValidateToken: %w", err)
	}

	tc, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("ValidateToken: invalid token claims")
	}
	if tc.Scope != ScopeInspect {
		return nil, fmt.Errorf("ValidateToken: %w", ErrMissingScope)
	}
	if tc.Subject == "" {
		return nil, fmt.Errorf("ValidateToken: missing subject")
	}

	return &Claims{
		Operator: tc.Subject,
		Scope:    tc.Scope,
	}, nil
}
