package utils

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the JWT claims issued by the backend.
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// ParseClaims decodes a JWT without verifying its signature. The signing key
// stays with the backend, which re-validates every request it receives.
func ParseClaims(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, claims)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if token.Method == jwt.SigningMethodNone {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}

	return claims, nil
}
