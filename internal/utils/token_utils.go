package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/valutatrade_hub/internal/apperrors"
	"github.com/golang-jwt/jwt/v5"
)

// GenerateJWT signs an HS256 token for userID valid from issuedAt for expiry.
// It returns the token and its expiry time.
func GenerateJWT(userID, secret string, issuedAt time.Time, expiry time.Duration, issuer string) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, fmt.Errorf("%w: JWT secret is empty", apperrors.ErrConfiguration)
	}
	expiresAt := issuedAt.Add(expiry)
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		NotBefore: jwt.NewNumericDate(issuedAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseAndValidateJWT checks the signature, the standard time claims and,
// when issuer is not empty, the issuer. Every failure matches apperrors.ErrUnauthorized.
func ParseAndValidateJWT(tokenString, secret, issuer string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}

	parserOpts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, parserOpts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, jwt.ErrTokenExpired)
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%w: invalid token", apperrors.ErrUnauthorized)
	}
	return claims, nil
}
