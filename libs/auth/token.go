package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is what the booking backend puts in patient tokens. Older tokens
// carry the user id only in "id"; newer ones may also set "sub".
type Claims struct {
	UserID string `json:"id,omitempty"`
	jwt.RegisteredClaims
}

// PatientID returns the patient id, preferring "id" over "sub".
func (c *Claims) PatientID() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.RegisteredClaims.Subject
}

// ParseNoVerify decodes claims without checking the signature. The portal
// only uses this to learn which user a backend-issued token belongs to; the
// backend still verifies every request.
func ParseNoVerify(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time) {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

func ParseAndVerifyHS256(token, secret string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(strings.TrimSpace(token), &claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// UserID extracts the patient id from token, verifying it when secret is set.
func UserID(token, secret string) (string, error) {
	var (
		claims *Claims
		err    error
	)
	if secret != "" {
		claims, err = ParseAndVerifyHS256(token, secret)
	} else {
		claims, err = ParseNoVerify(token)
	}
	if err != nil {
		return "", err
	}
	id := claims.PatientID()
	if id == "" {
		return "", ErrInvalidToken
	}
	return id, nil
}

func SignHS256(claims Claims, secret string) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
