// Package token signs and verifies the bearer credential handed out at login.
// The credential is an HS256 JWT whose "otp" claim carries the team code.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/segmentio/ksuid"
)

const issuer = "codexhunt"

var ErrInvalid = errors.New("invalid token")

type claims struct {
	OTP int `json:"otp"`
	jwt.RegisteredClaims
}

type Signer struct {
	key []byte
	ttl time.Duration
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{key: []byte(secret), ttl: ttl}
}

// Sign issues a token for team code, valid for the signer's TTL from now.
func (s *Signer) Sign(code string, now time.Time) (string, error) {
	otp, err := strconv.Atoi(code)
	if err != nil {
		return "", fmt.Errorf("team code %q is not numeric: %w", code, err)
	}

	c := claims{
		OTP: otp,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ID:        ksuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.key)
}

// Verify checks the signature and expiry of raw and returns the team code it
// carries.
func (s *Signer) Verify(raw string, now time.Time) (string, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.OTP <= 0 {
		return "", ErrInvalid
	}
	return strconv.Itoa(c.OTP), nil
}
