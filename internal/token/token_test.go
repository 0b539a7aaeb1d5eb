package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var now = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func TestSignVerify(t *testing.T) {
	s := NewSigner("sekrit", time.Hour)

	raw, err := s.Sign("482913", now)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	code, err := s.Verify(raw, now.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if code != "482913" {
		t.Errorf("code = %q, want 482913", code)
	}
}

func TestVerifyRejects(t *testing.T) {
	s := NewSigner("sekrit", time.Hour)
	good, err := s.Sign("482913", now)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	other, err := NewSigner("different", time.Hour).Sign("482913", now)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"otp": 482913}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	tests := []struct {
		name string
		raw  string
		at   time.Time
	}{
		{"empty", "", now},
		{"garbage", "not-a-token", now},
		{"wrong key", other, now},
		{"expired", good, now.Add(2 * time.Hour)},
		{"alg none", none, now},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Verify(tt.raw, tt.at)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestSignRejectsNonNumericCode(t *testing.T) {
	if _, err := NewSigner("k", time.Hour).Sign("abc", now); err == nil {
		t.Fatal("expected error for non-numeric code")
	}
}
