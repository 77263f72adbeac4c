package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueSessionAndParse(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer([]byte("super-secret"))

	tok, err := issuer.IssueSession("user-123", "admin")
	if err != nil {
		t.Fatalf("IssueSession error: %v", err)
	}

	claims, err := issuer.Parse(tok)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "user-123")
	}
	if claims.Role != "admin" {
		t.Errorf("Role = %q, want %q", claims.Role, "admin")
	}
	if claims.TokenType != TokenTypeSession {
		t.Errorf("TokenType = %q, want %q", claims.TokenType, TokenTypeSession)
	}

	wantExpiry := time.Now().Add(SessionTTL)
	if got := claims.ExpiresAt.Time; got.Before(wantExpiry.Add(-time.Minute)) || got.After(wantExpiry.Add(time.Minute)) {
		t.Errorf("expiry = %v, want ~%v", got, wantExpiry)
	}
}

func TestIssueResetCarriesVersion(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer([]byte("super-secret"))

	tok, err := issuer.IssueReset("user-9", 4)
	if err != nil {
		t.Fatalf("IssueReset error: %v", err)
	}

	claims, err := issuer.Parse(tok)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if claims.TokenType != TokenTypeReset {
		t.Errorf("TokenType = %q, want %q", claims.TokenType, TokenTypeReset)
	}
	if claims.TokenVersion != 4 {
		t.Errorf("TokenVersion = %d, want 4", claims.TokenVersion)
	}
}

func TestParseExpired(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")
	issuer := NewTokenIssuer(secret)

	expired := Claims{
		UserID:    "u1",
		TokenType: TokenTypeSession,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expired).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := issuer.Parse(tok); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("Parse expired = %v, want ErrExpiredToken", err)
	}
}

func TestParseRejectsBadTokens(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer([]byte("right-secret"))

	valid, err := issuer.IssueSession("u1", "user")
	if err != nil {
		t.Fatalf("IssueSession error: %v", err)
	}

	other := NewTokenIssuer([]byte("wrong-secret"))
	otherTok, err := other.IssueSession("u1", "user")
	if err != nil {
		t.Fatalf("IssueSession error: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.jwt"},
		{"empty", ""},
		{"wrong secret", otherTok},
		{"tampered", valid[:len(valid)-4] + "AAAA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := issuer.Parse(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Parse(%q) = %v, want ErrInvalidToken", tt.name, err)
			}
		})
	}
}

func TestParseRejectsUnsignedAlg(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer([]byte("secret"))

	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": "u1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := issuer.Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Parse none-alg = %v, want ErrInvalidToken", err)
	}
}
