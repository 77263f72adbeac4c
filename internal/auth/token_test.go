package auth

import (
	"encoding/hex"
	"testing"
)

func TestNewVerificationToken(t *testing.T) {
	t.Parallel()

	tok, err := NewVerificationToken()
	if err != nil {
		t.Fatalf("NewVerificationToken error: %v", err)
	}
	if len(tok) != 64 {
		t.Errorf("token length = %d, want 64", len(tok))
	}
	if _, err := hex.DecodeString(tok); err != nil {
		t.Errorf("token is not hex: %v", err)
	}
}

func TestNewVerificationTokenUniqueness(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		tok, err := NewVerificationToken()
		if err != nil {
			t.Fatalf("NewVerificationToken error: %v", err)
		}
		if seen[tok] {
			t.Fatalf("duplicate token after %d draws", i)
		}
		seen[tok] = true
	}
}
