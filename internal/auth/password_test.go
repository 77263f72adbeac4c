package auth

import "testing"

func TestHashIsSalted(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher()

	h1, err := h.Hash("Secret1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	h2, err := h.Hash("Secret1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	if h1 == h2 {
		t.Fatal("two hashes of the same password are identical; salt missing")
	}
	if !h.Verify("Secret1", h1) || !h.Verify("Secret1", h2) {
		t.Fatal("hash does not verify against its own password")
	}
}

func TestVerifyRejectsWrongPassword(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher()

	hash, err := h.Hash("Secret1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	if h.Verify("secret1", hash) {
		t.Error("Verify accepted wrong case")
	}
	if h.Verify("", hash) {
		t.Error("Verify accepted empty password")
	}
	if h.Verify("Secret1 ", hash) {
		t.Error("Verify accepted trailing space")
	}
}

func TestHashNeverStoresPlaintext(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher()
	hash, err := h.Hash("Secret1")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if hash == "Secret1" {
		t.Fatal("hash equals plaintext")
	}
}
