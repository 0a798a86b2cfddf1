package cryptox

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestDeriveMasterKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt")

	key1 := DeriveMasterKey(password, salt)
	key2 := DeriveMasterKey(password, salt)

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}

	expectedHex := "34f7a1c64df63ab1ad5b5ee06e64db5713b35f81839823304db63e8e5e6a6a39"
	if hex.EncodeToString(key1) != expectedHex {
		t.Errorf("expected %s, got %s", expectedHex, hex.EncodeToString(key1))
	}
}

func TestDeriveMasterKey_DifferentInputs(t *testing.T) {
	password := []byte("secret-password")
	salt1 := []byte("salt-1")
	salt2 := []byte("salt-2")

	key1 := DeriveMasterKey(password, salt1)
	key2 := DeriveMasterKey(password, salt2)

	if bytes.Equal(key1, key2) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestVerifierFor_MatchesManualDerivation(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt")

	want := MakeVerifier(DeriveMasterKey(password, salt))
	got := VerifierFor(password, salt)

	if !bytes.Equal(want, got) {
		t.Fatalf("verifier mismatch: want %x, got %x", want, got)
	}
	if len(got) != 32 {
		t.Fatalf("expected 32-byte verifier, got %d", len(got))
	}
}

func TestNewCredentials_FreshSaltEachTime(t *testing.T) {
	password := []byte("pw")

	salt1, verifier1 := NewCredentials(password)
	salt2, verifier2 := NewCredentials(password)

	if len(salt1) != SaltSize || len(salt2) != SaltSize {
		t.Fatalf("unexpected salt sizes %d, %d", len(salt1), len(salt2))
	}
	if bytes.Equal(salt1, salt2) {
		t.Fatalf("two salts must differ")
	}
	if bytes.Equal(verifier1, verifier2) {
		t.Fatalf("verifiers under different salts must differ")
	}
	if !bytes.Equal(verifier1, VerifierFor(password, salt1)) {
		t.Fatalf("verifier must be reproducible from the returned salt")
	}
}
