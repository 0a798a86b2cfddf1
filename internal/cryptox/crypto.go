// Package cryptox derives the credentials sent during sign-up and sign-in.
// The password itself never leaves the client: it is stretched with argon2id
// against a per-user salt and only a hash of the result (the verifier) is
// transmitted.
package cryptox

import (
	"crypto/sha256"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"golang.org/x/crypto/argon2"
)

// SaltSize is the length of a freshly generated user salt.
const SaltSize = 32

func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}

func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// NewCredentials generates a salt and computes the verifier for password.
// The intermediate master key is wiped before returning.
func NewCredentials(password []byte) (salt, verifier []byte) {
	salt = common.GenerateRandByteArray(SaltSize)
	return salt, VerifierFor(password, salt)
}

// VerifierFor recomputes the verifier for password under an existing salt.
func VerifierFor(password, salt []byte) []byte {
	key := DeriveMasterKey(password, salt)
	defer common.WipeByteArray(key)
	return MakeVerifier(key)
}
