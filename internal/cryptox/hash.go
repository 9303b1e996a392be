// Package cryptox hashes short-lived verification codes. Vault content is
// encrypted on the device and never passes through here.
package cryptox

import (
	"crypto/subtle"

	"github.com/BijjaSagar/vashihat-nama/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	saltSize = 16
	keySize  = 32
)

const (
	hashTime    = 1
	hashMemory  = 4 * 1024 // KiB
	hashThreads = 1
)

// DeriveCodeHash stretches code with argon2id using 4 MiB per call, so
// hashing stays affordable on unauthenticated request paths.
func DeriveCodeHash(code string, salt []byte) []byte {
	return argon2.IDKey([]byte(code), salt, hashTime, hashMemory, hashThreads, keySize)
}

// HashCode returns a fresh random salt and the hash of code under it.
func HashCode(code string) (salt, hash []byte) {
	salt = common.GenerateRandByteArray(saltSize)
	return salt, DeriveCodeHash(code, salt)
}

// CheckCode reports whether candidate hashes to hash under salt.
func CheckCode(candidate string, salt, hash []byte) bool {
	if len(salt) == 0 || len(hash) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(DeriveCodeHash(candidate, salt), hash) == 1
}
