// Package crypto provides password hashing and verification.
package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// LegacyPrefix marks unsalted sha256 hex digests imported from the old
// logbook database. They are replaced with bcrypt on the next login.
const LegacyPrefix = "sha256:"

// HashPasswordAsBcrypt generates a bcrypt hash of the given password.
func HashPasswordAsBcrypt(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckPasswordHash verifies a password against a bcrypt or legacy hash.
func CheckPasswordHash(hash, password string) bool {
	if IsLegacyHash(hash) {
		return checkLegacy(strings.TrimPrefix(hash, LegacyPrefix), password)
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// IsLegacyHash reports whether hash needs an upgrade to bcrypt.
func IsLegacyHash(hash string) bool {
	return strings.HasPrefix(hash, LegacyPrefix)
}

// LegacyHash returns the marked sha256 digest of password.
func LegacyHash(password string) string {
	sum := sha256.Sum256([]byte(password))
	return LegacyPrefix + hex.EncodeToString(sum[:])
}

func checkLegacy(digest, password string) bool {
	sum := sha256.Sum256([]byte(password))
	want := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(strings.ToLower(digest)), []byte(want)) == 1
}

// NormalizeAnswer folds a security answer so that case and surrounding
// whitespace do not matter.
func NormalizeAnswer(answer string) string {
	return strings.ToLower(strings.Join(strings.Fields(answer), " "))
}
