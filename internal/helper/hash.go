package helper

import (
	"crypto/sha1" //nolint:gosec // feedback hashes stored on wiki pages are SHA-1
	"encoding/hex"
	"strings"
)

// HashSHA1 fingerprints the concatenation of input (in order, without a
// delimiter) and returns the digest as lowercase hexadecimal.
//
// HashSHA1("ab", "c") and HashSHA1("a", "bc") are equal; HashSHA1("a", "b")
// and HashSHA1("b", "a") are not.
func HashSHA1(input ...string) string {
	sum := sha1.Sum([]byte(strings.Join(input, ""))) //nolint:gosec // not used for security
	return hex.EncodeToString(sum[:])
}
