package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters; keyLen matches the 64-byte digests already stored by
// the forum, saltLen gives a 128-bit salt.
const (
	scryptN = 16384
	scryptR = 8
	scryptP = 1
	keyLen  = 64
	saltLen = 16
)

// HashPassword returns "<hex-digest>.<hex-salt>".
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	hexSalt := hex.EncodeToString(salt)

	digest, err := derive(password, hexSalt)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(digest) + "." + hexSalt, nil
}

// ComparePassword reports whether password matches a value produced by
// HashPassword. Malformed stored values never match.
func ComparePassword(password, stored string) bool {
	hexDigest, salt, ok := strings.Cut(stored, ".")
	if !ok || hexDigest == "" || salt == "" {
		return false
	}
	want, err := hex.DecodeString(hexDigest)
	if err != nil || len(want) != keyLen {
		return false
	}
	got, err := derive(password, salt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(want, got) == 1
}

// derive uses the hex form of the salt as the scrypt salt, the same bytes
// the existing credentials were created with.
func derive(password, salt string) ([]byte, error) {
	digest, err := scrypt.Key([]byte(password), []byte(salt), scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return digest, nil
}
