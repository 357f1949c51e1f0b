// Package auth provides password digests, identity tokens and
// request identity helpers.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters (OWASP 2024 recommended minimum).
const (
	argon2Time    = 3
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32
	argon2SaltLen = 16
)

var (
	// ErrInvalidDigest indicates the stored digest is not a PHC argon2id string.
	ErrInvalidDigest = errors.New("invalid password digest")
	// ErrIncompatibleVersion indicates the digest was produced by another argon2 version.
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
)

// dummyDigest is verified against when a username does not exist so both
// login failure paths spend the same time in argon2.
var dummyDigest = mustHash("glycoguard-dummy-password")

// HashPassword derives an Argon2id digest of the password.
// The result is a self-describing PHC string:
//
//	$argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
func HashPassword(password string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword reports whether password matches the stored digest.
// A mismatch is (false, nil); an unparseable digest is an error.
func VerifyPassword(password, digest string) (bool, error) {
	p, err := parseDigest(digest)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), p.salt, p.time, p.memory, p.threads, uint32(len(p.key)))

	return subtle.ConstantTimeCompare(computed, p.key) == 1, nil
}

// BurnVerify runs one verification against a fixed digest and discards the
// result. Callers use it when the account lookup failed.
func BurnVerify(password string) {
	_, _ = VerifyPassword(password, dummyDigest)
}

type digestParams struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

func parseDigest(digest string) (*digestParams, error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, ErrInvalidDigest
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, ErrInvalidDigest
	}
	if version != argon2.Version {
		return nil, ErrIncompatibleVersion
	}

	p := &digestParams{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return nil, ErrInvalidDigest
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, ErrInvalidDigest
	}
	if p.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(p.key) == 0 {
		return nil, ErrInvalidDigest
	}

	return p, nil
}

func mustHash(password string) string {
	digest, err := HashPassword(password)
	if err != nil {
		panic(err)
	}
	return digest
}

// QuickHash returns a short SHA256 fingerprint of the input.
// Used for cache keys and log fields, never for credential storage.
func QuickHash(input string) string {
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:16])
}
