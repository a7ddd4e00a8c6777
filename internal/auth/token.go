package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	saltLen      = 16
)

const hashPrefix = "$argon2id$"

// IsHash reports whether s looks like an encoded argon2id hash.
func IsHash(s string) bool {
	return strings.HasPrefix(s, hashPrefix)
}

// HashToken derives an argon2id hash of token, encoded as
// $argon2id$v=19$m=65536,t=1,p=4$salt$hash.
func HashToken(token string) (string, error) {
	if token == "" {
		return "", errors.New("token is empty")
	}
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(token), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s", hashPrefix, argon2.Version,
		argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// VerifyToken checks token against an encoded argon2id hash.
func VerifyToken(token, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, errors.New("invalid argon2id hash")
	}
	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, fmt.Errorf("parse hash parameters: %w", err)
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("decode salt: %w", err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("decode hash: %w", err)
	}
	got := argon2.IDKey([]byte(token), salt, time, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

// TokenChecker matches presented bearer tokens against a configured secret,
// which is either the token itself or its argon2id hash. Tokens that passed
// a hash check are remembered by digest so each one is derived only once.
type TokenChecker struct {
	secret string

	mu       sync.Mutex
	accepted map[[sha256.Size]byte]struct{}
}

// NewTokenChecker creates a checker for secret.
func NewTokenChecker(secret string) *TokenChecker {
	return &TokenChecker{secret: secret, accepted: make(map[[sha256.Size]byte]struct{})}
}

// Check reports whether token matches the configured secret.
func (c *TokenChecker) Check(token string) bool {
	if token == "" || c.secret == "" {
		return false
	}
	if !IsHash(c.secret) {
		return subtle.ConstantTimeCompare([]byte(token), []byte(c.secret)) == 1
	}

	digest := sha256.Sum256([]byte(token))
	c.mu.Lock()
	_, ok := c.accepted[digest]
	c.mu.Unlock()
	if ok {
		return true
	}

	ok, err := VerifyToken(token, c.secret)
	if err != nil || !ok {
		return false
	}
	c.mu.Lock()
	c.accepted[digest] = struct{}{}
	c.mu.Unlock()
	return true
}
