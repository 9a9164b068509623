package jwtx

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// MinHMACKeySize is the smallest secret accepted for HS256 (256 bits).
const MinHMACKeySize = 32

// ErrWeakKey is returned when the signing secret is too short for HS256.
var ErrWeakKey = errors.New("jwtx: signing secret must be at least 32 bytes")

// HMACKey is the process-wide shared secret used to sign and verify tokens.
// It is loaded once at startup and never mutated afterwards, so it can be
// shared across goroutines without locking.
type HMACKey struct {
	secret      []byte
	fingerprint string
}

// NewHMACKey copies secret into a new key.
func NewHMACKey(secret []byte) (*HMACKey, error) {
	if len(secret) < MinHMACKeySize {
		return nil, ErrWeakKey
	}

	buf := make([]byte, len(secret))
	copy(buf, secret)

	sum := sha256.Sum256(buf)
	return &HMACKey{
		secret:      buf,
		fingerprint: hex.EncodeToString(sum[:4]),
	}, nil
}

// Fingerprint is a short, non-reversible label for logs and health checks.
func (k *HMACKey) Fingerprint() string { return k.fingerprint }

// IsReady reports whether key material is loaded.
func (k *HMACKey) IsReady() bool { return k != nil && len(k.secret) >= MinHMACKeySize }

func (k *HMACKey) bytes() []byte { return k.secret }
