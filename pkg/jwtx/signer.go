package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// HS256Signer signs claims with the shared HMAC key.
type HS256Signer struct {
	key *HMACKey
}

// NewSignerHS256 creates an HS256 signer over key.
func NewSignerHS256(key *HMACKey) (*HS256Signer, error) {
	if !key.IsReady() {
		return nil, errors.New("jwtx: nil or weak HMAC key")
	}
	return &HS256Signer{key: key}, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign turns claims into a compact signed JWT string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.key.bytes())
}
