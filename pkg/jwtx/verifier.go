package jwtx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrUnsupported  = errors.New("jwtx: unsupported token")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// Reason maps a verification error onto a short label for logs and metrics.
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrInvalidSig):
		return "bad_signature"
	case errors.Is(err, ErrUnsupported):
		return "unsupported"
	case errors.Is(err, ErrInvalidClaim):
		return "invalid_claims"
	default:
		return "malformed"
	}
}

// HS256Verifier decodes and validates tokens signed with the shared key.
// It is safe for concurrent use.
type HS256Verifier struct {
	key    *HMACKey
	parser *jwt.Parser
}

// NewVerifierHS256 creates a verifier over key.
func NewVerifierHS256(key *HMACKey) *HS256Verifier {
	return &HS256Verifier{
		key: key,
		// Expiry is checked by us so an expired token can still be decoded.
		parser: jwt.NewParser(jwt.WithoutClaimsValidation()),
	}
}

// Verify checks signature, subject and expiry. Errors wrap one of
// ErrMalformed, ErrUnsupported, ErrInvalidSig, ErrInvalidClaim or ErrExpired.
func (v *HS256Verifier) Verify(token string) (Claims, error) {
	claims, err := v.decode(token)
	if err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateSubject(); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiry(); err != nil {
		return Claims{}, err
	}
	return *claims, nil
}

// Validate reports whether the token is well-signed and unexpired.
func (v *HS256Verifier) Validate(token string) bool {
	_, err := v.Verify(token)
	return err == nil
}

// ParseClaims returns the claims of a correctly signed token even when it
// has expired, so callers can tell whose token it was. Anything else fails
// with ErrMalformed.
func (v *HS256Verifier) ParseClaims(token string) (Claims, error) {
	claims, err := v.decode(token)
	if err == nil {
		err = claims.ValidateSubject()
	}
	if err != nil {
		if errors.Is(err, ErrMalformed) {
			return Claims{}, err
		}
		return Claims{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return *claims, nil
}

// Subject returns the sub claim.
func (v *HS256Verifier) Subject(token string) (string, error) {
	c, err := v.ParseClaims(token)
	if err != nil {
		return "", err
	}
	return c.Subject, nil
}

// UserID returns the userId claim, empty for refresh tokens.
func (v *HS256Verifier) UserID(token string) (string, error) {
	c, err := v.ParseClaims(token)
	if err != nil {
		return "", err
	}
	return c.UserID, nil
}

// Authorities returns the authorities claim, nil when absent.
func (v *HS256Verifier) Authorities(token string) ([]string, error) {
	c, err := v.ParseClaims(token)
	if err != nil {
		return nil, err
	}
	if len(c.Authorities) == 0 {
		return nil, nil
	}
	return []string(c.Authorities), nil
}

func (v *HS256Verifier) decode(token string) (*Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMalformed
	}

	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method == nil || t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrUnsupported
		}
		return v.key.bytes(), nil
	})
	if err != nil {
		return nil, classify(err)
	}

	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, ErrUnsupported):
		return err
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %w", ErrInvalidSig, err)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %w", ErrUnsupported, err)
	default:
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
}
