package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTL constants. Services override them from config.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims is the decoded payload of every token we issue. Access and refresh
// tokens share this shape and differ only in which fields are populated.
type Claims struct {
	jwt.RegisteredClaims

	// UserID is the opaque user identifier, access tokens only.
	UserID string `json:"userId,omitempty"`

	// Authorities are role strings, access tokens only. On the wire this is
	// a single comma-joined string.
	Authorities Authorities `json:"authorities,omitempty"`
}

// Authorities is a role list encoded as a comma-joined JSON string.
type Authorities []string

func (a Authorities) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.Join(a, ","))
}

func (a *Authorities) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*a = SplitAuthorities(s)
	return nil
}

// SplitAuthorities parses a comma-joined authority string, dropping blanks.
// Returns nil when nothing is left.
func SplitAuthorities(s string) Authorities {
	var out Authorities
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// NewAccessClaims builds claims for a short-lived access token.
func NewAccessClaims(subject, userID string, authorities []string, ttl time.Duration, now time.Time) Claims {
	c := newBaseClaims(subject, ttl, now)
	c.UserID = userID
	if len(authorities) > 0 {
		c.Authorities = Authorities(authorities)
	}
	return c
}

// NewRefreshClaims builds claims for a refresh token. Refresh tokens carry
// the subject only.
func NewRefreshClaims(subject string, ttl time.Duration, now time.Time) Claims {
	return newBaseClaims(subject, ttl, now)
}

// newBaseClaims rounds exp up to the next whole second. NumericDate keeps
// second precision, and truncating would cut sub-second TTLs to nothing.
func newBaseClaims(subject string, ttl time.Duration, now time.Time) Claims {
	exp := now.Add(ttl)
	if rounded := exp.Truncate(time.Second); rounded.Before(exp) {
		exp = rounded.Add(time.Second)
	}

	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        NewJTI(),
		},
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim. It keeps
// two tokens minted in the same second from being byte-identical.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateSubject ensures the token names someone.
func (c *Claims) ValidateSubject() error {
	if strings.TrimSpace(c.Subject) == "" {
		return ErrInvalidClaim
	}
	return nil
}

// ValidateExpiry ensures the token has an exp and it is still in the future.
func (c *Claims) ValidateExpiry() error {
	return c.ValidateExpiryWithLeeway(0)
}

// ValidateExpiryWithLeeway adds a grace period for clock skew.
func (c *Claims) ValidateExpiryWithLeeway(leeway time.Duration) error {
	if c.ExpiresAt == nil {
		return ErrExpired
	}

	now := time.Now().UTC()
	if !now.Before(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}

	return nil
}
