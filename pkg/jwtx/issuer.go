package jwtx

import (
	"errors"
	"strings"
	"time"
)

// ErrEmptySubject is returned when asked to issue a token for nobody.
var ErrEmptySubject = errors.New("jwtx: subject is required")

// Issuer mints access and refresh tokens. Issuance only reads immutable
// state, so one Issuer is shared by every request.
type Issuer struct {
	signer     Signer
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewIssuer wires an Issuer. Non-positive TTLs fall back to the defaults.
func NewIssuer(signer Signer, accessTTL, refreshTTL time.Duration) *Issuer {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}
	return &Issuer{
		signer:     signer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// AccessTTL is the configured access token lifetime.
func (i *Issuer) AccessTTL() time.Duration { return i.accessTTL }

// RefreshTTL is the configured refresh token lifetime.
func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

// WithClock returns a copy of i that stamps tokens using now.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	c := *i
	c.now = now
	return &c
}

// IssueAccessToken mints a token carrying subject, userId and authorities.
func (i *Issuer) IssueAccessToken(subject, userID string, authorities []string) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", ErrEmptySubject
	}
	return i.signer.Sign(NewAccessClaims(subject, userID, authorities, i.accessTTL, i.now().UTC()))
}

// IssueRefreshToken mints a long-lived token carrying only the subject.
func (i *Issuer) IssueRefreshToken(subject string) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", ErrEmptySubject
	}
	return i.signer.Sign(NewRefreshClaims(subject, i.refreshTTL, i.now().UTC()))
}
