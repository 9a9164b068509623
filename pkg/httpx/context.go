package httpx

import (
	"context"
	"slices"
)

type ctxKey string

const (
	CtxKeyPrincipal ctxKey = "principal"
)

// Principal is the identity the authentication filter derived from a valid
// access token. It is immutable and lives for one request.
type Principal struct {
	Subject     string
	UserID      string
	Authorities []string
}

// HasAuthority reports whether the principal holds authority.
func (p Principal) HasAuthority(authority string) bool {
	return slices.Contains(p.Authorities, authority)
}

// ContextWithPrincipal returns ctx carrying p.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	p.Authorities = slices.Clone(p.Authorities)
	return context.WithValue(ctx, CtxKeyPrincipal, p)
}

// PrincipalFromContext returns the request's principal, if authenticated.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(CtxKeyPrincipal).(Principal)
	return p, ok
}
