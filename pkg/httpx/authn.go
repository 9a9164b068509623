package httpx

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
)

// Outcome is what the authentication filter decided for one request.
type Outcome string

const (
	OutcomePreflight     Outcome = "preflight"
	OutcomePublic        Outcome = "public"
	OutcomeAnonymous     Outcome = "anonymous"
	OutcomeRejectedToken Outcome = "rejected_token"
	OutcomeAuthenticated Outcome = "authenticated"
)

// AuthnConfig configures the authentication filter.
type AuthnConfig struct {
	Verifier    jwtx.Verifier
	PublicPaths []string

	// OnOutcome, if set, is told how each request was classified.
	OnOutcome func(ctx context.Context, outcome Outcome)
}

// AuthnState is threaded through the steps of a single request.
type AuthnState struct {
	Request *http.Request
	Token   string
	Claims  jwtx.Claims
	Outcome Outcome
}

// AuthnStep is one stage of the filter. Run returns false to stop the
// remaining steps; the request is then passed on as it stands.
type AuthnStep struct {
	Name string
	Run  func(st *AuthnState) bool
}

// AuthnSteps returns the filter's ordered steps: preflight bypass, public
// allow-list, token resolution, verification and principal attachment.
func AuthnSteps(cfg AuthnConfig) []AuthnStep {
	public := NewPathAllowList(cfg.PublicPaths)

	return []AuthnStep{
		{
			Name: "preflight",
			Run: func(st *AuthnState) bool {
				if st.Request.Method == http.MethodOptions {
					st.Outcome = OutcomePreflight
					return false
				}
				return true
			},
		},
		{
			Name: "allow_list",
			Run: func(st *AuthnState) bool {
				if public.Match(st.Request.URL.Path) {
					st.Outcome = OutcomePublic
					return false
				}
				return true
			},
		},
		{
			Name: "resolve",
			Run: func(st *AuthnState) bool {
				tok, ok := ResolveAccessToken(st.Request)
				if !ok {
					st.Outcome = OutcomeAnonymous
					return false
				}
				st.Token = tok
				return true
			},
		},
		{
			Name: "verify",
			Run: func(st *AuthnState) bool {
				claims, err := cfg.Verifier.Verify(st.Token)
				if err != nil {
					slogx.FromContext(st.Request.Context()).Debug("access token rejected",
						"reason", jwtx.Reason(err),
						"err", err,
					)
					st.Outcome = OutcomeRejectedToken
					return false
				}
				st.Claims = claims
				return true
			},
		},
		{
			Name: "attach",
			Run: func(st *AuthnState) bool {
				ctx := ContextWithPrincipal(st.Request.Context(), Principal{
					Subject:     st.Claims.Subject,
					UserID:      st.Claims.UserID,
					Authorities: st.Claims.Authorities,
				})
				ctx = slogx.With(ctx, "sub", st.Claims.Subject)
				st.Request = st.Request.WithContext(ctx)
				st.Outcome = OutcomeAuthenticated
				return true
			},
		},
	}
}

// Authenticate attaches a Principal to the request context when a valid
// access token is present. It never rejects; enforcing authentication is
// left to RequireAuthenticated and friends on the routes that need it.
func Authenticate(cfg AuthnConfig) Middleware {
	steps := AuthnSteps(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st := &AuthnState{Request: r}
			for _, step := range steps {
				if !step.Run(st) {
					break
				}
			}

			if cfg.OnOutcome != nil {
				cfg.OnOutcome(st.Request.Context(), st.Outcome)
			}

			next.ServeHTTP(w, st.Request)
		})
	}
}
