package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/sessionauth/internal/auth/service"
	"github.com/aussiebroadwan/sessionauth/pkg/authsdk"
	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
)

// writeServiceError maps a service error onto its API error. Anything
// unrecognised is logged and reported as C002.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		authsdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrDuplicateIdentity):
		authsdk.ErrDuplicateEmail.WriteError(w)
	case errors.Is(err, service.ErrInvalidToken):
		if errors.Is(err, jwtx.ErrExpired) {
			authsdk.ErrInvalidToken.WithMessage("refresh token has expired").WriteError(w)
			return
		}
		authsdk.ErrInvalidToken.WriteError(w)
	case errors.Is(err, service.ErrEntityNotFound):
		authsdk.ErrEntityNotFound.WriteError(w)
	case errors.Is(err, service.ErrInvalidInput):
		authsdk.ErrInvalidInput.WithMessage(err.Error()).WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		authsdk.ErrInternal.WriteError(w)
	}
}
