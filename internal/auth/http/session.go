package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/sessionauth/internal/auth/service"
	"github.com/aussiebroadwan/sessionauth/pkg/authsdk"
	"github.com/aussiebroadwan/sessionauth/pkg/httpx"
)

// SessionHandler exposes the server-side session record.
type SessionHandler struct {
	Auth *service.AuthService
}

// HandleGet godoc
//
//	@Summary		Current session
//	@Description	Returns the caller's session record and its remaining lifetime in seconds.
//	@Tags			Session
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.SessionResponse
//	@Failure		401	{object}	authsdk.APIError	"A004 authentication required"
//	@Failure		404	{object}	authsdk.APIError	"C003 no session"
//	@Router			/api/v1/demo/auth/session [get].
func (h *SessionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, ok := httpx.PrincipalFromContext(r.Context())
	if !ok {
		authsdk.ErrUnauthorized.WriteError(w)
		return
	}

	info, err := h.Auth.SessionInfo(r.Context(), p.Subject)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sessionResponse(info))
}

// HandleExtend godoc
//
//	@Summary		Extend session
//	@Description	Sets the caller's session record to expire the given number of hours from now.
//	@Tags			Session
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ExtendSessionRequest	true	"hours (1-720)"
//	@Success		200		{object}	authsdk.SessionResponse
//	@Failure		400		{object}	authsdk.APIError	"C001 invalid input"
//	@Failure		401		{object}	authsdk.APIError	"A004 authentication required"
//	@Failure		404		{object}	authsdk.APIError	"C003 no session"
//	@Router			/api/v1/demo/auth/session/extend [post].
func (h *SessionHandler) HandleExtend(w http.ResponseWriter, r *http.Request) {
	p, ok := httpx.PrincipalFromContext(r.Context())
	if !ok {
		authsdk.ErrUnauthorized.WriteError(w)
		return
	}

	var req authsdk.ExtendSessionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		authsdk.ErrInvalidInput.WithMessage(err.Error()).WriteError(w)
		return
	}

	info, err := h.Auth.ExtendSession(r.Context(), p.Subject, req.Hours)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sessionResponse(info))
}

// HandleRevoke godoc
//
//	@Summary		Revoke a session
//	@Description	Deletes another user's session record. Tokens already issued remain valid until they expire.
//	@Tags			Session
//	@Security		BearerAuth
//	@Param			email	path	string	true	"Account email"
//	@Success		204
//	@Failure		401	{object}	authsdk.APIError	"A004 authentication required"
//	@Failure		403	{object}	authsdk.APIError	"C005 ROLE_ADMIN required"
//	@Failure		404	{object}	authsdk.APIError	"C003 no session"
//	@Router			/api/v1/demo/auth/sessions/{email} [delete].
func (h *SessionHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")
	if service.NormalizeEmail(email) == "" {
		authsdk.ErrInvalidInput.WithMessage("email is required").WriteError(w)
		return
	}

	if err := h.Auth.RevokeSession(r.Context(), email); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func sessionResponse(info service.SessionInfo) authsdk.SessionResponse {
	return authsdk.SessionResponse{
		Email:     info.Email,
		LoginTime: info.LoginTime.UTC().Format(time.RFC3339),
		ExpiresIn: int64(info.ExpiresIn / time.Second),
	}
}
