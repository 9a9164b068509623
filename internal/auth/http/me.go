package http

import (
	"net/http"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/aussiebroadwan/sessionauth/internal/auth/service"
	"github.com/aussiebroadwan/sessionauth/pkg/authsdk"
	"github.com/aussiebroadwan/sessionauth/pkg/httpx"
)

type MeHandler struct {
	Auth *service.AuthService
}

// ServeHTTP returns the authenticated user's profile.
//
//	@Summary		Current user
//	@Description	Returns the profile of the user the access token was issued to.
//	@Tags			User
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.UserInfoResponse
//	@Failure		401	{object}	authsdk.APIError	"A004 authentication required"
//	@Failure		404	{object}	authsdk.APIError	"C003 account no longer exists"
//	@Router			/api/v1/demo/auth/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, ok := httpx.PrincipalFromContext(r.Context())
	if !ok {
		authsdk.ErrUnauthorized.WriteError(w)
		return
	}

	u, err := h.Auth.CurrentUser(r.Context(), p.Subject)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := authsdk.UserInfoResponse{
		UserID:   u.ID,
		UserName: u.Name,
		Email:    u.Email,
	}
	if u.BirthDate != nil {
		resp.BirthDate = u.BirthDate.Format(domain.BirthDateLayout)
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}
