package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/aussiebroadwan/sessionauth/internal/auth/service"
	"github.com/aussiebroadwan/sessionauth/pkg/authsdk"
	"github.com/aussiebroadwan/sessionauth/pkg/httpx"
)

// SignHandler serves the public sign/* endpoints.
type SignHandler struct {
	Auth    *service.AuthService
	Cookies httpx.CookieConfig
}

// HandleSignup godoc
//
//	@Summary		Register an account
//	@Description	Creates a user with ROLE_USER. Emails are matched case-insensitively.
//	@Tags			Sign
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.SignupRequest	true	"email, password, name, birthDate (YYYY-MM-DD)"
//	@Success		201		{object}	authsdk.MessageResponse
//	@Failure		400		{object}	authsdk.APIError	"C001 invalid input"
//	@Failure		409		{object}	authsdk.APIError	"A005 email already registered"
//	@Failure		429		{object}	authsdk.APIError	"C006 rate limited"
//	@Router			/api/v1/demo/auth/sign/signup [post].
func (h *SignHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req authsdk.SignupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		authsdk.ErrInvalidInput.WithMessage(err.Error()).WriteError(w)
		return
	}

	in := service.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	}
	if req.BirthDate != "" {
		bd, err := time.Parse(domain.BirthDateLayout, req.BirthDate)
		if err != nil {
			authsdk.ErrInvalidInput.WithMessage("birthDate must be YYYY-MM-DD").WriteError(w)
			return
		}
		in.BirthDate = &bd
	}

	if _, err := h.Auth.Signup(r.Context(), in); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.MessageResponse{Message: "signup completed"})
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Verifies credentials and issues an access/refresh token pair. Both tokens are also set as HttpOnly cookies.
//	@Tags			Sign
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"email and password"
//	@Success		200		{object}	authsdk.TokenResponse
//	@Failure		400		{object}	authsdk.APIError	"C001 invalid input"
//	@Failure		401		{object}	authsdk.APIError	"A001 invalid credentials"
//	@Failure		429		{object}	authsdk.APIError	"C006 rate limited"
//	@Header			200		{string}	Set-Cookie	"accessToken and refreshToken"
//	@Router			/api/v1/demo/auth/sign/login [post].
func (h *SignHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		authsdk.ErrInvalidInput.WithMessage(err.Error()).WriteError(w)
		return
	}

	pair, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.writePair(w, pair)
}

// HandleRefresh godoc
//
//	@Summary		Rotate tokens
//	@Description	Exchanges a refresh token, read from the refreshToken cookie or the Refresh-Token header, for a new pair.
//	@Tags			Sign
//	@Produce		json
//	@Param			Refresh-Token	header		string	false	"Refresh token when no cookie is sent"
//	@Success		200				{object}	authsdk.TokenResponse
//	@Failure		400				{object}	authsdk.APIError	"C001 no refresh token"
//	@Failure		401				{object}	authsdk.APIError	"A002 invalid or expired token"
//	@Failure		404				{object}	authsdk.APIError	"C003 account no longer exists"
//	@Router			/api/v1/demo/auth/sign/refresh [post].
func (h *SignHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	tok, ok := httpx.ResolveRefreshToken(r)
	if !ok {
		authsdk.ErrInvalidInput.WithMessage("refresh token is required").WriteError(w)
		return
	}

	pair, err := h.Auth.Refresh(r.Context(), tok)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.writePair(w, pair)
}

// HandleLogout godoc
//
//	@Summary		Log out
//	@Description	Drops the caller's session record and expires both cookies. Expired tokens still identify the caller. Always succeeds.
//	@Tags			Sign
//	@Produce		json
//	@Success		200	{object}	authsdk.MessageResponse
//	@Router			/api/v1/demo/auth/sign/logout [post].
func (h *SignHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var subject string
	if p, ok := httpx.PrincipalFromContext(ctx); ok {
		subject = p.Subject
	} else {
		access, _ := httpx.ResolveAccessToken(r)
		refresh, _ := httpx.ResolveRefreshToken(r)
		subject = h.Auth.SubjectFromTokens(access, refresh)
	}

	h.Auth.Logout(ctx, subject)

	httpx.ClearTokenCookies(w, h.Cookies)
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "logged out"})
}

func (h *SignHandler) writePair(w http.ResponseWriter, pair domain.TokenPair) {
	httpx.SetTokenCookies(w, h.Cookies,
		pair.AccessToken, pair.ExpiresIn,
		pair.RefreshToken, pair.RefreshExpiresIn,
	)
	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		TokenType:        pair.TokenType,
		ExpiresIn:        int64(pair.ExpiresIn / time.Second),
		RefreshExpiresIn: int64(pair.RefreshExpiresIn / time.Second),
	})
}
