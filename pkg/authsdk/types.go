package authsdk

// SignupRequest is the body of POST {base}/sign/signup.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=256"`
	Name     string `json:"name,omitempty" validate:"max=100"`

	// BirthDate is optional, formatted YYYY-MM-DD.
	BirthDate string `json:"birthDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// LoginRequest is the body of POST {base}/sign/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is returned by login and refresh. The same tokens are also
// set as cookies.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`

	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int64 `json:"expiresIn"`

	// RefreshExpiresIn is the refresh token lifetime in seconds.
	RefreshExpiresIn int64 `json:"refreshExpiresIn"`
}

// UserInfoResponse is returned by GET {base}/me.
type UserInfoResponse struct {
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	Email     string `json:"email"`
	BirthDate string `json:"birthDate,omitempty"`
}

// SessionResponse describes the caller's server-side session record.
type SessionResponse struct {
	Email     string `json:"email"`
	LoginTime string `json:"loginTime"`

	// ExpiresIn is the remaining record lifetime in seconds.
	ExpiresIn int64 `json:"expiresIn"`
}

// ExtendSessionRequest is the body of POST {base}/session/extend.
type ExtendSessionRequest struct {
	Hours int `json:"hours" validate:"required,min=1,max=720"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status string        `json:"status"`
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports each readiness dependency as "ok" or an error string.
type HealthChecks struct {
	Database string `json:"database"`
	Sessions string `json:"sessions"`
	Signer   string `json:"signer"`
}
