package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/sessionauth/pkg/httpx"
)

// Error codes. C-codes are generic, A-codes are authentication specific.
const (
	CodeInvalidInput       = "C001"
	CodeInternal           = "C002"
	CodeEntityNotFound     = "C003"
	CodeAccessDenied       = "C005"
	CodeRateLimited        = "C006"
	CodeInvalidCredentials = "A001"
	CodeInvalidToken       = "A002"
	CodeExpiredToken       = "A003"
	CodeUnauthorized       = "A004"
	CodeDuplicateEmail     = "A005"
)

// APIError is the error body every endpoint returns. It is used by handlers
// to write responses and by Client to report them.
type APIError struct {
	StatusCode int `json:"-"`

	// Code is one of the Code* constants.
	Code string `json:"code"`

	// Err is a stable snake_case name for the code.
	Err string `json:"error"`

	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Code, e.Err, e.Message)
}

// Is matches on code, so a response decoded by Client satisfies
// errors.Is(err, authsdk.ErrInvalidCredentials).
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

// WriteError writes e as the JSON response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, e)
}

// WithMessage returns a copy of e carrying msg.
func (e *APIError) WithMessage(msg string) *APIError {
	c := *e
	c.Message = msg
	return &c
}

var (
	ErrInvalidInput = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       CodeInvalidInput,
		Err:        "invalid_input",
		Message:    "invalid input",
	}

	ErrInternal = &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       CodeInternal,
		Err:        "internal_error",
		Message:    "internal server error",
	}

	ErrEntityNotFound = &APIError{
		StatusCode: http.StatusNotFound,
		Code:       CodeEntityNotFound,
		Err:        "entity_not_found",
		Message:    "entity not found",
	}

	ErrAccessDenied = &APIError{
		StatusCode: http.StatusForbidden,
		Code:       CodeAccessDenied,
		Err:        "access_denied",
		Message:    "access denied",
	}

	ErrRateLimited = &APIError{
		StatusCode: http.StatusTooManyRequests,
		Code:       CodeRateLimited,
		Err:        "rate_limit_exceeded",
		Message:    "too many requests",
	}

	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       CodeInvalidCredentials,
		Err:        "invalid_credentials",
		Message:    "invalid email or password",
	}

	ErrInvalidToken = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       CodeInvalidToken,
		Err:        "invalid_token",
		Message:    "invalid token",
	}

	ErrExpiredToken = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       CodeExpiredToken,
		Err:        "expired_token",
		Message:    "token has expired",
	}

	ErrUnauthorized = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       CodeUnauthorized,
		Err:        "unauthorized",
		Message:    "authentication required",
	}

	ErrDuplicateEmail = &APIError{
		StatusCode: http.StatusConflict,
		Code:       CodeDuplicateEmail,
		Err:        "duplicate_email",
		Message:    "email is already registered",
	}
)

// parseErrorResponse turns a non-2xx response into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       CodeInternal,
		Err:        "http_error",
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
