package authsdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// DefaultBasePath is where the auth endpoints are mounted.
const DefaultBasePath = "/api/v1/demo/auth"

// Client talks to the auth service the way an API client would: tokens are
// sent as headers, never cookies. It remembers the last issued pair.
type Client struct {
	BaseURL    string
	BasePath   string
	HTTPClient *http.Client

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:  strings.TrimSuffix(baseURL, "/"),
		BasePath: DefaultBasePath,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Tokens returns the currently held access and refresh tokens.
func (c *Client) Tokens() (access, refresh string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken, c.refreshToken
}

// SetTokens replaces the held tokens. Empty strings clear them.
func (c *Client) SetTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken, c.refreshToken = access, refresh
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*MessageResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, c.BasePath+"/sign/signup", req)
	if err != nil {
		return nil, err
	}

	var out MessageResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates and stores the issued pair on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	c.SetTokens("", "")

	resp, err := c.doJSON(ctx, http.MethodPost, c.BasePath+"/sign/login", LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return c.storeTokens(resp)
}

// Refresh exchanges the held refresh token for a new pair.
func (c *Client) Refresh(ctx context.Context) (*TokenResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, c.BasePath+"/sign/refresh", nil)
	if err != nil {
		return nil, err
	}
	return c.storeTokens(resp)
}

// Logout ends the server-side session and forgets the held tokens.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.doJSON(ctx, http.MethodPost, c.BasePath+"/sign/logout", nil)
	if err != nil {
		return err
	}
	if err := decodeJSON(resp, nil, http.StatusOK); err != nil {
		return err
	}
	c.SetTokens("", "")
	return nil
}

// Me returns the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*UserInfoResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, c.BasePath+"/me", nil)
	if err != nil {
		return nil, err
	}

	var out UserInfoResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Session returns the caller's server-side session record.
func (c *Client) Session(ctx context.Context) (*SessionResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, c.BasePath+"/session", nil)
	if err != nil {
		return nil, err
	}

	var out SessionResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExtendSession pushes the session record's expiry out by hours.
func (c *Client) ExtendSession(ctx context.Context, hours int) (*SessionResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, c.BasePath+"/session/extend", ExtendSessionRequest{Hours: hours})
	if err != nil {
		return nil, err
	}

	var out SessionResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// RevokeSession deletes another user's session. Requires ROLE_ADMIN.
func (c *Client) RevokeSession(ctx context.Context, email string) error {
	resp, err := c.doJSON(ctx, http.MethodDelete, c.BasePath+"/sessions/"+url.PathEscape(email), nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusNoContent)
}

// Readiness calls /readyz. A 503 is returned as an *APIError.
func (c *Client) Readiness(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, "/readyz", nil)
	if err != nil {
		return nil, err
	}

	var out HealthResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) storeTokens(resp *http.Response) (*TokenResponse, error) {
	var out TokenResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	c.SetTokens(out.AccessToken, out.RefreshToken)
	return &out, nil
}
