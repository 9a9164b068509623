package domain

import "time"

// TokenPair is what login and refresh hand back to the caller. Both tokens
// are always issued together.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	TokenType        string // always "Bearer"
	ExpiresIn        time.Duration
	RefreshExpiresIn time.Duration
}
