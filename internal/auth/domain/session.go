package domain

import "time"

// MaxExtendHours caps how far a session record can be pushed out in one call.
const MaxExtendHours = 30 * 24

// Session is the server-side record of the most recent login or refresh
// for an email. It does not gate request authentication.
type Session struct {
	Email        string
	AccessToken  string
	RefreshToken string
	LoginTime    time.Time
}
