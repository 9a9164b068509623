package domain

import "time"

// Roles carried in the authorities claim.
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// BirthDateLayout is how birth dates are stored and exchanged.
const BirthDateLayout = time.DateOnly

type User struct {
	ID           string // uuid
	Email        string // login identity and token subject, stored lower-case
	Name         string
	PasswordHash string // argon2 encoded
	Role         string
	BirthDate    *time.Time // date only, nullable
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Authorities returns the authority set embedded in access tokens.
func (u User) Authorities() []string {
	if u.Role == "" {
		return nil
	}
	return []string{u.Role}
}

// Identity is what token issuance needs to know about a subject.
type Identity struct {
	UserID      string
	Authorities []string
}
