package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/aussiebroadwan/sessionauth/internal/auth/store"
	"github.com/aussiebroadwan/sessionauth/pkg/cryptox"
	"github.com/google/uuid"
)

// UserService is the user-lookup capability the auth flows depend on.
type UserService struct {
	Store store.Store
}

// NormalizeEmail is applied to every email before it is stored, looked up
// or used as a token subject.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUser is the input to CreateUser.
type NewUser struct {
	Email     string
	Password  string
	Name      string
	BirthDate *time.Time
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	return u, mapStoreErr(err)
}

// GetUserByEmail fetches a user by email.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByEmail(ctx, NormalizeEmail(email))
	return u, mapStoreErr(err)
}

// LookupBySubject resolves the identity embedded in tokens for subject.
func (s *UserService) LookupBySubject(ctx context.Context, subject string) (domain.Identity, error) {
	u, err := s.GetUserByEmail(ctx, subject)
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{UserID: u.ID, Authorities: u.Authorities()}, nil
}

// ExistsBySubject reports whether an account is registered for subject.
func (s *UserService) ExistsBySubject(ctx context.Context, subject string) (bool, error) {
	return s.Store.Users().ExistsByEmail(ctx, NormalizeEmail(subject))
}

// CreateUser hashes the password and inserts the user with ROLE_USER.
func (s *UserService) CreateUser(ctx context.Context, in NewUser) (domain.User, error) {
	email := NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return domain.User{}, ErrInvalidInput
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	u := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
		Role:         domain.RoleUser,
		BirthDate:    in.BirthDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		exists, err := tx.Users().ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateIdentity
		}
		return tx.Users().CreateUser(ctx, u)
	})
	if err != nil {
		return domain.User{}, mapStoreErr(err)
	}
	return u, nil
}

// VerifyCredentials returns the user when password matches. Unknown emails
// still pay for a password hash.
func (s *UserService) VerifyCredentials(ctx context.Context, email, password string) (domain.User, error) {
	u, err := s.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrEntityNotFound) {
		_ = cryptox.VerifyDummy(password)
		return domain.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, err
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, fmt.Errorf("verify password: %w", err)
	}
	return u, nil
}

func (s *UserService) CountUsers(ctx context.Context) (int64, error) {
	return s.Store.Users().CountUsers(ctx)
}

func mapStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrEntityNotFound
	case errors.Is(err, store.ErrAlreadyExists):
		return ErrDuplicateIdentity
	default:
		return err
	}
}
