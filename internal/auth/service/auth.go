package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/aussiebroadwan/sessionauth/internal/auth/metrics"
	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
)

// TokenType is the scheme clients send access tokens with.
const TokenType = "Bearer"

// SessionStore is the advisory session record. Implementations swallow
// their own failures.
type SessionStore interface {
	Save(ctx context.Context, email, accessToken, refreshToken string)
	Get(ctx context.Context, email string) (domain.Session, bool)
	Delete(ctx context.Context, email string) bool
	ExtendTTL(ctx context.Context, email string, hours int) bool
	TTL(ctx context.Context, email string) (time.Duration, bool)
}

// TokenVerifier is the part of the token validator the flows use.
type TokenVerifier interface {
	Verify(token string) (jwtx.Claims, error)
	ParseClaims(token string) (jwtx.Claims, error)
}

// AuthService orchestrates signup, login, refresh and logout. It holds no
// state of its own.
type AuthService struct {
	Users    *UserService
	Issuer   *jwtx.Issuer
	Verifier TokenVerifier
	Sessions SessionStore
	Metrics  *metrics.Metrics
}

type SignupInput struct {
	Email     string
	Password  string
	Name      string
	BirthDate *time.Time
}

// SessionInfo is a session record with its remaining lifetime.
type SessionInfo struct {
	domain.Session
	ExpiresIn time.Duration
}

// Signup registers a new account with ROLE_USER.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (domain.User, error) {
	l := slogx.FromContext(ctx)

	u, err := s.Users.CreateUser(ctx, NewUser(in))
	switch {
	case err == nil:
		s.Metrics.Signup(metrics.ResultSuccess)
		l.Info("user signed up", "email", u.Email, "user_id", u.ID)
		return u, nil
	case errors.Is(err, ErrDuplicateIdentity):
		s.Metrics.Signup(metrics.ResultDuplicate)
	case errors.Is(err, ErrInvalidInput):
		s.Metrics.Signup(metrics.ResultFailure)
	default:
		s.Metrics.Signup(metrics.ResultError)
	}
	return domain.User{}, err
}

// Login verifies credentials, issues a fresh pair and records the session.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	u, err := s.Users.VerifyCredentials(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.Metrics.Login(metrics.ResultFailure)
			l.Info("login rejected", "email", NormalizeEmail(email))
		} else {
			s.Metrics.Login(metrics.ResultError)
		}
		return domain.TokenPair{}, err
	}

	pair, err := s.issuePair(u.Email, domain.Identity{UserID: u.ID, Authorities: u.Authorities()})
	if err != nil {
		s.Metrics.Login(metrics.ResultError)
		return domain.TokenPair{}, err
	}

	s.Sessions.Save(ctx, u.Email, pair.AccessToken, pair.RefreshToken)
	s.Metrics.Login(metrics.ResultSuccess)
	l.Info("user logged in", "email", u.Email)

	return pair, nil
}

// Refresh rotates both tokens. The presented refresh token is not revoked
// and stays usable until it expires; the session record always holds the
// newest pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	claims, err := s.Verifier.Verify(refreshToken)
	if err != nil {
		s.Metrics.Refresh(metrics.ResultInvalidToken)
		l.Debug("refresh token rejected", "reason", jwtx.Reason(err))
		return domain.TokenPair{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	id, err := s.Users.LookupBySubject(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrEntityNotFound) {
			s.Metrics.Refresh(metrics.ResultNotFound)
			l.Info("refresh for vanished account", "email", claims.Subject)
		} else {
			s.Metrics.Refresh(metrics.ResultError)
		}
		return domain.TokenPair{}, err
	}

	subject := NormalizeEmail(claims.Subject)
	pair, err := s.issuePair(subject, id)
	if err != nil {
		s.Metrics.Refresh(metrics.ResultError)
		return domain.TokenPair{}, err
	}

	s.Sessions.Save(ctx, subject, pair.AccessToken, pair.RefreshToken)
	s.Metrics.Refresh(metrics.ResultSuccess)
	l.Info("tokens refreshed", "email", subject)

	return pair, nil
}

// Logout drops the session record for subject. It never fails, and an
// empty subject or a missing record is not an error.
func (s *AuthService) Logout(ctx context.Context, subject string) {
	subject = NormalizeEmail(subject)
	if subject == "" {
		return
	}

	existed := s.Sessions.Delete(ctx, subject)
	slogx.FromContext(ctx).Info("user logged out", "email", subject, "had_session", existed)
}

// SubjectFromTokens picks the logout subject from whichever token still
// carries a verifiable signature, expired or not.
func (s *AuthService) SubjectFromTokens(tokens ...string) string {
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		if claims, err := s.Verifier.ParseClaims(tok); err == nil && claims.Subject != "" {
			return claims.Subject
		}
	}
	return ""
}

// CurrentUser loads the account behind an authenticated subject.
func (s *AuthService) CurrentUser(ctx context.Context, email string) (domain.User, error) {
	return s.Users.GetUserByEmail(ctx, email)
}

// SessionInfo returns the session record for email.
func (s *AuthService) SessionInfo(ctx context.Context, email string) (SessionInfo, error) {
	email = NormalizeEmail(email)

	sess, ok := s.Sessions.Get(ctx, email)
	if !ok {
		return SessionInfo{}, ErrEntityNotFound
	}
	ttl, _ := s.Sessions.TTL(ctx, email)

	return SessionInfo{Session: sess, ExpiresIn: ttl}, nil
}

// ExtendSession sets the record for email to expire hours from now.
func (s *AuthService) ExtendSession(ctx context.Context, email string, hours int) (SessionInfo, error) {
	if hours <= 0 || hours > domain.MaxExtendHours {
		return SessionInfo{}, ErrInvalidInput
	}
	email = NormalizeEmail(email)

	if !s.Sessions.ExtendTTL(ctx, email, hours) {
		return SessionInfo{}, ErrEntityNotFound
	}
	slogx.FromContext(ctx).Info("session extended", "email", email, "hours", hours)

	return s.SessionInfo(ctx, email)
}

// RevokeSession deletes another user's session record. Tokens already
// issued stay valid until they expire.
func (s *AuthService) RevokeSession(ctx context.Context, email string) error {
	email = NormalizeEmail(email)

	if !s.Sessions.Delete(ctx, email) {
		return ErrEntityNotFound
	}
	slogx.FromContext(ctx).Info("session revoked", "email", email)
	return nil
}

func (s *AuthService) issuePair(subject string, id domain.Identity) (domain.TokenPair, error) {
	access, err := s.Issuer.IssueAccessToken(subject, id.UserID, id.Authorities)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.Issuer.IssueRefreshToken(subject)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}

	return domain.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        TokenType,
		ExpiresIn:        s.Issuer.AccessTTL(),
		RefreshExpiresIn: s.Issuer.RefreshTTL(),
	}, nil
}
