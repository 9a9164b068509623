package session

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/aussiebroadwan/sessionauth/pkg/cryptox"
	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces session records in Redis.
const KeyPrefix = "login:session:"

const (
	DefaultTTL       = 24 * time.Hour
	DefaultOpTimeout = 500 * time.Millisecond
)

// Hash fields of a session record.
const (
	fieldEmail        = "email"
	fieldAccessToken  = "accessToken"
	fieldRefreshToken = "refreshToken"
	fieldLoginTime    = "loginTime"
)

type Options struct {
	// DefaultTTL is applied on every Save. Zero means DefaultTTL.
	DefaultTTL time.Duration

	// OpTimeout bounds each Redis round trip. Zero means DefaultOpTimeout.
	OpTimeout time.Duration
}

// Store keeps one session record per email in Redis. It is advisory:
// every operation except Count and Ping swallows Redis failures, logs them
// at WARN and reports "no session".
type Store struct {
	rdb       redis.UniversalClient
	ttl       time.Duration
	opTimeout time.Duration
	now       func() time.Time
}

func NewStore(rdb redis.UniversalClient, opts Options) *Store {
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = DefaultTTL
	}
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = DefaultOpTimeout
	}
	return &Store{
		rdb:       rdb,
		ttl:       opts.DefaultTTL,
		opTimeout: opts.OpTimeout,
		now:       time.Now,
	}
}

// DefaultTTL is the lifetime given to a record on Save.
func (s *Store) DefaultTTL() time.Duration { return s.ttl }

func key(email string) string { return KeyPrefix + email }

func (s *Store) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

func (s *Store) warn(ctx context.Context, op, email string, err error) {
	slogx.FromContext(ctx).Warn("session store unavailable",
		"op", op,
		"email", email,
		"err", err,
	)
}

// Save upserts the record for email and resets its TTL. The write and the
// expiry are applied atomically.
func (s *Store) Save(ctx context.Context, email, accessToken, refreshToken string) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	k := key(email)
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, k, map[string]any{
			fieldEmail:        email,
			fieldAccessToken:  accessToken,
			fieldRefreshToken: refreshToken,
			fieldLoginTime:    s.now().UTC().Format(time.RFC3339),
		})
		p.Expire(ctx, k, s.ttl)
		return nil
	})
	if err != nil {
		s.warn(ctx, "save", email, err)
		return
	}

	slogx.FromContext(ctx).Debug("session saved",
		"email", email,
		"access_fp", cryptox.ShortFingerprint(accessToken),
		"refresh_fp", cryptox.ShortFingerprint(refreshToken),
		"ttl", s.ttl,
	)
}

// Get returns the record for email.
func (s *Store) Get(ctx context.Context, email string) (domain.Session, bool) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	fields, err := s.rdb.HGetAll(ctx, key(email)).Result()
	if err != nil {
		s.warn(ctx, "get", email, err)
		return domain.Session{}, false
	}
	if len(fields) == 0 {
		return domain.Session{}, false
	}

	sess := domain.Session{
		Email:        fields[fieldEmail],
		AccessToken:  fields[fieldAccessToken],
		RefreshToken: fields[fieldRefreshToken],
	}
	if sess.Email == "" {
		sess.Email = email
	}
	if t, err := time.Parse(time.RFC3339, fields[fieldLoginTime]); err == nil {
		sess.LoginTime = t
	}
	return sess, true
}

// Delete removes the record and reports whether one existed.
func (s *Store) Delete(ctx context.Context, email string) bool {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	n, err := s.rdb.Del(ctx, key(email)).Result()
	if err != nil {
		s.warn(ctx, "delete", email, err)
		return false
	}
	return n > 0
}

// Exists reports whether a record is present.
func (s *Store) Exists(ctx context.Context, email string) bool {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	n, err := s.rdb.Exists(ctx, key(email)).Result()
	if err != nil {
		s.warn(ctx, "exists", email, err)
		return false
	}
	return n > 0
}

// ExtendTTL sets the record to expire hours from now. It is false when
// there is no record or hours is outside 1..domain.MaxExtendHours.
func (s *Store) ExtendTTL(ctx context.Context, email string, hours int) bool {
	if hours <= 0 || hours > domain.MaxExtendHours {
		return false
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	ok, err := s.rdb.Expire(ctx, key(email), time.Duration(hours)*time.Hour).Result()
	if err != nil {
		s.warn(ctx, "extend", email, err)
		return false
	}
	return ok
}

// TTL returns the remaining lifetime of the record.
func (s *Store) TTL(ctx context.Context, email string) (time.Duration, bool) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	d, err := s.rdb.TTL(ctx, key(email)).Result()
	if err != nil {
		s.warn(ctx, "ttl", email, err)
		return 0, false
	}

	// -2 is no key, -1 is no expiry; both come back unscaled.
	if d < 0 {
		return 0, d == -1
	}
	return d, true
}

// Count returns the number of live session records.
func (s *Store) Count(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*s.opTimeout)
	defer cancel()

	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, KeyPrefix+"*", 200).Result()
		if err != nil {
			return 0, err
		}
		total += len(keys)
		if next == 0 {
			return total, nil
		}
		cursor = next
	}
}

// ErrUnavailable wraps Ping failures.
var ErrUnavailable = errors.New("session: store unavailable")

// Ping checks Redis connectivity.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	return nil
}
