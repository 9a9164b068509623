package httpx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig describes a token bucket: RequestsPerWindow tokens refill
// evenly over Window, and at most Burst can be spent back to back.
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

// Default route classes.
var (
	// StrictLimit guards credential checks.
	StrictLimit = RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	// ModerateLimit guards token rotation and session changes.
	ModerateLimit = RateLimitConfig{RequestsPerWindow: 20, Window: time.Minute, Burst: 20}

	// LenientLimit guards reads and health probes.
	LenientLimit = RateLimitConfig{RequestsPerWindow: 100, Window: time.Minute, Burst: 100}
)

// ParseRateLimit reads "<requests>/<window>" with an optional "+<burst>",
// e.g. "5/1m" or "20/30s+40". Burst defaults to requests.
func ParseRateLimit(s string) (RateLimitConfig, error) {
	spec, burst, hasBurst := strings.Cut(strings.TrimSpace(s), "+")
	requests, window, ok := strings.Cut(spec, "/")
	if !ok {
		return RateLimitConfig{}, fmt.Errorf("rate limit %q: want <requests>/<window>[+<burst>]", s)
	}

	n, err := strconv.Atoi(strings.TrimSpace(requests))
	if err != nil || n <= 0 {
		return RateLimitConfig{}, fmt.Errorf("rate limit %q: requests must be a positive integer", s)
	}
	w, err := time.ParseDuration(strings.TrimSpace(window))
	if err != nil || w <= 0 {
		return RateLimitConfig{}, fmt.Errorf("rate limit %q: window must be a positive duration", s)
	}

	cfg := RateLimitConfig{RequestsPerWindow: n, Window: w, Burst: n}
	if hasBurst {
		b, err := strconv.Atoi(strings.TrimSpace(burst))
		if err != nil || b <= 0 {
			return RateLimitConfig{}, fmt.Errorf("rate limit %q: burst must be a positive integer", s)
		}
		cfg.Burst = b
	}
	return cfg, nil
}

// OrDefault returns c, or def when c is unset.
func (c RateLimitConfig) OrDefault(def RateLimitConfig) RateLimitConfig {
	if c == (RateLimitConfig{}) {
		return def
	}
	return c
}

// KeyExtractor names the bucket a request draws from. An empty key means
// the request is not limited.
type KeyExtractor func(*http.Request) string

// SubjectKeyExtractor keys on the authenticated principal's subject.
func SubjectKeyExtractor(r *http.Request) string {
	if p, ok := PrincipalFromContext(r.Context()); ok {
		return p.Subject
	}
	return ""
}

// CompositeKeyExtractor joins the non-empty keys of extractors with sep.
func CompositeKeyExtractor(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(extractors))
		for _, extract := range extractors {
			if key := extract(r); key != "" {
				parts = append(parts, key)
			}
		}
		return strings.Join(parts, sep)
	}
}

// JSONFieldKeyExtractor keys on a top-level string field of a JSON body,
// passed through normalize when it is non-nil. The body is replayed to the
// handler untouched.
func JSONFieldKeyExtractor(field string, normalize func(string) string) KeyExtractor {
	return func(r *http.Request) string {
		if r.Body == nil || r.Body == http.NoBody {
			return ""
		}

		raw, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes))
		r.Body = replayBody{Reader: io.MultiReader(bytes.NewReader(raw), r.Body), Closer: r.Body}
		if err != nil {
			return ""
		}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return ""
		}
		var value string
		if err := json.Unmarshal(fields[field], &value); err != nil {
			return ""
		}
		if normalize != nil {
			value = normalize(value)
		}
		return value
	}
}

type replayBody struct {
	io.Reader
	io.Closer
}

// buckets holds one limiter per key. A bucket that has sat unused long
// enough to refill completely is indistinguishable from a new one, so the
// periodic sweep drops it.
type buckets struct {
	limit rate.Limit
	burst int
	idle  time.Duration

	mu        sync.Mutex
	byKey     map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newBuckets(cfg RateLimitConfig, now time.Time) *buckets {
	burst := max(cfg.Burst, 1)
	requests := max(cfg.RequestsPerWindow, 1)

	return &buckets{
		limit:     rate.Every(cfg.Window / time.Duration(requests)),
		burst:     burst,
		idle:      max(cfg.Window*time.Duration(burst)/time.Duration(requests), time.Minute),
		byKey:     make(map[string]*bucket),
		lastSweep: now,
	}
}

// take spends a token from key's bucket. It returns zero when the request
// may proceed, otherwise the wait until the next token.
func (b *buckets) take(key string, now time.Time) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Sub(b.lastSweep) >= b.idle {
		for k, bk := range b.byKey {
			if now.Sub(bk.lastSeen) >= b.idle {
				delete(b.byKey, k)
			}
		}
		b.lastSweep = now
	}

	bk, ok := b.byKey[key]
	if !ok {
		bk = &bucket{limiter: rate.NewLimiter(b.limit, b.burst)}
		b.byKey[key] = bk
	}
	bk.lastSeen = now

	res := bk.limiter.ReserveN(now, 1)
	if wait := res.DelayFrom(now); wait > 0 {
		res.CancelAt(now)
		return wait
	}
	return 0
}

func (b *buckets) size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.byKey)
}

// RateLimit answers 429 with a Retry-After header once the bucket named by
// key is empty.
func RateLimit(cfg RateLimitConfig, key KeyExtractor) Middleware {
	return rateLimit(cfg, key, time.Now)
}

func rateLimit(cfg RateLimitConfig, key KeyExtractor, now func() time.Time) Middleware {
	set := newBuckets(cfg, now())

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				slogx.FromContext(r.Context()).Debug("rate limit skipped, no key")
				next.ServeHTTP(w, r)
				return
			}

			if wait := set.take(k, now()); wait > 0 {
				writeRateLimited(w, r, cfg, wait)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeRateLimited(w http.ResponseWriter, r *http.Request, cfg RateLimitConfig, wait time.Duration) {
	retryAfter := max(int(math.Ceil(wait.Seconds())), 1)

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerWindow))
	w.Header().Set("X-RateLimit-Window", cfg.Window.String())

	// Keys may embed an email, so only the route is logged.
	slogx.FromContext(r.Context()).Warn("rate limit exceeded",
		"path", r.URL.Path,
		"retry_after", retryAfter,
	)

	WriteJSON(w, http.StatusTooManyRequests, map[string]string{
		"code":    "C006",
		"error":   "rate_limit_exceeded",
		"message": "too many requests, please try again later",
	})
}
