package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sarisari/backoffice/api/responses"
	"github.com/sarisari/backoffice/pkg/config"
	pkgerrors "github.com/sarisari/backoffice/pkg/errors"
	"github.com/sarisari/backoffice/pkg/logger"
	redisclient "github.com/sarisari/backoffice/pkg/redis"
)

const (
	maxAuthBodyBytes = 64 << 10
	msgRateLimited   = "Too many attempts. Please try again later."
)

type rateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// rateSubject extracts what a counter is keyed on; "" skips the counter.
type rateSubject func(r *http.Request, body []byte) string

type rateCounter struct {
	scope    string
	limit    int
	readBody bool
	subject  rateSubject
}

// AuthRateLimitPolicy throttles one auth endpoint with fixed-window counters
// per client IP and per hashed e-mail.
type AuthRateLimitPolicy struct {
	name     string
	window   time.Duration
	counters []rateCounter
}

// NewAuthRateLimitPolicy builds a policy. A zero limit disables that counter.
func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	p := AuthRateLimitPolicy{name: name, window: window}
	if ipLimit > 0 {
		p.counters = append(p.counters, rateCounter{scope: "ip", limit: ipLimit, subject: ipSubject})
	}
	if emailLimit > 0 {
		p.counters = append(p.counters, rateCounter{scope: "email", limit: emailLimit, readBody: true, subject: emailSubject})
	}
	return p
}

// LoginRateLimit is the policy for POST /api/v1/auth/login.
func LoginRateLimit(cfg config.AuthRateLimitConfig) AuthRateLimitPolicy {
	return NewAuthRateLimitPolicy("login", cfg.LoginWindow, cfg.LoginIPLimit, cfg.LoginEmailLimit)
}

// RegisterRateLimit is the policy for POST /api/v1/auth/register.
func RegisterRateLimit(cfg config.AuthRateLimitConfig) AuthRateLimitPolicy {
	return NewAuthRateLimitPolicy("register", cfg.RegisterWindow, cfg.RegisterIPLimit, cfg.RegisterEmailLimit)
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && len(p.counters) > 0
}

func (p AuthRateLimitPolicy) readsBody() bool {
	for _, c := range p.counters {
		if c.readBody {
			return true
		}
	}
	return false
}

func (p AuthRateLimitPolicy) key(scope, subject string) string {
	return redisclient.BuildKey("rl", scope, p.name, subject)
}

// retryAfter is the Retry-After value in whole seconds.
func (p AuthRateLimitPolicy) retryAfter() string {
	return strconv.Itoa(int(math.Ceil(p.window.Seconds())))
}

// AuthRateLimit counts each request against every counter of policy and
// answers 429 with Retry-After once one of them passes its limit. A counter
// store failure answers 503.
func AuthRateLimit(policy AuthRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var body []byte
			if policy.readsBody() && r.Body != nil {
				var err error
				body, err = io.ReadAll(io.LimitReader(r.Body, maxAuthBodyBytes))
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
			}

			for _, c := range policy.counters {
				subject := c.subject(r, body)
				if subject == "" {
					continue
				}
				count, err := store.IncrWithTTL(ctx, policy.key(c.scope, subject), policy.window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if count > int64(c.limit) {
					if logg != nil {
						logg.Warn(logg.WithFields(ctx, map[string]any{
							"policy":         policy.name,
							"scope":          c.scope,
							"subject":        subject,
							"attempts":       count,
							"limit":          c.limit,
							"window_seconds": int(policy.window.Seconds()),
						}), "auth.rate_limit.blocked")
					}
					w.Header().Set("Retry-After", policy.retryAfter())
					responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, msgRateLimited))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ipSubject(r *http.Request, _ []byte) string {
	return clientIP(r)
}

// emailSubject hashes the normalized e-mail so raw addresses never reach
// Redis or the logs.
func emailSubject(_ *http.Request, body []byte) string {
	var payload struct {
		Email string `json:"email"`
	}
	if len(body) == 0 || json.Unmarshal(body, &payload) != nil {
		return ""
	}
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" {
		return ""
	}
	return hashValue(email)
}

func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
