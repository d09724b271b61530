package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/dtroode/currencyguard-server/internal/apierror"
	"github.com/dtroode/currencyguard-server/internal/logger"
)

// RateLimiterConfig holds per-client limits.
// X-Forwarded-For is honored only when the direct peer is in TrustedProxies.
type RateLimiterConfig struct {
	PerMinute       int
	Burst           int
	CleanupInterval time.Duration
	TrustedProxies  []netip.Prefix
}

// UserIDResolver reads the authenticated user from a request context.
type UserIDResolver interface {
	GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool)
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter keeps one token bucket per client. Authenticated requests are
// keyed by user ID, anonymous ones by remote IP.
type RateLimiter struct {
	rate     rate.Limit
	burst    int
	interval time.Duration
	proxies  []netip.Prefix
	users    UserIDResolver
	logger   *logger.Logger

	mu       sync.Mutex
	limiters map[string]*clientLimiter

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a RateLimiter and starts its cleanup loop.
func NewRateLimiter(config RateLimiterConfig, users UserIDResolver, logger *logger.Logger) *RateLimiter {
	if config.PerMinute <= 0 {
		config.PerMinute = 120
	}
	if config.Burst <= 0 {
		config.Burst = 1
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}

	rl := &RateLimiter{
		rate:     rate.Limit(float64(config.PerMinute) / 60.0),
		burst:    config.Burst,
		interval: config.CleanupInterval,
		proxies:  config.TrustedProxies,
		users:    users,
		logger:   logger,
		limiters: make(map[string]*clientLimiter),
		stopCh:   make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop ends the cleanup loop. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Middleware answers 429 with Retry-After once a client exhausts its bucket.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.clientKey(r)

		if !rl.limiterFor(key).Allow() {
			rl.logger.Warn("Rate limiter: limit exceeded",
				"client", key,
				"path", r.URL.Path)
			w.Header().Set("Retry-After", strconv.Itoa(rl.retryAfterSeconds()))
			WriteErrorResponse(w, apierror.NewErrRateLimited())
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Len returns the number of tracked clients.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) clientKey(r *http.Request) string {
	if rl.users != nil {
		if userID, ok := rl.users.GetUserIDFromContext(r.Context()); ok {
			return "user:" + userID.String()
		}
	}

	return "ip:" + rl.clientIP(r)
}

// clientIP returns the peer address, or the rightmost untrusted
// X-Forwarded-For entry when the peer is a trusted proxy.
func (rl *RateLimiter) clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	peer, err := netip.ParseAddr(host)
	if err != nil || !rl.trusted(peer) {
		return host
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			break
		}
		if !rl.trusted(hop) {
			return hop.Unmap().String()
		}
	}

	return host
}

func (rl *RateLimiter) trusted(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range rl.proxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, ok := rl.limiters[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = cl
	}
	cl.lastAccess = time.Now()

	return cl.limiter
}

func (rl *RateLimiter) retryAfterSeconds() int {
	seconds := int(math.Ceil(1.0 / float64(rl.rate)))
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now())
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup drops clients idle for more than two cleanup intervals.
func (rl *RateLimiter) cleanup(now time.Time) {
	ttl := rl.interval * 2

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, cl := range rl.limiters {
		if now.Sub(cl.lastAccess) > ttl {
			delete(rl.limiters, key)
		}
	}
}
