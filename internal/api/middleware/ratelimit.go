package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxRateLimitClients = 10000

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter caps API requests per client address with a token bucket.
type RateLimiter struct {
	mu        sync.Mutex
	perMinute int
	limit     rate.Limit
	burst     int
	clients   map[string]*clientLimiter
	log       *zap.Logger
	now       func() time.Time
}

// NewRateLimiter allows perMinute requests a minute per client, bursting up to
// the same amount. perMinute <= 0 disables limiting.
func NewRateLimiter(perMinute int, log *zap.Logger) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientLimiter),
		log:     log,
		now:     time.Now,
	}
	if perMinute > 0 {
		rl.perMinute = perMinute
		rl.limit = rate.Limit(float64(perMinute) / 60)
		rl.burst = perMinute
	}
	return rl
}

func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if rl.burst == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			if !rl.allow(key) {
				rl.log.Warn("rate limit exceeded", zap.String("client", key), zap.String("path", r.URL.Path))
				w.Header().Set("Retry-After", strconv.Itoa(rl.retryAfter()))
				writeMessage(w, http.StatusTooManyRequests, "Too Many Attempts.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	c, ok := rl.clients[key]
	if !ok {
		if len(rl.clients) >= maxRateLimitClients {
			rl.pruneLocked(now)
		}
		c = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// retryAfter is the number of seconds until one more request is allowed.
func (rl *RateLimiter) retryAfter() int {
	return (60 + rl.perMinute - 1) / rl.perMinute
}

// pruneLocked drops clients whose bucket has refilled.
func (rl *RateLimiter) pruneLocked(now time.Time) {
	for key, c := range rl.clients {
		if c.limiter.TokensAt(now) >= float64(rl.burst) {
			delete(rl.clients, key)
		}
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
