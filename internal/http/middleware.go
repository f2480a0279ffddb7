package httpapi

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/juju/ratelimit"

	"planora/internal/domain"
	"planora/internal/service"
)

type contextKey string

const organizerKey contextKey = "organizer"

// organizerFrom returns the authenticated organizer placed on the
// request context by requireAuth.
func organizerFrom(ctx context.Context) *domain.Organizer {
	org, _ := ctx.Value(organizerKey).(*domain.Organizer)
	return org
}

// requireAuth authenticates the bearer session token and rejects the
// request with 401 otherwise.
func requireAuth(auth service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			org, err := auth.Authenticate(r.Context(), bearerToken(r))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, Fail("unauthorized"))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), organizerKey, org)))
		})
	}
}

// RateLimiter token-bucket per client IP. Buckets idle past the
// sweep interval are dropped to bound memory.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*clientBucket
	rate    float64
	burst   int64
	stop    chan struct{}
}

type clientBucket struct {
	bucket   *ratelimit.Bucket
	lastSeen time.Time
}

func NewRateLimiter(perSecond float64, burst int64) *RateLimiter {
	l := &RateLimiter{
		buckets: map[string]*clientBucket{},
		rate:    perSecond,
		burst:   burst,
		stop:    make(chan struct{}),
	}
	go l.sweep()
	return l
}

// Close stops the background sweep goroutine.
func (l *RateLimiter) Close() {
	close(l.stop)
}

func (l *RateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[ip]
	if !ok {
		b = &clientBucket{bucket: ratelimit.NewBucketWithRate(l.rate, l.burst)}
		l.buckets[ip] = b
	}
	b.lastSeen = time.Now()
	return b.bucket.TakeAvailable(1) > 0
}

func (l *RateLimiter) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.evictIdle(time.Now().Add(-10 * time.Minute))
		case <-l.stop:
			return
		}
	}
}

func (l *RateLimiter) evictIdle(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, ip)
		}
	}
}

// rateLimit guards the public RSVP and auth endpoints.
func rateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			if !limiter.allow(ip) {
				writeJSON(w, http.StatusTooManyRequests, Fail("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
