package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"fitai-backend/internal/models"
)

// CounterStore counts hits per key inside a fixed window.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (int, error)
}

type visitor struct {
	count    int
	lastSeen time.Time
}

// MemoryStore keeps counters in process.
type MemoryStore struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	window   time.Duration
	now      func() time.Time
	stop     chan struct{}
	once     sync.Once
}

func NewMemoryStore(window time.Duration) *MemoryStore {
	s := &MemoryStore{
		visitors: make(map[string]*visitor),
		window:   window,
		now:      time.Now,
		stop:     make(chan struct{}),
	}

	// Cleanup goroutine
	go func() {
		ticker := time.NewTicker(window)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stop:
				return
			}
		}
	}()

	return s
}

func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, v := range s.visitors {
		if s.now().Sub(v.lastSeen) > s.window {
			delete(s.visitors, key)
		}
	}
}

// Incr counts a hit. The window slides with each hit, matching a visitor that
// keeps hammering the endpoint.
func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	v, exists := s.visitors[key]
	if !exists || now.Sub(v.lastSeen) > window {
		s.visitors[key] = &visitor{count: 1, lastSeen: now}
		return 1, nil
	}
	v.count++
	v.lastSeen = now
	return v.count, nil
}

func (s *MemoryStore) Close() {
	s.once.Do(func() { close(s.stop) })
}

// RedisStore shares counters between instances. The window starts at the
// first hit and does not slide.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int, error) {
	k := s.prefix + key
	n, err := s.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, fmt.Errorf("rate limit counter: %w", err)
	}
	if n == 1 {
		if err := s.client.Expire(ctx, k, window).Err(); err != nil {
			return 0, fmt.Errorf("rate limit expiry: %w", err)
		}
	}
	return int(n), nil
}

type RateLimiter struct {
	store  CounterStore
	limit  int
	window time.Duration
	log    *slog.Logger
}

func NewRateLimiter(store CounterStore, limit int, window time.Duration, log *slog.Logger) *RateLimiter {
	if log == nil {
		log = slog.Default()
	}
	return &RateLimiter{store: store, limit: limit, window: window, log: log}
}

// Allow charges one hit to key and reports whether it is within the limit.
// A store failure allows the hit.
func (rl *RateLimiter) Allow(ctx context.Context, key string) bool {
	if rl.limit <= 0 {
		return true
	}
	count, err := rl.store.Incr(ctx, key, rl.window)
	if err != nil {
		rl.log.Warn("rate limiter unavailable", "error", err)
		return true
	}
	return count <= rl.limit
}

// Middleware rejects callers over the limit with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(r.Context(), ClientIP(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			writeError(w, http.StatusTooManyRequests, RateLimitedResponse(r.Header.Get(RequestIDHeader)))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimitedResponse is the body sent to callers over the limit.
func RateLimitedResponse(requestID string) models.ErrorResponse {
	return models.ErrorResponse{
		Error:      "Too many requests. Please try again later.",
		Suggestion: "Wait a moment and try again",
		RequestID:  requestID,
	}
}

// ClientIP is the caller's address without the port. Run after RealIP.
func ClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func writeError(w http.ResponseWriter, status int, body models.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
