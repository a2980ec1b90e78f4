package baldr

import (
	"bytes"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures the RateLimit middleware.
type RateLimitConfig struct {
	Rate  float64 // requests per second
	Burst int     // max burst

	// KeyFunc derives the limiting key from a request. Default: remote IP.
	KeyFunc func(r *http.Request) string

	// OnLimit writes the response for a limited request. The default
	// encodes an Error resource negotiated against Codecs.
	OnLimit func(w http.ResponseWriter, r *http.Request)

	// Codecs is the registry the default OnLimit negotiates against.
	// Default: DefaultCodecRegistry().
	Codecs *CodecRegistry

	CleanupInterval time.Duration // how often to prune idle visitors (default: 1m)
	MaxIdle         time.Duration // drop visitors idle longer than this (default: 5m)
}

// RateLimit returns middleware that applies per-key rate limiting. A
// limited request gets a Retry-After header and, by default, an encoded
// 429 Error resource in the negotiated wire format.
func RateLimit(cfg RateLimitConfig) Middleware {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = remoteHost
	}
	if cfg.Codecs == nil {
		cfg.Codecs = DefaultCodecRegistry()
	}
	if cfg.OnLimit == nil {
		cfg.OnLimit = limitExceeded(cfg.Codecs)
	}

	interval := cfg.CleanupInterval
	if interval <= 0 {
		interval = time.Minute
	}
	maxIdle := cfg.MaxIdle
	if maxIdle <= 0 {
		maxIdle = 5 * time.Minute
	}

	visitors := &visitorTable{
		entries:  make(map[string]*visitor),
		limit:    rate.Limit(cfg.Rate),
		burst:    cfg.Burst,
		interval: interval,
		maxIdle:  maxIdle,
	}

	retryAfter := strconv.FormatFloat(1/cfg.Rate, 'f', 0, 64)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !visitors.limiter(cfg.KeyFunc(r)).Allow() {
				w.Header().Set("Retry-After", retryAfter)
				cfg.OnLimit(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// limitExceeded builds the default OnLimit: an Error resource encoded in
// the wire format negotiated from the request, so a limited response
// reads like any other error response.
func limitExceeded(codecs *CodecRegistry) func(w http.ResponseWriter, r *http.Request) {
	var fallback string
	if def := codecs.Default(); def != nil {
		fallback = def.ContentType()
	}
	resolvers := DefaultResolvers(fallback)

	return func(w http.ResponseWriter, r *http.Request) {
		e := &Error{
			Status:  http.StatusTooManyRequests,
			Code:    42900,
			Message: "Too many requests, please try again later.",
		}

		codec, ok := codecs.Resolve(resolveContentType(resolvers, r, codecs))
		if !ok {
			http.Error(w, e.Message, e.Status)
			return
		}

		var buf bytes.Buffer
		if err := codec.Encode(&buf, e); err != nil {
			http.Error(w, e.Message, e.Status)
			return
		}
		w.Header().Set("Content-Type", codec.ContentType())
		w.WriteHeader(e.Status)
		w.Write(buf.Bytes()) //nolint:errcheck,gosec // best-effort after WriteHeader
	}
}

// visitorTable tracks one limiter per key, pruning idle entries lazily on
// access instead of running a background goroutine.
type visitorTable struct {
	mu        sync.Mutex
	entries   map[string]*visitor
	limit     rate.Limit
	burst     int
	interval  time.Duration
	maxIdle   time.Duration
	lastPrune time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func (t *visitorTable) limiter(key string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	if now.Sub(t.lastPrune) >= t.interval {
		for k, v := range t.entries {
			if now.Sub(v.lastSeen) > t.maxIdle {
				delete(t.entries, k)
			}
		}
		t.lastPrune = now
	}

	v, ok := t.entries[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.entries[key] = v
	}
	v.lastSeen = now
	return v.limiter
}
