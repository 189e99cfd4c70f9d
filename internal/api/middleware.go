package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const requestIDHeader = "X-Request-Id"

type requestIDKeyType int

var requestIDKey requestIDKeyType

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := random.String(16)
		if err != nil {
			id = strconv.FormatInt(time.Now().UnixNano(), 36)
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		span.SetAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.path", r.URL.Path),
			attribute.String("http.remote_addr", r.RemoteAddr),
			attribute.String("request_id", requestIDFrom(ctx)),
			attribute.Int("http.status_code", rec.status),
		)
	})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.DebugContext(
			r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
			"request_id", requestIDFrom(r.Context()),
		)
	})
}

func (s Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			s.persist(r, "panic", fmt.Sprint(rec), string(debug.Stack()))
			writeError(w, http.StatusInternalServerError, "Internal Server Error", "unexpected failure")
		}()
		next.ServeHTTP(w, r)
	})
}

// limiterCache hands out one token bucket per client, buckets of clients that
// have been quiet for a window are evicted.
type limiterCache struct {
	limiters *expirable.LRU[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
	window   time.Duration
}

func newLimiterCache(requests int, window time.Duration) *limiterCache {
	return &limiterCache{
		limiters: expirable.NewLRU[string, *rate.Limiter](8192, nil, window),
		limit:    rate.Every(window / time.Duration(requests)),
		burst:    requests,
		window:   window,
	}
}

func (c *limiterCache) get(key string) *rate.Limiter {
	limiter, ok := c.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(c.limit, c.burst)
	}
	// re-adding refreshes the expiry
	c.limiters.Add(key, limiter)
	return limiter
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func rateLimit(cache *limiterCache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cache.get(clientKey(r)).Allow() {
				w.Header().Set("Retry-After", strconv.Itoa(int(cache.window.Seconds())))
				writeError(w, http.StatusTooManyRequests, "Too Many Requests", "rate limit exceeded, try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
