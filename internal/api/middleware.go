package api

import (
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"tourdispatch/internal/metrics"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// MetricsMiddleware records request counts and latencies per method/path/status.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sr, r)
		status := strconv.Itoa(sr.status)
		metrics.HTTPRequests.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(time.Since(start).Seconds())
	})
}

// RateLimitMiddleware applies a per-client token bucket keyed by remote IP.
// RATE_LIMIT_RPS=0 (or unset) disables limiting.
func RateLimitMiddleware(next http.Handler) http.Handler {
	rps := 0.0
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			rps = f
		}
	}
	if rps <= 0 {
		return next
	}
	burst := int(rps * 2)
	if burst < 1 {
		burst = 1
	}
	var mu sync.Mutex
	limiters := map[string]*rate.Limiter{}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		mu.Lock()
		lim, ok := limiters[host]
		if !ok {
			lim = rate.NewLimiter(rate.Limit(rps), burst)
			limiters[host] = lim
		}
		mu.Unlock()
		if !lim.Allow() {
			writeProblem(w, http.StatusTooManyRequests, "Rate limit exceeded", "too many requests from this client", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}
