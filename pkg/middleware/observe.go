package middleware

import (
	"net/http"
	"time"
)

// Observation describes a completed request. Pattern is the ServeMux pattern
// that matched, or empty when none did.
type Observation struct {
	Method   string
	Pattern  string
	Status   int
	Duration time.Duration
}

// Observe calls fn after each request completes.
func Observe(fn func(Observation)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := record(w)

			next.ServeHTTP(rec, r)

			fn(Observation{
				Method:   r.Method,
				Pattern:  r.Pattern,
				Status:   rec.Status(),
				Duration: time.Since(start),
			})
		})
	}
}
