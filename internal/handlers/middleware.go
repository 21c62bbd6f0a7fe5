package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"calmcompanion/internal/security"
	"calmcompanion/internal/service"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	caregiverService *service.CaregiverService
	limiter          *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(caregiverService *service.CaregiverService, limiter *security.RateLimiter) *Middleware {
	return &Middleware{
		caregiverService: caregiverService,
		limiter:          limiter,
	}
}

// RequireCaregiver is middleware that requires a valid caregiver token once a
// PIN has been set. Without a PIN the route is open.
func (m *Middleware) RequireCaregiver(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.caregiverService.HasPIN(r.Context()) {
			next(w, r)
			return
		}

		token := bearerToken(r)
		if err := m.caregiverService.Verify(token); err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="caregiver"`)
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}
		next(w, r)
	}
}

// RateLimit rejects clients that exceed the limiter's budget
func (m *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.limiter.Allow(security.GetClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			respondWithError(w, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get(CaregiverTokenHeader)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
