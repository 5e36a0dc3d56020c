package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

var (
	defaultCORSMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	defaultCORSHeaders = []string{"Accept", "Authorization", "Content-Type", CorrelationHeader, "X-Publishable-Api-Key"}
)

// CORSConfig configures one CORS policy. The admin and store route groups
// each get their own.
type CORSConfig struct {
	// AllowedOrigins lists exact origins such as "http://localhost:8000".
	// "*" allows any origin.
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	ExposedHeaders []string
	// MaxAge is the preflight cache lifetime in seconds; 0 means one hour.
	MaxAge           int
	AllowCredentials bool
	// Environment "development" allows any origin.
	Environment string
}

// CORS sets the CORS response headers for allowed origins and answers
// preflight requests with 204. Requests from other origins get no CORS
// headers, so browsers block them.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	methods := strings.Join(orDefault(cfg.AllowedMethods, defaultCORSMethods), ", ")
	headers := strings.Join(orDefault(cfg.AllowedHeaders, defaultCORSHeaders), ", ")
	exposed := strings.Join(cfg.ExposedHeaders, ", ")
	maxAge := cfg.MaxAge
	if maxAge == 0 {
		maxAge = 3600
	}

	anyOrigin := cfg.Environment == "development"
	origins := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			anyOrigin = true
		}
		origins[strings.TrimRight(o, "/")] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			h := w.Header()
			h.Add("Vary", "Origin")

			_, listed := origins[origin]
			if origin != "" && (anyOrigin || listed) {
				// Credentialed requests cannot use "*", so the origin is echoed.
				h.Set("Access-Control-Allow-Origin", origin)
				if cfg.AllowCredentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
				if exposed != "" {
					h.Set("Access-Control-Expose-Headers", exposed)
				}
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", headers)
				h.Set("Access-Control-Max-Age", strconv.Itoa(maxAge))
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func orDefault(values, fallback []string) []string {
	if len(values) == 0 {
		return fallback
	}
	return values
}
