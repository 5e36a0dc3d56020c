package middleware

import (
	"fmt"
	"net/http"
	"time"
)

// CacheControl marks successful GET and HEAD responses as publicly cacheable
// for maxAge, allowing a stale copy to be served for as long again while a
// cache refreshes it.
func CacheControl(maxAge time.Duration) func(http.Handler) http.Handler {
	secs := int(maxAge.Seconds())
	value := fmt.Sprintf("public, max-age=%d, stale-while-revalidate=%d", secs, secs)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				w.Header().Set("Cache-Control", value)
			}
			next.ServeHTTP(w, r)
		})
	}
}
