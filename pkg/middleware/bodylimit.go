package middleware

import (
	"net/http"

	"github.com/shubhamchoudhary-2003/fullstack/pkg/httputil"
)

// BodyLimit rejects requests whose declared Content-Length exceeds n with 413
// and caps the body of the rest at n bytes, so reads past the limit fail with
// *http.MaxBytesError and the connection is closed after the response.
func BodyLimit(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > n {
				writeError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", httputil.MsgBodyTooLarge)
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}
