package middleware

import (
	"net/http"

	"hrleave/internal/transport/http/api"
)

// BodyLimit caps request body size. A declared Content-Length over the cap
// is refused up front with the JSON envelope; chunked bodies are cut off by
// MaxBytesReader once they cross it.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				api.Fail(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large", GetRequestID(r.Context()))
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
