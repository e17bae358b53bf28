package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"hrleave/internal/requestctx"
)

const requestIDHeader = "X-Request-ID"

// maxRequestIDLen keeps caller-supplied ids from bloating logs.
const maxRequestIDLen = 64

// RequestID adopts the caller's X-Request-ID when it looks sane and mints a
// UUID otherwise. The id is echoed on the response header and carried on the
// request context for handlers and log lines.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if reqID == "" || len(reqID) > maxRequestIDLen {
			reqID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, reqID)
		ctx := requestctx.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRequestID(ctx context.Context) string {
	return requestctx.GetRequestID(ctx)
}
