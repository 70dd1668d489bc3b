package middleware

import (
	"log/slog"
	"net/http"

	"github.com/rankscore/aeo-insight/internal/platform/requestid"
)

// Recover turns a handler panic into an error log entry and, if the handler
// had not started its response yet, a 500.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			defer func() {
				if v := recover(); v != nil {
					logger.Error("handler panic",
						"panic", v,
						"path", r.URL.Path,
						"response_started", rw.wroteHeader,
						requestid.Attr(r.Context()),
					)
					if !rw.wroteHeader {
						http.Error(rw, `{"error":"Internal Server Error"}`, http.StatusInternalServerError)
					}
				}
			}()
			next.ServeHTTP(rw, r)
		})
	}
}

// Chain applies middleware so the first argument is the outermost wrapper.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
