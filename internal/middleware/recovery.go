package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"belongings/internal/httputil"
)

// Recovery turns a handler panic into a 500. When the handler had already
// started the response (an open event stream) nothing more is written.
// Place it inside RequestLogger so the 500 is logged and counted.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tw := &headerTracker{ResponseWriter: w}
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				attrs := []any{
					"panic", fmt.Sprint(rec),
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				}
				if info := requestInfoFrom(r.Context()); info != nil && info.userID != "" {
					attrs = append(attrs, "user_id", info.userID)
				}
				logger.Error("panic recovered", attrs...)

				if !tw.wrote {
					httputil.RespondError(tw, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(tw, r)
		})
	}
}

// headerTracker remembers whether the status line went out.
type headerTracker struct {
	http.ResponseWriter
	wrote bool
}

func (h *headerTracker) WriteHeader(code int) {
	h.wrote = true
	h.ResponseWriter.WriteHeader(code)
}

func (h *headerTracker) Write(b []byte) (int, error) {
	h.wrote = true
	return h.ResponseWriter.Write(b)
}

func (h *headerTracker) Flush() {
	if f, ok := h.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *headerTracker) Unwrap() http.ResponseWriter {
	return h.ResponseWriter
}
