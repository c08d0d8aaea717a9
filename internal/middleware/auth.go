package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"belongings/internal/auth"
	"belongings/internal/httputil"
)

// Paths served without a token.
var publicPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// Paths that may carry the token as ?access_token=, since EventSource
// cannot set request headers.
var queryTokenPaths = map[string]bool{
	"/api/events": true,
}

// Auth verifies the bearer token and stores the user id in the request context.
func Auth(verifier auth.TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r)
			if token == "" && queryTokenPaths[r.URL.Path] {
				token = r.URL.Query().Get("access_token")
			}
			if token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Debug("authentication failed", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			userID := claims.GetUserID()
			if info := requestInfoFrom(r.Context()); info != nil {
				info.userID = userID
			}
			next.ServeHTTP(w, httputil.WithUserID(r, userID))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
