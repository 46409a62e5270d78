package route

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"evtd/src-server/jwt"
	"evtd/src-server/store"
	"evtd/src-server/utils"
)

// AuthMiddleware resolves the caller from a bearer token. Requests without a
// token go through anonymously; a token that doesn't verify is rejected.
func AuthMiddleware(as *utils.AppState, next func(http.ResponseWriter, *http.Request)) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
		if authHeader == "" {
			next(w, r)
			return
		}

		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeError(w, http.StatusUnauthorized, "Authorization header must be a bearer token")
			return
		}

		payload, err := jwt.Decode(strings.TrimSpace(token), as.Config.GetJWTSecret())
		if err != nil {
			slog.Debug("rejected token", "error", err)
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		slog.Debug("authenticated request", "user_id", payload.UserID, "user_name", payload.UserName)
		next(w, r.WithContext(store.WithCaller(r.Context(), payload.UserID)))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// RequestLogger logs one line per request once it's served.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTimer := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(startTimer))
	})
}
