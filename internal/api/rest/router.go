package rest

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tduarte/shorts-server/internal/logger"
)

// NewRouter wires every endpoint onto a ServeMux. Short and user ids are
// plain path segments; short ids carry their '+' separator literally.
func NewRouter(
	users *UsersHandler,
	shorts *ShortsHandler,
	blobs *BlobsHandler,
	l *logger.Logger,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /users", users.CreateUser)
	mux.HandleFunc("GET /users", users.SearchUsers)
	mux.HandleFunc("GET /users/me", users.Me)
	mux.HandleFunc("GET /users/{userId}", users.GetUser)
	mux.HandleFunc("PUT /users/{userId}", users.UpdateUser)
	mux.HandleFunc("DELETE /users/{userId}", users.DeleteUser)
	mux.HandleFunc("POST /users/{userId}/login", users.Login)

	mux.HandleFunc("POST /shorts/{userId}", shorts.CreateShort)
	mux.HandleFunc("GET /shorts/{shortId}", shorts.GetShort)
	mux.HandleFunc("DELETE /shorts/{shortId}", shorts.DeleteShort)
	mux.HandleFunc("GET /shorts/{userId}/shorts", shorts.GetShorts)
	mux.HandleFunc("PUT /shorts/{shortId}/{userId}/likes", shorts.Like)
	mux.HandleFunc("GET /shorts/{shortId}/likes", shorts.Likes)
	mux.HandleFunc("PUT /shorts/{userId1}/{userId2}/followers", shorts.Follow)
	mux.HandleFunc("GET /shorts/{userId}/followers", shorts.Followers)
	mux.HandleFunc("GET /shorts/{userId}/feed", shorts.GetFeed)

	mux.HandleFunc("POST /blobs/{shortId}", blobs.Upload)
	mux.HandleFunc("GET /blobs/{shortId}", blobs.Download)
	mux.HandleFunc("DELETE /blobs/{shortId}", blobs.Delete)
	mux.HandleFunc("DELETE /blobs/{userId}/blobs", blobs.DeleteAll)

	mux.Handle("GET /metrics", promhttp.Handler())

	return withLogging(mux, l)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func withLogging(next http.Handler, l *logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		l.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
		)
	})
}
