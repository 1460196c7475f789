package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the API surface. Auth routes and the health check are
// public; everything else sits behind the request gate.
func NewRouter(log *slog.Logger, server *Server, validator TokenValidator) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logRequests(log))

	r.Get("/health", server.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", server.Login)
		r.Post("/auth/logout", server.Logout)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(log, validator))

			r.Post("/agents/list", server.ListAgents)
			r.Post("/tokens", server.MintToken)

			r.Route("/rooms", func(r chi.Router) {
				r.Post("/", server.CreateRoom)
				r.Get("/", server.ListRooms)
				r.Get("/{roomName}", server.GetRoom)
				r.Delete("/{roomName}", server.DeleteRoom)
			})
		})
	})

	return r
}

func logRequests(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}
