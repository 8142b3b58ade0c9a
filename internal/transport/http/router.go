package http

import (
	"log/slog"
	"net/http"
	"time"

	"application-auth/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// NewRouter собирает роутер сервиса: публичные маршруты сессии и защищённые
// маршруты за Authenticate. Порядок middleware: логирование (request_id) —
// первым, чтобы паника и таймаут попали в access-лог.
func NewRouter(lg *slog.Logger, auth Auth, timeout time.Duration) http.Handler {
	h := NewHandler(auth)

	r := chi.NewRouter()
	r.Use(middleware.Logging(lg))
	r.Use(middleware.Recover)
	r.Use(middleware.Timeout(timeout))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/admin/login", h.AdminLogin)
		r.Post("/refresh", h.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(auth))
			r.Post("/logout", h.Logout)
			r.Get("/me", h.Me)
		})
	})

	return r
}
