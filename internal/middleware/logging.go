package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"application-auth/internal/pkg/log"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

// statusWriter запоминает код ответа для access-лога.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Logging присваивает запросу request_id (из входящего X-Request-Id или
// новый), кладёт в контекст логгер с ним и пишет одну строку на запрос.
// Тот же request_id возвращается клиенту в заголовке ответа.
func Logging(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqID := r.Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}

			lg := base.With(slog.String("request_id", reqID))
			ctx := log.Into(r.Context(), lg)

			w.Header().Set(requestIDHeader, reqID)

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r.WithContext(ctx))

			lg.Info("http_request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", sw.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}
