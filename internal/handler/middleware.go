package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/GoArmGo/VideoTube/internal/domain"
)

// RequestLogger — middleware для логирования HTTP-запросов.
func RequestLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Оборачиваем ResponseWriter, чтобы знать статус
			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r)

			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// responseWriter нужен, чтобы перехватывать код ответа
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

type viewerKey struct{}

// ViewerContext извлекает id зрителя из заголовка header, выставленного
// шлюзом аутентификации. Отсутствующий заголовок — аноним, некорректный — 400.
func ViewerContext(header string, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			viewer, err := domain.ParseViewerID(r.Header.Get(header))
			if err != nil {
				logger.Warn("malformed viewer header", "header", header, "path", r.URL.Path)
				respondWithError(w, err, logger)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), viewerKey{}, viewer)))
		})
	}
}

// viewerFrom возвращает зрителя запроса; без middleware — аноним.
func viewerFrom(ctx context.Context) domain.ViewerID {
	v, _ := ctx.Value(viewerKey{}).(domain.ViewerID)
	return v
}
