package middleware

import (
	"net/http"
	"time"

	"ecopredict/utils"
)

// LoggingResponseWriter запоминает код ответа для логирования
type LoggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (lrw *LoggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *LoggingResponseWriter) Write(b []byte) (int, error) {
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware логирует информацию о запросе и ответе
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		lrw := &LoggingResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(lrw, r)

		utils.LogDebug(
			"Method: %s, Path: %s, Status: %d, Duration: %v, Size: %d",
			r.Method,
			r.URL.Path,
			lrw.statusCode,
			time.Since(start),
			lrw.size,
		)
	})
}
