package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/sxastarter/lastmod-proxy/internal/metrics"
)

type contextKey string

var (
	contextKeySite         = contextKey("site")
	contextKeyLastModified = contextKey("last-modified")
)

type LoggingMiddleware struct {
	logger *slog.Logger
	next   http.Handler
}

func WithLoggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return &LoggingMiddleware{
		logger: logger,
		next:   next,
	}
}

func (h *LoggingMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writer := newLoggerResponseWriter(w)

	var site string
	var lastModified string
	ctx := context.WithValue(r.Context(), contextKeySite, &site)
	ctx = context.WithValue(ctx, contextKeyLastModified, &lastModified)
	r = r.WithContext(ctx)

	started := time.Now()
	h.next.ServeHTTP(writer, r)
	elapsed := time.Since(started)

	metrics.Tracker.TrackRequest(site, r.Method, writer.statusCode, elapsed)

	remoteAddr := r.Header.Get("X-Forwarded-For")
	if remoteAddr == "" {
		remoteAddr = r.RemoteAddr
	}

	h.logger.LogAttrs(r.Context(), slog.LevelInfo, "Request",
		slog.String("host", r.Host),
		slog.String("path", r.URL.Path),
		slog.String("request_id", r.Header.Get(requestIDHeader)),
		slog.Int("status", writer.statusCode),
		slog.String("site", site),
		slog.String("last_modified", lastModified),
		slog.Int64("duration", elapsed.Nanoseconds()),
		slog.String("method", r.Method),
		slog.Int64("resp_content_length", writer.bytesWritten),
		slog.String("resp_content_type", writer.Header().Get("Content-Type")),
		slog.String("remote_addr", remoteAddr),
		slog.String("user_agent", r.Header.Get("User-Agent")),
		slog.String("query", r.URL.RawQuery),
	)
}

func setLoggedSite(r *http.Request, site string) {
	if p, ok := r.Context().Value(contextKeySite).(*string); ok {
		*p = site
	}
}

func setLoggedLastModified(r *http.Request, httpDate string) {
	if p, ok := r.Context().Value(contextKeyLastModified).(*string); ok {
		*p = httpDate
	}
}

type loggerResponseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
}

func newLoggerResponseWriter(w http.ResponseWriter) *loggerResponseWriter {
	return &loggerResponseWriter{w, http.StatusOK, 0}
}

// WriteHeader is used to capture the status code
func (r *loggerResponseWriter) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

// Write is used to capture the amount of data written
func (r *loggerResponseWriter) Write(b []byte) (int, error) {
	bytesWritten, err := r.ResponseWriter.Write(b)
	r.bytesWritten += int64(bytesWritten)
	return bytesWritten, err
}

func (r *loggerResponseWriter) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
