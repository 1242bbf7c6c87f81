package middleware

import (
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"employee-role-api/internal/infrastructure/metrics"
	"employee-role-api/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const requestIDHeader = "X-Request-ID"

type LoggingMiddleware struct {
	log    *logrus.Logger
	router *mux.Router
}

// NewLoggingMiddleware logs one entry per request. router is only used to
// resolve the route template for the latency histogram.
func NewLoggingMiddleware(log *logrus.Logger, router *mux.Router) *LoggingMiddleware {
	return &LoggingMiddleware{log: log, router: router}
}

func (m *LoggingMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		started := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(started)
		metrics.HTTPRequestDuration.
			WithLabelValues(r.Method, m.routeTemplate(r), strconv.Itoa(wrapped.status)).
			Observe(duration.Seconds())

		entry := m.log.WithFields(logrus.Fields{
			"request_id":  requestID,
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      wrapped.status,
			"duration_ms": duration.Milliseconds(),
			"remote_addr": remoteHost(r.RemoteAddr),
		})
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			entry = entry.WithField("forwarded_for", forwarded)
		}
		if wrapped.status >= 400 && r.URL.RawQuery != "" {
			entry = entry.WithField("query", r.URL.RawQuery)
		}

		switch {
		case wrapped.status >= 500:
			entry.Error("request")
		case wrapped.status >= 400:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	})
}

func (m *LoggingMiddleware) routeTemplate(r *http.Request) string {
	if m.router == nil {
		return "unmatched"
	}

	var match mux.RouteMatch
	if !m.router.Match(r, &match) || match.Route == nil {
		return "unmatched"
	}

	template, err := match.Route.GetPathTemplate()
	if err != nil {
		return "unmatched"
	}
	return template
}

// Recovery turns a panic into a generic 500 and logs the stack.
func Recovery(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if recovered := recover(); recovered != nil {
					log.WithFields(logrus.Fields{
						"method": r.Method,
						"path":   r.URL.Path,
						"stack":  string(debug.Stack()),
					}).Errorf("Recovered from panic: %v", recovered)
					response.InternalServerError(w, "")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if rw.wroteHeader {
		return
	}
	rw.status = statusCode
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}
