package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/cburgosro9303/vortex-config/internal/sklog"
)

// RequestIDHeader is the header this server reads an incoming request
// id from, and stamps on both the request context and the response,
// mirroring original_source's x-request-id middleware.
const RequestIDHeader = "X-Request-Id"

// requestIDMiddleware ensures every request carries a request id,
// generating one when the caller didn't supply it, and echoes it back
// on the response.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		r.Header.Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code a handler wrote, since
// http.ResponseWriter doesn't expose it after the fact.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs one line per request/response and, when the
// server's metrics handle is non-nil, records the request in its HTTP
// metrics, mirroring
// original_source's LoggingLayer span fields (request_id, method, path,
// status, duration_ms).
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		sklog.Infof("request started request_id=%s method=%s path=%s", r.Header.Get(RequestIDHeader), r.Method, r.URL.Path)

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		sklog.Infof("request completed request_id=%s method=%s path=%s status=%d duration_ms=%d",
			r.Header.Get(RequestIDHeader), r.Method, r.URL.Path, rec.status, duration.Milliseconds())

		if s.metrics != nil {
			s.metrics.RecordHTTPRequest(r.Method, r.URL.Path, strconv.Itoa(rec.status), duration)
		}
	})
}
