package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/dreamteam/pkg/metrics"
)

// statusClientClosed labels requests whose consumer went away before the
// handler finished, typically an abandoned event stream.
const statusClientClosed = 499

// MetricsMiddleware wraps HTTP handlers to record Prometheus metrics.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rec, r)

		code := rec.statusCode
		if r.Context().Err() != nil && code < http.StatusBadRequest {
			code = statusClientClosed
		}
		durationMs := float64(time.Since(start).Milliseconds())
		status := strconv.Itoa(code)

		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, durationMs)

		if code >= http.StatusBadRequest {
			kind, severity := errorClass(code)
			metrics.RecordErrorByEndpoint(endpoint, r.Method, kind)
			metrics.RecordErrorByType(kind, severity)
			metrics.RecordErrorLatency("http", kind, durationMs)
		}
	}
}

// errorClass maps a failing status code to its metric type and severity.
func errorClass(code int) (kind, severity string) {
	switch {
	case code >= http.StatusInternalServerError:
		return "server_error", "high"
	case code == statusClientClosed:
		return "client_closed", "low"
	case code == http.StatusNotFound:
		return "not_found", "medium"
	case code == http.StatusMethodNotAllowed:
		return "method_not_allowed", "medium"
	default:
		return "client_error", "medium"
	}
}

// responseWriter records the first status code written.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

// Flush lets streaming handlers push partial responses.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// FlushError flushes the underlying writer and reports a failed flush, so
// streaming handlers see a gone consumer at the write site.
func (rw *responseWriter) FlushError() error {
	return http.NewResponseController(rw.ResponseWriter).Flush()
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}
