package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/softprocon/ShipTracker/pkg/logger"
	"github.com/softprocon/ShipTracker/pkg/metrics"
)

// MetricsMiddleware records request counts and latency per endpoint. Failed
// requests are also counted by the error code written in the response body.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		took := time.Since(start)
		ms := float64(took.Microseconds()) / 1000
		status := strconv.Itoa(rec.status)
		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, ms)

		if rec.status < http.StatusBadRequest {
			return
		}
		code := rec.code
		if code == "" {
			code = fallbackCode(rec.status)
		}
		metrics.RecordErrorByEndpoint(endpoint, r.Method, code)
		metrics.RecordErrorByType(code, severity(rec.status))
		metrics.RecordErrorLatency("http", code, ms)

		if rec.status >= http.StatusInternalServerError {
			logger.Named("api").Error(r.Context(), "request failed",
				logger.String("endpoint", endpoint),
				logger.Int("status", rec.status),
				logger.String("code", code),
				logger.Duration("took", took))
		}
	}
}

func fallbackCode(status int) string {
	switch {
	case status == http.StatusNotFound:
		return "not_found"
	case status >= http.StatusInternalServerError:
		return "server_error"
	default:
		return "client_error"
	}
}

func severity(status int) string {
	if status >= http.StatusInternalServerError {
		return "high"
	}
	return "medium"
}

// statusRecorder captures the status and the error code of a response.
type statusRecorder struct {
	http.ResponseWriter
	status int
	code   string
}

func (rw *statusRecorder) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

// recordCode is called by writeError before the body is written.
func (rw *statusRecorder) recordCode(code string) { rw.code = code }

type codeRecorder interface{ recordCode(string) }
