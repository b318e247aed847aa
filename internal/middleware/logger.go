package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one structured line per request, leveled by status
func RequestLogger(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			entry := logger.WithFields(logrus.Fields{
				"service":   "athena",
				"method":    r.Method,
				"path":      r.URL.Path,
				"status":    status,
				"latency":   time.Since(startTime),
				"bytes":     ww.BytesWritten(),
				"client_ip": r.RemoteAddr,
			})

			if reqID := chimiddleware.GetReqID(r.Context()); reqID != "" {
				entry = entry.WithField("request_id", reqID)
			}

			if r.URL.RawQuery != "" {
				entry = entry.WithField("query", r.URL.RawQuery)
			}

			switch {
			case status >= 500:
				entry.Error("Internal Server Error")
			case status >= 400:
				entry.Warn("Client Error")
			default:
				entry.Info("Request completed")
			}
		})
	}
}
