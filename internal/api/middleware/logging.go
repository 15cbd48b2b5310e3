package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/govichain/engine/pkg/logger"
	"github.com/govichain/engine/pkg/metrics"
	"go.uber.org/zap"
)

// Logging logs basic request information with request ID and feeds the
// request duration histogram.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		elapsed := time.Since(start)
		metrics.RecordHTTPRequestDuration(r.Method, r.URL.Path, strconv.Itoa(rw.status), elapsed)
		logger.L().Info("request",
			zap.String("id", GetRequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rw.status),
			zap.Duration("duration", elapsed),
			zap.String("remote", r.RemoteAddr),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
