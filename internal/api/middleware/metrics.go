package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/kiranshivaraju/voicedesk/internal/observability/metrics"
)

// Metrics records latency per matched route pattern so that session ids do
// not explode label cardinality.
func Metrics(m *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			m.ObserveRequest(r.Method, routePattern(r), strconv.Itoa(rec.status), time.Since(start).Seconds())
		})
	}
}
