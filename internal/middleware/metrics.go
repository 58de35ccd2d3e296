package middleware

import (
	"net/http"
	"time"

	"github.com/rechargehub/cardflow/pkg/metrics"
)

// Metrics measures execution time and status for HTTP handlers, reporting
// them to Prometheus. The route label is the registered pattern rather than
// the raw path so that session ids do not explode cardinality.
func Metrics(next http.Handler) http.Handler {
	if next == nil {
		return nil
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)

		if sw.status == 0 {
			sw.status = http.StatusOK
		}

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}

		metrics.RecordHTTPRequest(r.Method, route, sw.status, time.Since(start))
	})
}
