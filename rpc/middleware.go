package rpc

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ConsenSysQuorum/eea-gateway/log"
	"github.com/ConsenSysQuorum/eea-gateway/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// metricsMiddleware records count, duration and in-flight gauge of every
// request.
func metricsMiddleware(m *metrics.Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			m.HTTPInFlight.Inc()
			defer m.HTTPInFlight.Dec()

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.RecordHTTPRequest(r.Method, routePattern(r), status, time.Since(start))
		})
	}
}

// routePattern keeps the path label bounded: unmatched paths share one
// value.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// vhostMiddleware rejects requests whose Host header names a host that is
// not in vhosts. IP addresses are always allowed, "*" allows every host and
// an empty list disables the check.
func vhostMiddleware(vhosts []string) func(next http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(vhosts))
	for _, h := range vhosts {
		allowed[strings.ToLower(h)] = struct{}{}
	}
	_, all := allowed["*"]

	return func(next http.Handler) http.Handler {
		if len(allowed) == 0 || all {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Host == "" {
				next.ServeHTTP(w, r)
				return
			}
			host, _, err := net.SplitHostPort(r.Host)
			if err != nil {
				host = r.Host
			}
			if net.ParseIP(host) != nil {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := allowed[strings.ToLower(host)]; ok {
				next.ServeHTTP(w, r)
				return
			}
			log.Debug("rejected request for unknown host", "host", r.Host, "request", middleware.GetReqID(r.Context()))
			http.Error(w, "invalid host specified", http.StatusForbidden)
		})
	}
}
