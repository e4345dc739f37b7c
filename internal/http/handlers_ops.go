package http

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync/atomic"
	"time"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.metrics.started).Round(time.Second).String(),
	})
}

// handleReady reports whether the server can render pages and reach its store.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]any{}
	status := "ready"
	httpStatus := http.StatusOK

	if s.templates == nil {
		checks["templates"] = "not_loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			checks["store"] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["store"] = "ok"
		}
	} else {
		checks["store"] = "not_configured"
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}
	if s.caches != nil {
		checks["cache"] = s.caches.Stats()
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"revision":  s.finance.Revision(),
		"checks":    checks,
	})
}

// handleMetrics writes application and security metrics in Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.detector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.tracer.GetMetrics()

	mutations := atomic.LoadInt64(&s.metrics.mutations)
	rejected := atomic.LoadInt64(&s.metrics.rejected)
	suggestions := atomic.LoadInt64(&s.metrics.suggestions)
	uptime := time.Since(s.metrics.started)

	state := s.finance.Snapshot()
	insight := s.insights.Current()

	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", traceMetrics.TotalRequests)

	fmt.Fprintf(w, "# HELP http_server_errors_total Responses with a 5xx status\n")
	fmt.Fprintf(w, "# TYPE http_server_errors_total counter\n")
	fmt.Fprintf(w, "http_server_errors_total %d\n\n", traceMetrics.ServerErrors)

	fmt.Fprintf(w, "# HELP http_response_time_avg_microseconds Average response time\n")
	fmt.Fprintf(w, "# TYPE http_response_time_avg_microseconds gauge\n")
	fmt.Fprintf(w, "http_response_time_avg_microseconds %d\n\n", traceMetrics.AverageResponseTime)

	fmt.Fprintf(w, "# HELP ledger_mutations_total Accepted state mutations\n")
	fmt.Fprintf(w, "# TYPE ledger_mutations_total counter\n")
	fmt.Fprintf(w, "ledger_mutations_total %d\n\n", mutations)

	fmt.Fprintf(w, "# HELP ledger_rejected_total Rejected state mutations\n")
	fmt.Fprintf(w, "# TYPE ledger_rejected_total counter\n")
	fmt.Fprintf(w, "ledger_rejected_total %d\n\n", rejected)

	fmt.Fprintf(w, "# HELP ledger_revision Current state revision\n")
	fmt.Fprintf(w, "# TYPE ledger_revision gauge\n")
	fmt.Fprintf(w, "ledger_revision %d\n\n", s.finance.Revision())

	fmt.Fprintf(w, "# HELP ledger_entries Current number of entries\n")
	fmt.Fprintf(w, "# TYPE ledger_entries gauge\n")
	fmt.Fprintf(w, "ledger_entries{type=\"transactions\"} %d\n", len(state.Transactions))
	fmt.Fprintf(w, "ledger_entries{type=\"goals\"} %d\n\n", len(state.Goals))

	fmt.Fprintf(w, "# HELP category_suggestions_total Category suggestions returned\n")
	fmt.Fprintf(w, "# TYPE category_suggestions_total counter\n")
	fmt.Fprintf(w, "category_suggestions_total %d\n\n", suggestions)

	fmt.Fprintf(w, "# HELP insight_generation Latest insight request generation\n")
	fmt.Fprintf(w, "# TYPE insight_generation gauge\n")
	fmt.Fprintf(w, "insight_generation %d\n\n", insight.Generation)

	if s.caches != nil {
		stats := s.caches.Stats()
		names := make([]string, 0, len(stats))
		for name := range stats {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Fprintf(w, "# HELP cache_entries Current cache entries\n")
		fmt.Fprintf(w, "# TYPE cache_entries gauge\n")
		for _, name := range names {
			fmt.Fprintf(w, "cache_entries{type=%q} %d\n", name, stats[name].Size)
		}
		fmt.Fprintf(w, "\n# HELP cache_hits_total Total cache hits\n")
		fmt.Fprintf(w, "# TYPE cache_hits_total counter\n")
		for _, name := range names {
			fmt.Fprintf(w, "cache_hits_total{type=%q} %d\n", name, stats[name].Hits)
		}
		fmt.Fprintf(w, "\n# HELP cache_misses_total Total cache misses\n")
		fmt.Fprintf(w, "# TYPE cache_misses_total counter\n")
		for _, name := range names {
			fmt.Fprintf(w, "cache_misses_total{type=%q} %d\n", name, stats[name].Misses)
		}
		fmt.Fprintf(w, "\n")
	}

	fmt.Fprintf(w, "# HELP rate_limit_hits_total Total rate limit hits\n")
	fmt.Fprintf(w, "# TYPE rate_limit_hits_total counter\n")
	fmt.Fprintf(w, "rate_limit_hits_total %d\n\n", rateLimitMetrics.Rejected)

	fmt.Fprintf(w, "# HELP rate_limit_active_clients Active rate limited clients\n")
	fmt.Fprintf(w, "# TYPE rate_limit_active_clients gauge\n")
	fmt.Fprintf(w, "rate_limit_active_clients %d\n\n", rateLimitMetrics.ClientCount)

	fmt.Fprintf(w, "# HELP security_suspicious_requests_total Suspicious requests detected\n")
	fmt.Fprintf(w, "# TYPE security_suspicious_requests_total counter\n")
	fmt.Fprintf(w, "security_suspicious_requests_total %d\n\n", securityMetrics.SuspiciousRequests)

	fmt.Fprintf(w, "# HELP security_invalid_ip_total Invalid forwarded client addresses\n")
	fmt.Fprintf(w, "# TYPE security_invalid_ip_total counter\n")
	fmt.Fprintf(w, "security_invalid_ip_total %d\n\n", securityMetrics.InvalidIPAttempts)

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", uptime.Seconds())
}
