// Package metrics defines the Prometheus collectors for the employee API.
// All collectors register with the default registry at init and are served
// on GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "employee_api"

// LoginAttemptsTotal counts login and refresh attempts.
// Labels:
//   - flow: "login" or "refresh"
//   - result: "success", "invalid_credentials", "invalid_token" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of token issuance attempts by flow and result.",
	},
	[]string{"flow", "result"},
)

// EmployeeCacheLookupsTotal counts read-through cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var EmployeeCacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "employee_cache_lookups_total",
		Help:      "Total number of employee cache lookups, labelled by result.",
	},
	[]string{"result"},
)

// AccessDeniedTotal counts requests short-circuited by the security middleware.
// Label:
//   - reason: "missing_token", "invalid_token" or "insufficient_role"
var AccessDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denied_total",
		Help:      "Total number of requests rejected before reaching a handler.",
	},
	[]string{"reason"},
)

// HTTPRequestDuration measures request latency.
// Labels:
//   - method: HTTP method
//   - route: the matched route template, or "unmatched"
//   - status: response status code
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)
