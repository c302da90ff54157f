package prometheus

import (
	"time"

	"entitlement-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthSuccessCounter  prometheus.Counter
	AuthErrorsCounter   prometheus.Counter

	// Tenant context metrics
	TenantContextMissingCounter prometheus.Counter

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Entitlement decision metrics
	EntitlementChecksCounter    prometheus.CounterVec
	EntitlementDowngradeCounter prometheus.Counter
	CacheHitCounter             prometheus.Counter
	CacheMissCounter            prometheus.Counter

	initialized bool
)

// InitMetrics initializes Prometheus metrics with configuration. Safe to
// call once per process; the Record* helpers are no-ops before it runs so
// pure units can be exercised without a registry.
func InitMetrics(config *config.Config) {
	if initialized {
		return
	}

	// Use metric prefix from configuration
	prefix := config.Metrics.Prefix

	// HTTP request metrics
	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP request duration
	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Authentication metrics
	AuthAttemptsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
	)

	AuthSuccessCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_success_total",
			Help: "Total number of successful authentications",
		},
	)

	AuthErrorsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors",
		},
	)

	// Tenant context metrics
	TenantContextMissingCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_tenant_context_missing_total",
			Help: "Total number of requests without tenant context",
		},
	)

	// Database operation metrics
	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	// Entitlement decision metrics
	EntitlementChecksCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_checks_total",
			Help: "Total number of entitlement checks by outcome",
		},
		[]string{"outcome"},
	)

	EntitlementDowngradeCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_downgrades_total",
			Help: "Total number of premium-to-expired downgrades persisted",
		},
	)

	CacheHitCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_cache_hits_total",
			Help: "Total number of decision cache hits",
		},
	)

	CacheMissCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_cache_misses_total",
			Help: "Total number of decision cache misses",
		},
	)

	initialized = true
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if !initialized {
			return
		}
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordEntitlementCheck increments the check counter for an outcome ("allowed" or "blocked")
func RecordEntitlementCheck(outcome string) {
	if !initialized {
		return
	}
	EntitlementChecksCounter.WithLabelValues(outcome).Inc()
}

// RecordDowngrade increments the persisted-downgrade counter
func RecordDowngrade() {
	if !initialized {
		return
	}
	EntitlementDowngradeCounter.Inc()
}

// RecordCacheHit increments the decision cache hit counter
func RecordCacheHit() {
	if !initialized {
		return
	}
	CacheHitCounter.Inc()
}

// RecordCacheMiss increments the decision cache miss counter
func RecordCacheMiss() {
	if !initialized {
		return
	}
	CacheMissCounter.Inc()
}

// RecordAuthAttempt increments the authentication attempt counter
func RecordAuthAttempt() {
	if !initialized {
		return
	}
	AuthAttemptsCounter.Inc()
}

// RecordAuthSuccess increments the successful authentication counter
func RecordAuthSuccess() {
	if !initialized {
		return
	}
	AuthSuccessCounter.Inc()
}

// RecordAuthError increments the authentication error counter
func RecordAuthError() {
	if !initialized {
		return
	}
	AuthErrorsCounter.Inc()
}

// RecordTenantContextMissing increments the missing tenant context counter
func RecordTenantContextMissing() {
	if !initialized {
		return
	}
	TenantContextMissingCounter.Inc()
}
