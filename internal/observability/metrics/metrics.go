package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "projectdesk_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "projectdesk_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	visibilityResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "projectdesk_visibility_resolutions_total",
		Help: "Count of project visibility resolutions by path and result",
	}, []string{"path", "result"})

	membershipMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "projectdesk_membership_mutations_total",
		Help: "Count of membership add/remove operations by result",
	}, []string{"op", "result"})

	projectCreations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "projectdesk_project_creations_total",
		Help: "Count of project creation attempts by result",
	}, []string{"result"})

	directoryCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "projectdesk_directory_cache_lookups_total",
		Help: "Directory cache lookups by outcome",
	}, []string{"outcome"})

	activeWorkspaces = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "projectdesk_active_workspaces",
		Help: "Number of live viewer workspaces",
	})

	workspaceEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "projectdesk_workspace_evictions_total",
		Help: "Count of idle workspaces evicted by the janitor",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveResolution records a visibility resolution. Path is
// "privileged" or "member"; result is "ok", "error", or "stale" for a
// resolution discarded after an identity change.
func ObserveResolution(path, result string) {
	visibilityResolutions.WithLabelValues(path, result).Inc()
}

// ObserveMembershipMutation records a membership add or remove attempt
func ObserveMembershipMutation(op, result string) {
	membershipMutations.WithLabelValues(op, result).Inc()
}

// ObserveProjectCreation records a project creation attempt
func ObserveProjectCreation(result string) {
	projectCreations.WithLabelValues(result).Inc()
}

// ObserveDirectoryCache records a directory cache lookup outcome
func ObserveDirectoryCache(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	directoryCacheLookups.WithLabelValues(outcome).Inc()
}

// SetActiveWorkspaces sets the live workspace gauge
func SetActiveWorkspaces(count int) {
	if count < 0 {
		count = 0
	}
	activeWorkspaces.Set(float64(count))
}

// ObserveEvictions adds evicted workspaces to the janitor counter
func ObserveEvictions(count int) {
	workspaceEvictions.Add(float64(count))
}
