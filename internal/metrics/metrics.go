// Package metrics exposes Prometheus counters for request and background
// task activity. Counters are package-level so any layer can record to them
// without plumbing a registry through constructors.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adboard",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		},
		[]string{"route", "status"},
	)

	authzDenials = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adboard",
			Name:      "authz_denials_total",
			Help:      "Authorization denials by reason.",
		},
		[]string{"reason"},
	)

	tasksProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adboard",
			Name:      "tasks_processed_total",
			Help:      "Background tasks processed by type and outcome.",
		},
		[]string{"type", "outcome"},
	)

	emailsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adboard",
			Name:      "emails_sent_total",
			Help:      "Notification emails sent by kind.",
		},
		[]string{"kind"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, authzDenials, tasksProcessed, emailsSent)
	})
}

// IncHTTPRequest increments the request counter for a route pattern and
// status code label.
func IncHTTPRequest(route, status string) {
	httpRequests.WithLabelValues(route, status).Inc()
}

// IncAuthzDenial increments the denial counter for a reason label
// ("unauthenticated" or "forbidden").
func IncAuthzDenial(reason string) {
	authzDenials.WithLabelValues(reason).Inc()
}

// IncTaskProcessed increments the task counter for a type and outcome label
// ("completed" or "failed").
func IncTaskProcessed(taskType, outcome string) {
	tasksProcessed.WithLabelValues(taskType, outcome).Inc()
}

// IncEmailSent increments the email counter for a kind label.
func IncEmailSent(kind string) {
	emailsSent.WithLabelValues(kind).Inc()
}
