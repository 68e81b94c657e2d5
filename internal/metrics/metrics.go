package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "turfbook",
			Name:      "api_requests_total",
			Help:      "Backend API requests by endpoint and status code.",
		},
		[]string{"endpoint", "status"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "turfbook",
			Name:      "cache_lookups_total",
			Help:      "GET cache lookups by result.",
		},
		[]string{"result"},
	)

	uiActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "turfbook",
			Name:      "ui_actions_total",
			Help:      "User actions by name and outcome.",
		},
		[]string{"action", "outcome"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(apiRequests, cacheLookups, uiActions)
	})
}

// IncAPI counts a backend call. status 0 means the request never got a response.
func IncAPI(endpoint string, status int) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	apiRequests.WithLabelValues(endpoint, label).Inc()
}

func IncCache(hit bool) {
	if hit {
		cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	cacheLookups.WithLabelValues("miss").Inc()
}

// IncAction counts a user action; err decides the outcome label.
func IncAction(action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	uiActions.WithLabelValues(action, outcome).Inc()
}
