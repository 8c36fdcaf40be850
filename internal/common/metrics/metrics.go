// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_requests_total",
			Help: "Total number of chat messages answered, by intent",
		},
		[]string{"intent"},
	)

	ChatRequestsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_requests_failed_total",
			Help: "Total number of chat messages that ended in an error",
		},
		[]string{"intent", "error_code"},
	)

	ChatRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "chatbot_request_duration_seconds",
			Help: "Duration of the answer pipeline in seconds",
		},
		[]string{"intent"},
	)

	StoreQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_store_queries_total",
			Help: "Total number of SQL queries executed, by target table",
		},
		[]string{"target"},
	)

	StoreQueriesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_store_queries_failed_total",
			Help: "Total number of SQL queries that failed, by target table",
		},
		[]string{"target"},
	)

	CatalogCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_catalog_cache_hits_total",
			Help: "Catalog vocabulary lookups served from cache vs database",
		},
		[]string{"source"},
	)
)
