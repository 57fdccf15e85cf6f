package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CheckoutSessionsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_sessions_created_total",
		Help: "Total number of checkout sessions created",
	})

	CheckoutSessionsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_sessions_failed_total",
		Help: "Total number of failed checkout session creations",
	}, []string{"reason"})

	OrdersMaterializedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_materialized_total",
		Help: "Total number of orders created by payment confirmation",
	})

	OrdersDuplicateTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_duplicate_total",
		Help: "Total number of confirmations that found an existing order",
	})

	ConfirmationsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "confirmations_rejected_total",
		Help: "Total number of confirmations that did not produce an order",
	}, []string{"reason"})

	ConfirmationsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "confirmations_failed_total",
		Help: "Total number of confirmations aborted by provider or store errors",
	}, []string{"reason"})

	ProviderCallLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_provider_latency_seconds",
		Help:    "Latency of checkout provider calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	UsersRegisteredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "users_registered_total",
		Help: "Total number of users registered",
	})

	ListingCacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "listing_cache_hits_total",
		Help: "Total number of listing cache hits",
	}, []string{"listing"})

	ListingCacheMissesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "listing_cache_misses_total",
		Help: "Total number of listing cache misses",
	}, []string{"listing"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
