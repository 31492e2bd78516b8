// Package metrics provides Prometheus metrics for the summary pipeline and jobs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hinglish"

// Summary results.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultQuota   = "quota"
)

var (
	// SummariesTotal counts summarizer calls by result.
	SummariesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_total",
			Help:      "Total number of Hinglish summary attempts",
		},
		[]string{"result"},
	)

	// SummaryDuration measures summarizer latency.
	SummaryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "summary_duration_seconds",
			Help:      "Duration of summary calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// JobRunsTotal counts scheduled job executions.
	JobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Total number of scheduled job runs",
		},
		[]string{"job"},
	)

	// JobSkippedTotal counts ticks skipped because the previous run was still active.
	JobSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_skipped_total",
			Help:      "Total number of job ticks skipped due to overlap",
		},
		[]string{"job"},
	)

	// ArticlesIngestedTotal counts stored articles per category.
	ArticlesIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_ingested_total",
			Help:      "Total number of articles stored by ingestion",
		},
		[]string{"category", "fallback"},
	)

	// HTTPRequestsTotal counts API requests by route template and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration measures handler latency by route template.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
