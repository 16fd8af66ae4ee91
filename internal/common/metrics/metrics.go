// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MembershipVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "membership_verifications_total",
			Help: "Total number of membership verifications by site and outcome",
		},
		[]string{"site", "outcome"},
	)

	MembershipVerificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "membership_verification_duration_seconds",
			Help:    "Duration of membership lookups in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"site"},
	)

	MembershipCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "membership_cache_hits_total",
			Help: "Membership lookups answered from cache",
		},
		[]string{"outcome"},
	)

	FormsBusy = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "membership_forms_busy",
			Help: "Number of forms with a verification in flight",
		},
		[]string{"site"},
	)

	ImageTasks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_tasks_total",
			Help: "Total number of image tasks by result",
		},
		[]string{"result"},
	)

	ImageBytesSaved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_bytes_saved_total",
			Help: "Bytes saved by converting images",
		},
	)
)
