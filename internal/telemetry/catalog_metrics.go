package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kervinch/storefront-api/internal/catalog"
)

// CatalogMetrics holds the Prometheus metrics for catalog writes.
type CatalogMetrics struct {
	VariationChanges      *prometheus.CounterVec
	GalleryImages         *prometheus.CounterVec
	ReconcileDuration     *prometheus.HistogramVec
	ValidationFailures    *prometheus.CounterVec
	CategoryNotifications *prometheus.CounterVec
}

// NewCatalogMetrics creates the metrics and registers them with reg.
func NewCatalogMetrics(reg prometheus.Registerer, namespace string) *CatalogMetrics {
	if namespace == "" {
		namespace = "storefront"
	}

	factory := promauto.With(reg)
	subsystem := "catalog"

	return &CatalogMetrics{
		VariationChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "variation_changes_total",
				Help:      "Variations created, updated or deleted by catalog writes",
			},
			[]string{"operation", "change"},
		),
		GalleryImages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "gallery_images_total",
				Help:      "Images submitted to color galleries by outcome",
			},
			[]string{"result"}, // result: added, skipped
		),
		ReconcileDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "reconcile_duration_seconds",
				Help:      "Time spent reconciling a variation submission",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"operation"},
		),
		ValidationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "validation_failures_total",
				Help:      "Rejected variation submissions by field",
			},
			[]string{"field"},
		),
		CategoryNotifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "category_notifications_total",
				Help:      "Category attribute value notifications by outcome",
			},
			[]string{"outcome"}, // outcome: sent, failed
		),
	}
}

func (m *CatalogMetrics) ObserveReconcile(operation string, stats catalog.Stats, elapsed time.Duration) {
	m.VariationChanges.WithLabelValues(operation, "created").Add(float64(stats.Created))
	m.VariationChanges.WithLabelValues(operation, "updated").Add(float64(stats.Updated))
	m.VariationChanges.WithLabelValues(operation, "deleted").Add(float64(stats.Deleted))
	m.GalleryImages.WithLabelValues("added").Add(float64(stats.ImagesAdded))
	m.GalleryImages.WithLabelValues("skipped").Add(float64(stats.ImagesSkipped))
	m.ReconcileDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *CatalogMetrics) ValidationFailed(field string) {
	m.ValidationFailures.WithLabelValues(field).Inc()
}

func (m *CatalogMetrics) NotificationSent(err error) {
	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	m.CategoryNotifications.WithLabelValues(outcome).Inc()
}
