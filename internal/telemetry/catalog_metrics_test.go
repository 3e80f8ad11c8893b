package telemetry

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kervinch/storefront-api/internal/catalog"
)

func TestCatalogMetrics_ObserveReconcile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCatalogMetrics(reg, "")

	m.ObserveReconcile("merge", catalog.Stats{Created: 2, Updated: 1, ImagesAdded: 3, ImagesSkipped: 1}, 5*time.Millisecond)
	m.ObserveReconcile("merge", catalog.Stats{Deleted: 4}, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.VariationChanges.WithLabelValues("merge", "created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VariationChanges.WithLabelValues("merge", "updated")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.VariationChanges.WithLabelValues("merge", "deleted")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.GalleryImages.WithLabelValues("added")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GalleryImages.WithLabelValues("skipped")))

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "storefront_catalog_reconcile_duration_seconds")
}

func TestCatalogMetrics_Counters(t *testing.T) {
	m := NewCatalogMetrics(prometheus.NewRegistry(), "test")

	m.ValidationFailed("variations[0].price")
	m.NotificationSent(nil)
	m.NotificationSent(errors.New("nats: timeout"))
	m.NotificationSent(nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationFailures.WithLabelValues("variations[0].price")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CategoryNotifications.WithLabelValues("sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CategoryNotifications.WithLabelValues("failed")))
}
