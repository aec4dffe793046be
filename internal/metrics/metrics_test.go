package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeMethod(t *testing.T) {
	assert.Equal(t, "GET", normalizeMethod("GET"))
	assert.Equal(t, "HEAD", normalizeMethod("HEAD"))
	assert.Equal(t, "POST", normalizeMethod("POST"))

	assert.Equal(t, "OTHER", normalizeMethod("PURGE"))
	assert.Equal(t, "OTHER", normalizeMethod(""))
}

func TestPrometheusTracker(t *testing.T) {
	tracker := NewPrometheusTracker()

	tracker.TrackLookup(LookupFound, 0)
	tracker.TrackLookup(LookupFound, 0)
	tracker.TrackLookup(LookupError, 0)
	tracker.TrackHeaderSet("website")
	tracker.TrackRequest("website", "PURGE", 200, 0)

	assert.Equal(t, float64(2), testutil.ToFloat64(tracker.lookups.WithLabelValues(LookupFound)))
	assert.Equal(t, float64(1), testutil.ToFloat64(tracker.lookups.WithLabelValues(LookupError)))
	assert.Equal(t, float64(0), testutil.ToFloat64(tracker.lookups.WithLabelValues(LookupNotFound)))
	assert.Equal(t, float64(1), testutil.ToFloat64(tracker.headersSet.WithLabelValues("website")))
	assert.Equal(t, float64(1), testutil.ToFloat64(tracker.httpRequests.WithLabelValues("website", "OTHER", "200")))
}
