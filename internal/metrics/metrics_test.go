package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveComputation(t *testing.T) {
	before := testutil.ToFloat64(AnalyticsComputations.WithLabelValues("stats"))

	ObserveComputation("stats", time.Now())

	assert.Equal(t, before+1, testutil.ToFloat64(AnalyticsComputations.WithLabelValues("stats")))
}

func TestObserveCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(CacheLookups.WithLabelValues("hit"))
	misses := testutil.ToFloat64(CacheLookups.WithLabelValues("miss"))

	ObserveCacheLookup("k", true)
	ObserveCacheLookup("k", false)
	ObserveCacheLookup("k", false)

	assert.Equal(t, hits+1, testutil.ToFloat64(CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, misses+2, testutil.ToFloat64(CacheLookups.WithLabelValues("miss")))
}
