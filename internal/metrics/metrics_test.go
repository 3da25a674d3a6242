package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// value reads the current value of a counter or gauge.
func value(t *testing.T, c prometheus.Metric) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	if m.Counter != nil {
		return m.GetCounter().GetValue()
	}
	return m.GetGauge().GetValue()
}

func TestRegisterIsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg))
}

func TestObserveRefresh(t *testing.T) {
	before := value(t, refreshesTotal.WithLabelValues(OutcomeError))
	ObserveRefresh(time.Second, "unexpected")
	assert.Equal(t, before+1, value(t, refreshesTotal.WithLabelValues(OutcomeError)))

	cached := value(t, refreshesTotal.WithLabelValues(OutcomeCached))
	ObserveRefresh(0, OutcomeCached)
	assert.Equal(t, cached+1, value(t, refreshesTotal.WithLabelValues(OutcomeCached)))
}

func TestObserveFetchCache(t *testing.T) {
	hits := value(t, fetchCacheTotal.WithLabelValues("github", CacheHit))
	misses := value(t, fetchCacheTotal.WithLabelValues("github", CacheMiss))

	ObserveFetchCache("github", true)
	ObserveFetchCache("github", false)
	ObserveFetchCache("github", false)

	assert.Equal(t, hits+1, value(t, fetchCacheTotal.WithLabelValues("github", CacheHit)))
	assert.Equal(t, misses+2, value(t, fetchCacheTotal.WithLabelValues("github", CacheMiss)))
}

func TestSetNarratives(t *testing.T) {
	SetNarratives(4)
	assert.Equal(t, 4.0, value(t, narrativesGauge))

	before := value(t, sourceFailuresTotal.WithLabelValues("reddit"))
	ObserveSourceFailure("reddit")
	assert.Equal(t, before+1, value(t, sourceFailuresTotal.WithLabelValues("reddit")))
}
