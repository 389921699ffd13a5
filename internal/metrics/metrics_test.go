package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorsRecord(t *testing.T) {
	before := testutil.ToFloat64(SessionsCreated)
	SessionsCreated.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(SessionsCreated))

	abandoned := SessionsAbandoned.WithLabelValues("expired")
	before = testutil.ToFloat64(abandoned)
	abandoned.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(abandoned))

	active := testutil.ToFloat64(SessionsActive)
	SessionsActive.Inc()
	SessionsActive.Dec()
	assert.Equal(t, active, testutil.ToFloat64(SessionsActive))
}

func TestUpstreamDurationLabels(t *testing.T) {
	UpstreamDuration.WithLabelValues("dashboard", "success").Observe(0.2)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(UpstreamDuration), 1)
}
