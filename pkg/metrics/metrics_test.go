package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsLifecycle(t *testing.T) {
	require.NoError(t, InitMetrics(t.TempDir()))
	defer func() { require.NoError(t, Close()) }()

	SetGauge("test_gauge", 42)
	IncrCounter("test_counter", 2.5)

	now := time.Now().Unix()
	points, err := Select("test_gauge", now-60, now+60)
	require.NoError(t, err)
	require.NotEmpty(t, points)
	assert.Equal(t, float64(42), points[len(points)-1].Value)
}

func TestMetricsClosedNoop(t *testing.T) {
	// Inserts and selects before init or after close must not panic.
	SetGauge("orphan_gauge", 1)

	points, err := Select("orphan_gauge", 0, time.Now().Unix())
	assert.NoError(t, err)
	assert.Nil(t, points)
}
