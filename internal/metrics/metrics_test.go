package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	assert.NotPanics(t, func() {
		IncAPI("GET /turfs", 200)
		IncAPI("GET /turfs", 0)
		IncCache(true)
		IncCache(false)
	})

	before := counterValue(t, uiActions.WithLabelValues("submit_booking", "error"))
	IncAction("submit_booking", errors.New("slot taken"))
	after := counterValue(t, uiActions.WithLabelValues("submit_booking", "error"))
	assert.Equal(t, before+1, after)

	assert.Equal(t, float64(1), counterValue(t, apiRequests.WithLabelValues("GET /turfs", "error")))
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}
