package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// promauto registers on the default registry, so build one instance for
	// the whole test binary.
	m := New("campushub_test")

	t.Run("records http requests", func(t *testing.T) {
		m.RecordHTTPRequest("GET", "/api/v1/notifications", 200, 25*time.Millisecond)
		m.RecordHTTPRequest("GET", "/api/v1/notifications", 200, 10*time.Millisecond)

		count := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/notifications", "200"))
		assert.Equal(t, float64(2), count)
	})

	t.Run("tracks realtime gauges", func(t *testing.T) {
		m.ConnectedClients.Inc()
		m.ConnectedClients.Inc()
		m.ConnectedClients.Dec()

		assert.Equal(t, float64(1), testutil.ToFloat64(m.ConnectedClients))
	})

	t.Run("counts dispatches", func(t *testing.T) {
		m.NotificationsDispatched.WithLabelValues("message_received").Inc()
		assert.Equal(t, float64(1), testutil.ToFloat64(m.NotificationsDispatched.WithLabelValues("message_received")))
	})
}
