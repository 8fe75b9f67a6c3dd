package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorderCounts(t *testing.T) {
	r := NewPrometheusRecorder()

	r.ObserveGatewayRequest("metadata_times", 200, 125*time.Millisecond)
	r.ObserveGatewayRequest("metadata_times", 200, 80*time.Millisecond)
	r.ObserveGatewayRequest("allstreams", 500, time.Second)
	r.ObserveDispatch(200, 250*time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(r.gatewayRequests.WithLabelValues("metadata_times", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.gatewayRequests.WithLabelValues("allstreams", "500")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.dispatches.WithLabelValues("200")))
}

func TestPrometheusRecorderHandler(t *testing.T) {
	r := NewPrometheusRecorder()
	r.ObserveDispatch(200, 10*time.Millisecond)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "uframe_dispatches_total")
}

func TestNopRecorder(t *testing.T) {
	// must not panic
	n := Nop()
	n.ObserveGatewayRequest("toc", 200, time.Millisecond)
	n.ObserveDispatch(404, time.Millisecond)
}
