package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder exports gateway and dispatch observations as
// Prometheus series. Each recorder carries its own registry so batch runs
// never collide.
type PrometheusRecorder struct {
	registry        *prometheus.Registry
	gatewayRequests *prometheus.CounterVec
	gatewaySeconds  *prometheus.HistogramVec
	dispatches      *prometheus.CounterVec
	dispatchSeconds prometheus.Histogram
}

// NewPrometheusRecorder builds a recorder backed by a private registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	r := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		gatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uframe_gateway_requests_total",
			Help: "Gateway requests by endpoint and HTTP status.",
		}, []string{"endpoint", "status"}),
		gatewaySeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "uframe_gateway_request_seconds",
			Help:    "Gateway request latency by endpoint.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uframe_dispatches_total",
			Help: "Synthesized request dispatches by HTTP status.",
		}, []string{"status"}),
		dispatchSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "uframe_dispatch_seconds",
			Help:    "Dispatch latency.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	r.registry.MustRegister(r.gatewayRequests, r.gatewaySeconds, r.dispatches, r.dispatchSeconds)
	return r
}

// ObserveGatewayRequest implements Recorder.
func (r *PrometheusRecorder) ObserveGatewayRequest(endpoint string, status int, elapsed time.Duration) {
	r.gatewayRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	r.gatewaySeconds.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ObserveDispatch implements Recorder.
func (r *PrometheusRecorder) ObserveDispatch(status int, elapsed time.Duration) {
	r.dispatches.WithLabelValues(strconv.Itoa(status)).Inc()
	r.dispatchSeconds.Observe(elapsed.Seconds())
}

// Handler serves the recorder's registry in Prometheus exposition format.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
