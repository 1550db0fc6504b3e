// Package metrics provides MetricsSink implementations.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
	"github.com/custodia-labs/sfcc-replicator/internal/logger"
)

// Ensure PrometheusSink implements the interface.
var _ driven.MetricsSink = (*PrometheusSink)(nil)

// PrometheusSink records pipeline measurements as Prometheus collectors.
// Registration errors are logged but never propagated.
type PrometheusSink struct {
	deliveriesTotal  *prometheus.CounterVec
	exchangesTotal   *prometheus.CounterVec
	exchangeDuration *prometheus.HistogramVec
	tokenFetches     *prometheus.CounterVec
}

// NewPrometheusSink creates a sink and registers its collectors on reg.
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	s := &PrometheusSink{
		deliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sfcc_replicator_deliveries_total",
			Help: "Transport deliveries by api type, content type, state and outcome.",
		}, []string{"api_type", "content_type", "state", "success"}),
		exchangesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sfcc_replicator_exchanges_total",
			Help: "HTTP exchanges with commerce instances. Status 0 is a transport failure.",
		}, []string{"method", "status"}),
		exchangeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sfcc_replicator_exchange_duration_seconds",
			Help:    "Latency of HTTP exchanges with commerce instances.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"method"}),
		tokenFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sfcc_replicator_token_fetches_total",
			Help: "Access token requests by outcome.",
		}, []string{"success"}),
	}

	s.register(reg, s.deliveriesTotal, "sfcc_replicator_deliveries_total")
	s.register(reg, s.exchangesTotal, "sfcc_replicator_exchanges_total")
	s.register(reg, s.exchangeDuration, "sfcc_replicator_exchange_duration_seconds")
	s.register(reg, s.tokenFetches, "sfcc_replicator_token_fetches_total")
	return s
}

func (s *PrometheusSink) register(reg prometheus.Registerer, c prometheus.Collector, name string) {
	if err := reg.Register(c); err != nil {
		logger.Warn("metrics: failed to register %s: %v", name, err)
	}
}

// DeliveryCompleted counts one transport handler result.
func (s *PrometheusSink) DeliveryCompleted(apiType, contentType string, state domain.DeliveryState, success bool) {
	s.deliveriesTotal.WithLabelValues(apiType, contentType, string(state), strconv.FormatBool(success)).Inc()
}

// ExchangeCompleted counts and times one HTTP exchange.
func (s *PrometheusSink) ExchangeCompleted(method string, statusCode int, duration time.Duration) {
	s.exchangesTotal.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	s.exchangeDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// TokenFetched counts one token request.
func (s *PrometheusSink) TokenFetched(success bool) {
	s.tokenFetches.WithLabelValues(strconv.FormatBool(success)).Inc()
}
