package metrics

import (
	"time"

	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
)

var _ driven.MetricsSink = NoopSink{}

// NoopSink discards every measurement.
type NoopSink struct{}

func (NoopSink) DeliveryCompleted(string, string, domain.DeliveryState, bool) {}
func (NoopSink) ExchangeCompleted(string, int, time.Duration)                {}
func (NoopSink) TokenFetched(bool)                                           {}
