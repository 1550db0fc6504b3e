package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/sfcc-replicator/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
)

// --- Shared stubs for replication service tests ---

// recordingLog implements driven.ReplicationLog and keeps formatted lines.
type recordingLog struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLog) add(level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+" "+fmt.Sprintf(format, args...))
}

func (l *recordingLog) Debug(format string, args ...any) { l.add("DEBUG", format, args...) }
func (l *recordingLog) Info(format string, args ...any)  { l.add("INFO", format, args...) }
func (l *recordingLog) Warn(format string, args ...any)  { l.add("WARN", format, args...) }
func (l *recordingLog) Error(format string, args ...any) { l.add("ERROR", format, args...) }

// ranked is a minimal driven.Ranked.
type ranked struct {
	name string
	rank int
}

func (r ranked) Name() string { return r.name }
func (r ranked) Rank() int    { return r.rank }

// stubBuilder implements driven.ContentBuilderPlugin with a field writer.
type stubBuilder struct {
	ranked
	handles bool
	apiType string
	fields  map[string]any
	err     error
	calls   int
}

func (p *stubBuilder) CanHandle(_ domain.ActionType, _ driven.Resource) bool { return p.handles }

func (p *stubBuilder) Create(
	_ context.Context,
	_ domain.ActionType,
	_ driven.Resource,
	existing *domain.Delivery,
) (*domain.Delivery, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	d := existing
	if d == nil {
		d = domain.NewDelivery()
	}
	if p.apiType != "" {
		d.SetAPIType(p.apiType)
	}
	for k, v := range p.fields {
		d.Set(k, v)
	}
	return d, nil
}

// stubTransport implements driven.TransportPlugin.
type stubTransport struct {
	ranked
	apiType     string
	contentType string
	ok          bool
	err         error
	calls       int
	got         *domain.Delivery
}

func (p *stubTransport) CanHandle(apiType, contentType string) bool {
	return apiType == p.apiType && contentType == p.contentType
}

func (p *stubTransport) Deliver(
	_ context.Context,
	d *domain.Delivery,
	_ domain.ReplicationAction,
	_ driven.ReplicationLog,
) (bool, error) {
	p.calls++
	p.got = d
	return p.ok, p.err
}

// failingPackager implements driven.ArtifactPackager and always fails.
type failingPackager struct {
	file string
}

func (p *failingPackager) Package(_ context.Context, _, file string) (*domain.Artifact, error) {
	p.file = file
	return nil, fmt.Errorf("disk full")
}

// recordingMetrics implements driven.MetricsSink.
type recordingMetrics struct {
	states []domain.DeliveryState
}

func (m *recordingMetrics) DeliveryCompleted(_, _ string, state domain.DeliveryState, _ bool) {
	m.states = append(m.states, state)
}
func (m *recordingMetrics) ExchangeCompleted(string, int, time.Duration) {}
func (m *recordingMetrics) TokenFetched(bool)                           {}

func testTree() *memory.ResourceTree {
	return memory.NewResourceTree(&memory.Node{Children: []*memory.Node{
		{Name: "content", Children: []*memory.Node{
			memory.Page("site", "commerce/page", map[string]any{"dwreInstanceId": "/prod/"},
				memory.Page("page", "commerce/page", map[string]any{"jcr:title": "Hello"}),
			),
		}},
	}})
}

func agent() *domain.AgentConfig {
	return &domain.AgentConfig{TransportURI: "demandware://prod", UserID: "admin"}
}
