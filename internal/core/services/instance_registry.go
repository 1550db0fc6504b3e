package services

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driving"
	"github.com/custodia-labs/sfcc-replicator/internal/logger"
	"github.com/custodia-labs/sfcc-replicator/internal/pages"
)

// Ensure InstanceRegistry implements the interface.
var _ driving.InstanceRegistry = (*InstanceRegistry)(nil)

// InstanceRegistry maps instance ids to configured backend clients.
// Lookups read an immutable map snapshot; Bind and Unbind publish a new one.
type InstanceRegistry struct {
	mu      sync.Mutex
	clients atomic.Pointer[map[string]*driven.InstanceClient]
}

// NewInstanceRegistry creates a registry holding clients.
func NewInstanceRegistry(clients ...*driven.InstanceClient) *InstanceRegistry {
	r := &InstanceRegistry{}
	empty := make(map[string]*driven.InstanceClient)
	r.clients.Store(&empty)
	r.Replace(clients...)
	return r
}

func (r *InstanceRegistry) snapshot() map[string]*driven.InstanceClient {
	return *r.clients.Load()
}

// Bind registers a client under its normalised instance id.
func (r *InstanceRegistry) Bind(client *driven.InstanceClient) {
	if client == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.snapshot()
	next := make(map[string]*driven.InstanceClient, len(cur)+1)
	for k, v := range cur {
		next[k] = v
	}
	next[domain.NormaliseInstanceID(client.ID())] = client
	r.clients.Store(&next)
}

// Unbind removes the client registered under id.
func (r *InstanceRegistry) Unbind(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id = domain.NormaliseInstanceID(id)
	cur := r.snapshot()
	if _, ok := cur[id]; !ok {
		return
	}
	next := make(map[string]*driven.InstanceClient, len(cur))
	for k, v := range cur {
		if k != id {
			next[k] = v
		}
	}
	r.clients.Store(&next)
}

// Replace swaps every registered client at once.
func (r *InstanceRegistry) Replace(clients ...*driven.InstanceClient) {
	next := make(map[string]*driven.InstanceClient, len(clients))
	for _, c := range clients {
		if c != nil {
			next[domain.NormaliseInstanceID(c.ID())] = c
		}
	}
	r.mu.Lock()
	r.clients.Store(&next)
	r.mu.Unlock()
}

// Resolve looks up a client by instance id.
func (r *InstanceRegistry) Resolve(id string) (*driven.InstanceClient, error) {
	id = domain.NormaliseInstanceID(id)
	if c, ok := r.snapshot()[id]; ok {
		return c, nil
	}
	logger.Warn("No commerce instance configured for id %q", id)
	return nil, fmt.Errorf("instance %q: %w", id, domain.ErrNoInstance)
}

// InstanceIDFromAgent extracts the id from a demandware://{id} transport URI.
func (r *InstanceRegistry) InstanceIDFromAgent(agent *domain.AgentConfig) string {
	if agent == nil {
		return ""
	}
	uri := strings.TrimSpace(agent.TransportURI)
	if !strings.HasPrefix(uri, domain.AgentScheme) {
		return ""
	}
	return domain.NormaliseInstanceID(strings.TrimPrefix(uri, domain.AgentScheme))
}

// DefaultOrFirst returns the client registered as "default", else any
// registered client. Which one is returned when several exist and none is
// the default is unspecified.
func (r *InstanceRegistry) DefaultOrFirst() (*driven.InstanceClient, error) {
	clients := r.snapshot()
	if c, ok := clients[domain.DefaultInstanceID]; ok {
		return c, nil
	}
	for _, c := range clients {
		return c, nil
	}
	return nil, domain.ErrNoInstance
}

// ClientForAgent resolves the agent's instance, falling back to DefaultOrFirst.
func (r *InstanceRegistry) ClientForAgent(agent *domain.AgentConfig) (*driven.InstanceClient, error) {
	return r.clientFor(r.InstanceIDFromAgent(agent))
}

// ClientForPage resolves the page's inherited dwreInstanceId, falling back
// to DefaultOrFirst.
func (r *InstanceRegistry) ClientForPage(page driven.Resource) (*driven.InstanceClient, error) {
	return r.clientFor(InstanceIDForPage(page))
}

func (r *InstanceRegistry) clientFor(id string) (*driven.InstanceClient, error) {
	if id != "" {
		if c, err := r.Resolve(id); err == nil {
			return c, nil
		}
	}
	return r.DefaultOrFirst()
}

// PreviewConfig returns the preview configuration of an instance.
func (r *InstanceRegistry) PreviewConfig(id string) (domain.PreviewConfig, error) {
	c, err := r.Resolve(id)
	if err != nil {
		return domain.PreviewConfig{}, err
	}
	return previewOf(c), nil
}

// DefaultPreviewConfig returns the preview configuration of DefaultOrFirst.
func (r *InstanceRegistry) DefaultPreviewConfig() (domain.PreviewConfig, error) {
	c, err := r.DefaultOrFirst()
	if err != nil {
		return domain.PreviewConfig{}, err
	}
	return previewOf(c), nil
}

// Instances returns the registered configurations sorted by id.
func (r *InstanceRegistry) Instances() []domain.InstanceConfig {
	clients := r.snapshot()
	out := make([]domain.InstanceConfig, 0, len(clients))
	for _, c := range clients {
		out = append(out, c.Config)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func previewOf(c *driven.InstanceClient) domain.PreviewConfig {
	p := c.Config.Preview
	if p.InstanceID == "" {
		p.InstanceID = c.ID()
	}
	return p
}

// InstanceIDForPage returns the inherited dwreInstanceId of a page.
func InstanceIDForPage(page driven.Resource) string {
	if page == nil {
		return ""
	}
	return domain.NormaliseInstanceID(pages.InheritedString(page, pages.PropInstanceID))
}
