package driving

import (
	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
)

// InstanceRegistry routes replication work to commerce instances.
type InstanceRegistry interface {
	// Bind registers a client under its instance id, replacing any previous one.
	Bind(client *driven.InstanceClient)

	// Unbind removes the client registered under id.
	Unbind(id string)

	// Resolve looks up a client by instance id.
	Resolve(id string) (*driven.InstanceClient, error)

	// InstanceIDFromAgent extracts the instance id from a demandware:// transport URI.
	InstanceIDFromAgent(agent *domain.AgentConfig) string

	// DefaultOrFirst returns the "default" client or any registered one.
	DefaultOrFirst() (*driven.InstanceClient, error)

	// ClientForAgent resolves the agent's instance, falling back to DefaultOrFirst.
	ClientForAgent(agent *domain.AgentConfig) (*driven.InstanceClient, error)

	// ClientForPage resolves the page's inherited instance, falling back to DefaultOrFirst.
	ClientForPage(page driven.Resource) (*driven.InstanceClient, error)

	// PreviewConfig returns the preview configuration of an instance.
	PreviewConfig(id string) (domain.PreviewConfig, error)

	// DefaultPreviewConfig returns the "default" or any preview configuration.
	DefaultPreviewConfig() (domain.PreviewConfig, error)

	// Instances returns the configuration of every registered instance.
	Instances() []domain.InstanceConfig
}
