package driven

import (
	"net/http"

	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
)

// InstanceClient is a configured commerce backend and its HTTP client.
type InstanceClient struct {
	Config domain.InstanceConfig
	HTTP   *http.Client
}

// ID returns the instance id.
func (c *InstanceClient) ID() string {
	return c.Config.ID
}

// BaseURL returns scheme://endpoint for the instance.
func (c *InstanceClient) BaseURL() string {
	return c.Config.BaseURL()
}

// HTTPClientFactory builds HTTP clients for instances.
type HTTPClientFactory interface {
	NewClient(cfg domain.InstanceConfig) (*http.Client, error)
}
