package driven

import (
	"context"

	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
)

// Ranked is implemented by everything held in a ranked registry.
type Ranked interface {
	// Name returns the task name the entry is registered under.
	Name() string

	// Rank returns the ordering priority (lower runs first).
	Rank() int
}

// ContentBuilderPlugin contributes fields to a delivery document.
type ContentBuilderPlugin interface {
	Ranked

	// CanHandle reports whether the plugin applies to the resource.
	CanHandle(action domain.ActionType, resource Resource) bool

	// Create merges the plugin's fields into existing, creating a document
	// when existing is nil. Calling it twice with the same inputs must
	// produce the same document.
	Create(ctx context.Context, action domain.ActionType, resource Resource, existing *domain.Delivery) (*domain.Delivery, error)
}

// TransportPlugin delivers documents of one api/content type pair.
type TransportPlugin interface {
	Ranked

	// CanHandle reports whether the plugin delivers the given pair.
	CanHandle(apiType, contentType string) bool

	// Deliver performs the exchange. Remote failures are reported as
	// false. Errors abort the replication.
	Deliver(ctx context.Context, delivery *domain.Delivery, action domain.ReplicationAction, log ReplicationLog) (bool, error)
}

// AttributeConverter maps a CMS property to a JSON value.
type AttributeConverter interface {
	Ranked

	// CanHandle reports whether the converter claims the descriptor for page.
	CanHandle(attr domain.AttributeDescriptor, page Resource) bool

	// Convert produces the JSON value for the descriptor.
	Convert(attr domain.AttributeDescriptor, page Resource) any
}

// LocaleResolver determines the commerce locale of a page.
type LocaleResolver interface {
	// Locale returns the locale id, or "" when the page has no language.
	Locale(page Resource) string
}

// NameResolver determines the commerce id of a page.
type NameResolver interface {
	Name(ctx context.Context, resource Resource) string
}
