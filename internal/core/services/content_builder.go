package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/multierr"

	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driving"
)

// Ensure ContentBuilder implements the interface.
var _ driving.ContentBuilder = (*ContentBuilder)(nil)

// ContentBuilder runs the builder plugin chain and packages its output.
type ContentBuilder struct {
	resolver driven.ResourceResolver
	plugins  *RankedRegistry[driven.ContentBuilderPlugin]
	packager driven.ArtifactPackager
	tempDir  string
}

// NewContentBuilder creates a content builder. tempDir may be empty to use
// the system temp directory.
func NewContentBuilder(
	resolver driven.ResourceResolver,
	plugins *RankedRegistry[driven.ContentBuilderPlugin],
	packager driven.ArtifactPackager,
	tempDir string,
) *ContentBuilder {
	return &ContentBuilder{
		resolver: resolver,
		plugins:  plugins,
		packager: packager,
		tempDir:  tempDir,
	}
}

// Document runs the plugin chain and returns the resulting document, or nil
// when no plugin handled the resource.
func (b *ContentBuilder) Document(
	ctx context.Context,
	action domain.ReplicationAction,
	log driven.ReplicationLog,
) (*domain.Delivery, error) {
	if action.Agent == nil {
		return nil, domain.ErrNoAgentConfig
	}
	if log == nil {
		return nil, domain.ErrNoReplicationLog
	}

	// 1. Resolve the live resource
	resource, err := b.resolver.Resolve(ctx, action.Path)
	if err != nil {
		log.Error("Could not access resource %s: %v", action.Path, err)
		return nil, fmt.Errorf("resolve resource %s: %w", action.Path, err)
	}

	// 2. Thread the document through the chain, one snapshot for the whole run
	var delivery *domain.Delivery
	for _, plugin := range b.plugins.Snapshot() {
		if !plugin.CanHandle(action.Type, resource) {
			continue
		}
		log.Debug("Building %s with %s", action.Path, plugin.Name())
		delivery, err = plugin.Create(ctx, action.Type, resource, delivery)
		if err != nil {
			log.Error("Could not create JSON content for %s: %v", action.Path, err)
			return nil, fmt.Errorf("plugin %s: %w", plugin.Name(), err)
		}
	}
	return delivery, nil
}

// Build runs the chain, validates the document and packages it as a
// temporary JSON artifact.
func (b *ContentBuilder) Build(
	ctx context.Context,
	action domain.ReplicationAction,
	log driven.ReplicationLog,
) (*domain.Artifact, error) {
	delivery, err := b.Document(ctx, action, log)
	if err != nil {
		return nil, err
	}

	// 3. Nothing to replicate is a legitimate no-op
	if delivery == nil || delivery.IsEmpty() {
		log.Info("Nothing to replicate for %s", action.Path)
		return domain.VoidArtifact(), nil
	}

	// 4. The transport side routes on api-type
	if delivery.APIType() == "" {
		log.Error("Invalid JSON for %s, api-type attribute missing", action.Path)
		return nil, domain.ErrMissingAPIType
	}

	data, err := json.Marshal(delivery)
	if err != nil {
		log.Error("Could not serialise JSON content for %s: %v", action.Path, err)
		return nil, fmt.Errorf("marshal delivery: %w", err)
	}
	log.Debug("Created JSON content for %s: %s", action.Path, data)

	// 5. Serialise to a temp file and hand it to the packager
	return b.pack(ctx, data, log)
}

func (b *ContentBuilder) pack(ctx context.Context, data []byte, log driven.ReplicationLog) (*domain.Artifact, error) {
	tmp, err := os.CreateTemp(b.tempDir, "demandware*.json")
	if err != nil {
		log.Error("Could not create temp file: %v", err)
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if err := multierr.Append(writeErr, closeErr); err != nil {
		log.Error("Could not write temp file %s: %v", name, err)
		return nil, cleanup(fmt.Errorf("write temp file: %w", err), name, log)
	}

	artifact, err := b.packager.Package(ctx, domain.ContentTypeJSON, name)
	if err != nil {
		log.Error("Could not package replication content: %v", err)
		return nil, cleanup(fmt.Errorf("package content: %w", err), name, log)
	}
	return artifact, nil
}

// cleanup removes the temp file of a failed build, reporting a failed removal alongside cause.
func cleanup(cause error, name string, log driven.ReplicationLog) error {
	if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
		log.Error("Could not delete temp file %s: %v", name, err)
		return multierr.Append(cause, fmt.Errorf("delete temp file %s: %w", name, err))
	}
	return cause
}
