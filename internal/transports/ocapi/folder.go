package ocapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
)

// Folder assignment registry identity and endpoint.
const (
	FolderTaskName        = "ContentAssetFolderPlugin"
	FolderRank            = 11
	DefaultFolderEndpoint = "/libraries/{library_id}/folder_assignments/{id}/{folder}"
)

// Ensure FolderPlugin implements the interface.
var _ driven.TransportPlugin = (*FolderPlugin)(nil)

// FolderPlugin assigns content assets to their library folders.
type FolderPlugin struct {
	engine   *Engine
	endpoint string
}

// NewFolderAssignments creates the folder assignment transport. An empty
// endpoint selects DefaultFolderEndpoint.
func NewFolderAssignments(engine *Engine, endpoint string) *FolderPlugin {
	if endpoint == "" {
		endpoint = DefaultFolderEndpoint
	}
	return &FolderPlugin{engine: engine, endpoint: endpoint}
}

// Name returns the task name.
func (p *FolderPlugin) Name() string { return FolderTaskName }

// Rank returns the chain position.
func (p *FolderPlugin) Rank() int { return FolderRank }

// CanHandle matches content assets.
func (p *FolderPlugin) CanHandle(apiType, contentType string) bool {
	return apiType == domain.APITypeOCAPI && contentType == domain.ContentTypeContentAsset
}

// Deliver PUTs one assignment per folder; the first folder is the default.
// Failed assignments are logged and do not fail the delivery.
//
// TODO: fetch the current assignments first so folders removed in the CMS
// are unassigned as well.
func (p *FolderPlugin) Deliver(ctx context.Context, d *domain.Delivery, action domain.ReplicationAction, log driven.ReplicationLog) (bool, error) {
	id := deliveryID(d, action)
	folders := d.Folders()
	if len(folders) == 0 {
		log.Debug("No folder assignments found, nothing to do")
		return true, nil
	}

	session, err := p.engine.Open(ctx, action.Agent, log)
	if err != nil {
		return false, err
	}

	headers := http.Header{}
	headers.Set("Content-Type", domain.ContentTypeJSON)

	primary := true
	for _, folder := range folders {
		log.Info("Assign content asset %s to folder %s (%s)", id, folder, action.Type)
		body, err := json.Marshal(map[string]bool{"default": primary})
		if err != nil {
			return false, fmt.Errorf("encode folder assignment: %w", err)
		}
		endpoint := d.Expand(strings.ReplaceAll(p.endpoint, "{folder}", folder))
		target := p.engine.URL(session.Client(), endpoint, nil)
		if Successful(session.Do(ctx, http.MethodPut, target, body, headers)) {
			log.Info("Content asset %s assigned to folder %s", id, folder)
		} else {
			log.Warn("Content asset %s NOT assigned to folder %s", id, folder)
		}
		primary = false
	}
	return true, nil
}
