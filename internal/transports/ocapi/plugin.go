package ocapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"

	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
)

// Registry identities.
const (
	ContentAssetTaskName      = "ContentAssetPlugin"
	ContentAssetRank          = 10
	ContentSlotConfigTaskName = "ContentSlotConfigPlugin"
	ContentSlotConfigRank     = 10
)

// Ensure Plugin implements the interface.
var _ driven.TransportPlugin = (*Plugin)(nil)

// Plugin delivers one OCAPI content type with the exists-then-write flow.
type Plugin struct {
	name        string
	rank        int
	contentType string
	engine      *Engine
	query       func(d *domain.Delivery) url.Values
}

// NewContentAsset creates the content asset transport.
func NewContentAsset(engine *Engine) *Plugin {
	return &Plugin{
		name:        ContentAssetTaskName,
		rank:        ContentAssetRank,
		contentType: domain.ContentTypeContentAsset,
		engine:      engine,
	}
}

// NewContentSlotConfig creates the slot configuration transport. The slot
// context is passed as a query parameter.
func NewContentSlotConfig(engine *Engine) *Plugin {
	return &Plugin{
		name:        ContentSlotConfigTaskName,
		rank:        ContentSlotConfigRank,
		contentType: domain.ContentTypeContentSlotConfig,
		engine:      engine,
		query:       contextQuery,
	}
}

func contextQuery(d *domain.Delivery) url.Values {
	if !d.Has(domain.FieldContext) {
		return nil
	}
	return url.Values{domain.FieldContext: {d.String(domain.FieldContext)}}
}

// Name returns the task name.
func (p *Plugin) Name() string { return p.name }

// Rank returns the chain position.
func (p *Plugin) Rank() int { return p.rank }

// CanHandle matches the ocapi api type and the plugin's content type.
func (p *Plugin) CanHandle(apiType, contentType string) bool {
	return apiType == domain.APITypeOCAPI && contentType == p.contentType
}

// Deliver writes or removes the remote object.
func (p *Plugin) Deliver(ctx context.Context, d *domain.Delivery, action domain.ReplicationAction, log driven.ReplicationLog) (bool, error) {
	id := deliveryID(d, action)
	endpoint := d.String(domain.FieldAPIEndpoint)
	if endpoint == "" {
		return false, fmt.Errorf("%w: no %s in delivery", domain.ErrInvalidInput, domain.FieldAPIEndpoint)
	}

	session, err := p.engine.Open(ctx, action.Agent, log)
	if err != nil {
		return false, err
	}
	var query url.Values
	if p.query != nil {
		query = p.query(d)
	}
	target := p.engine.URL(session.Client(), d.Expand(endpoint), query)

	// step 1: check whether the object exists
	log.Info("Deliver %s to GET %s (%s)", id, target, action.Type)
	log.Info("Check if %s %s already exists", p.contentType, id)
	var etag string
	if resp := session.Do(ctx, http.MethodGet, target, nil, nil); resp != nil && resp.StatusCode == http.StatusOK {
		etag = resp.Header.Get("ETag")
		log.Info("%s %s already exists, will be updated", p.contentType, id)
	} else {
		log.Info("%s %s does not exist", p.contentType, id)
	}

	if action.Type != domain.ActionActivate {
		if etag == "" {
			return true, nil
		}
		log.Info("Delete %s %s", p.contentType, id)
		return Successful(session.Do(ctx, http.MethodDelete, target, nil, nil)), nil
	}

	// step 2: serialise the payload
	body, err := payloadBody(d)
	if err != nil {
		return false, err
	}
	if body == nil {
		log.Warn("No request body to send")
		return false, nil
	}
	log.Debug("set %d bytes of post body.", len(body))

	// step 3: create with a PUT override or update with a conditional PATCH
	headers := http.Header{}
	headers.Set("Content-Type", domain.ContentTypeJSON)
	headers.Set("Cache-Control", "no-cache")
	method := http.MethodPost
	if etag == "" {
		headers.Set(MethodOverrideHeader, http.MethodPut)
	} else {
		method = http.MethodPatch
		headers.Set("If-Match", etag)
	}
	log.Debug("Send %s %s using %s", p.contentType, id, method)
	return Successful(session.Do(ctx, method, target, body, headers)), nil
}

// payloadBody returns the encoded payload, or nil when there is nothing to send.
func payloadBody(d *domain.Delivery) ([]byte, error) {
	if !d.HasPayload() || len(d.Payload()) == 0 {
		return nil, nil
	}
	body, err := json.Marshal(map[string]any(d.Payload()))
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return body, nil
}

func deliveryID(d *domain.Delivery, action domain.ReplicationAction) string {
	if id := d.ID(); id != "" {
		return id
	}
	return path.Base(action.Path)
}
