package webdav

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
)

// Registry identity.
const (
	TaskName = "WebDAVTransportPlugin"
	Rank     = 30
)

// Instances locates the commerce instance an agent replicates to.
type Instances interface {
	ClientForAgent(agent *domain.AgentConfig) (*driven.InstanceClient, error)
}

// Config holds the WebDAV share settings.
type Config struct {
	// Endpoint overrides the instance host for WebDAV calls.
	Endpoint string
	User     string
	Password string
}

// Ensure Plugin implements the interface.
var _ driven.TransportPlugin = (*Plugin)(nil)

// Plugin uploads and removes static files.
type Plugin struct {
	cfg       Config
	instances Instances
	metrics   driven.MetricsSink
}

// New creates the plugin. metrics may be nil.
func New(cfg Config, instances Instances, metrics driven.MetricsSink) *Plugin {
	return &Plugin{cfg: cfg, instances: instances, metrics: metrics}
}

// Name returns the task name.
func (p *Plugin) Name() string { return TaskName }

// Rank returns the chain position.
func (p *Plugin) Rank() int { return Rank }

// CanHandle matches webdav static assets.
func (p *Plugin) CanHandle(apiType, contentType string) bool {
	return apiType == domain.APITypeWebDAV && contentType == domain.ContentTypeStaticAsset
}

// Deliver uploads the file on activation and deletes it otherwise.
func (p *Plugin) Deliver(ctx context.Context, d *domain.Delivery, action domain.ReplicationAction, log driven.ReplicationLog) (bool, error) {
	if action.Agent == nil {
		return false, domain.ErrNoAgentConfig
	}
	share := d.String(domain.FieldWebDAVEndpoint)
	filePath := d.String(domain.FieldPath)
	if share == "" || filePath == "" {
		return false, fmt.Errorf("%w: can not create endpoint URI", domain.ErrInvalidInput)
	}

	instance, err := p.instances.ClientForAgent(action.Agent)
	if err != nil {
		return false, fmt.Errorf("resolve instance: %w", err)
	}
	base := instance.Config
	if p.cfg.Endpoint != "" {
		base.Endpoint = p.cfg.Endpoint
	}
	transport := base.BaseURL() + d.Expand(share)
	filePath = "/" + strings.TrimPrefix(filePath, "/")
	log.Info("Deliver %s to %s (%s)", filePath, transport, action.Type)

	client := NewClient(transport, instance.HTTP, p.headers(action.Agent, log), p.cfg.User, p.cfg.Password, p.metrics)
	if p.cfg.User != "" {
		log.Debug("WebDAV auth user: %s", p.cfg.User)
	}

	if action.Type != domain.ActionActivate {
		log.Info("Delete %s", client.URL(filePath))
		if err := client.Delete(ctx, filePath); err != nil && !IsNotFound(err) {
			return false, err
		}
		return true, nil
	}

	data, contentType, err := fileData(d)
	if err != nil {
		return false, err
	}
	if data == nil || contentType == "" {
		log.Warn("No asset data to send")
		return false, nil
	}

	if err := ensureFolders(ctx, client, filePath, log); err != nil {
		return false, err
	}
	log.Debug("Upload %s ...", filePath)
	if err := client.Put(ctx, filePath, data, contentType); err != nil {
		return false, err
	}
	log.Debug("Upload done.")
	return true, nil
}

func (p *Plugin) headers(agent *domain.AgentConfig, log driven.ReplicationLog) http.Header {
	headers := http.Header{}
	for _, h := range agent.ParsedHeaders() {
		log.Debug("adding header: %s:%s", h[0], h[1])
		headers.Add(h[0], h[1])
	}
	return headers
}

// fileData returns the payload bytes, decoding base64 when flagged.
func fileData(d *domain.Delivery) ([]byte, string, error) {
	if !d.HasPayload() {
		return nil, "", fmt.Errorf("%w: can not create asset data", domain.ErrMissingPayload)
	}
	payload := d.Payload()
	contentType := payload.String("mimetype")
	raw, ok := payload["data"]
	if !ok || raw == nil {
		return nil, contentType, nil
	}
	data := payload.String("data")
	if _, flagged := payload["base64"]; flagged {
		decoded, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, "", fmt.Errorf("decode asset data: %w", err)
		}
		return decoded, contentType, nil
	}
	return []byte(data), contentType, nil
}

// ensureFolders creates each missing parent collection of filePath in turn.
func ensureFolders(ctx context.Context, client *Client, filePath string, log driven.ReplicationLog) error {
	dir := filePath[:strings.LastIndex(filePath, "/")]
	current := ""
	for _, folder := range strings.Split(dir, "/") {
		if folder == "" {
			continue
		}
		current += "/" + folder
		exists, err := client.Exists(ctx, current)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		log.Debug("Create missing WebDAV folder %s", client.URL(current))
		if err := client.Mkdir(ctx, current); err != nil {
			return err
		}
	}
	return nil
}
